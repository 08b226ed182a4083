package service

import "errors"

// ErrInvalidCredentials is returned for any email/password pair that does not
// exactly match a stored account. Wrong password and unknown email are
// deliberately indistinguishable.
var ErrInvalidCredentials = errors.New("invalid credentials")

// ErrInvalidSession is returned when a token is malformed, expired, or its
// session record no longer exists (logged out).
var ErrInvalidSession = errors.New("invalid session")

// ErrValidation is returned for requests rejected at the form boundary before
// they touch any store.
var ErrValidation = errors.New("validation failed")
