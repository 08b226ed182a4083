package repository

import "errors"

// ErrNotFound indicates the requested record does not exist.
var ErrNotFound = errors.New("repository: not found")

// ErrDuplicateUser indicates a registration attempt with an email that is
// already present in the directory.
var ErrDuplicateUser = errors.New("repository: user with this email already exists")
