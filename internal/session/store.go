// Package session holds the login session records the directory hands out.
// A session is an explicit keyed record, not a process-wide current-user
// singleton: logout deletes the record and the token dies with it.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/yourorg/ridejoy/internal/domain"
)

// ErrNotFound indicates the session does not exist or has expired.
var ErrNotFound = errors.New("session: not found")

// Session is one live login
type Session struct {
	ID        string      `json:"id"` // UUID, carried as the JWT ID claim
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// Store defines session persistence
type Store interface {
	Put(ctx context.Context, sess *Session) error
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}
