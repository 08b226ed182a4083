package domain

import (
	"context"
	"time"
)

// Role determines what a user may see and do in the dashboards.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User represents a registered account in the directory
type User struct {
	ID           string // UUID
	Name         string // Display name
	Email        string // Unique email address
	PasswordHash string // Bcrypt hashed password (not returned in API)
	Role         Role
	CreatedAt    time.Time
}

// UserRepository defines data access for users
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	CountAdmins(ctx context.Context) (int, error)
}
