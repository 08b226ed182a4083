package domain

import (
	"context"
	"time"
)

// Status is the lifecycle label attached to a booking. Every booking starts
// out pending; dashboards move it forward (or backward) from there. The
// ledger accepts any target status, matching the product behavior: the
// buttons only offer the expected edges, the operation itself does not care.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is one of the known booking statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Booking represents a rental request captured from the booking form
type Booking struct {
	ID             string // UUID
	Name           string
	Email          string
	Address        string
	PickupLocation string
	ReturnLocation string
	PickupDate     time.Time
	ReturnDate     time.Time
	Status         Status
	CreatedAt      time.Time
}

// BookingRepository defines data access for bookings
type BookingRepository interface {
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	// List returns the whole ledger, newest first.
	List(ctx context.Context) ([]*Booking, error)
	ListByEmail(ctx context.Context, email string) ([]*Booking, error)
	ListByStatus(ctx context.Context, status Status) ([]*Booking, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Booking, error)
}
