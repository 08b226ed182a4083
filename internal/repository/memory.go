package repository

import (
	"context"
	"sync"
	"time"

	"github.com/yourorg/ridejoy/internal/domain"
)

// In-memory implementations of the repository interfaces, guarded by a
// RWMutex. Used when STORE_DRIVER=memory and by the service tests. The
// browser-storage shim this replaces rewrote whole collections on every
// mutation; these stores upsert by primary key under a lock instead.

// MemoryUserRepository implements domain.UserRepository in process memory
type MemoryUserRepository struct {
	mu      sync.RWMutex
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	order   []string // insertion order of IDs
}

// NewMemoryUserRepository creates an empty in-memory user repository
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		byID:    make(map[string]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

// Create inserts a new user. Returns ErrDuplicateUser when the email is
// already registered.
func (r *MemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byEmail[user.Email]; exists {
		return ErrDuplicateUser
	}

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}

	stored := *user
	r.byID[stored.ID] = &stored
	r.byEmail[stored.Email] = &stored
	r.order = append(r.order, stored.ID)
	return nil
}

// GetByID retrieves a user by ID
func (r *MemoryUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byID[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// GetByEmail retrieves a user by email (case-sensitive exact match)
func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.byEmail[email]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// List returns all registered users, newest first
func (r *MemoryUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]*domain.User, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		copied := *r.byID[r.order[i]]
		users = append(users, &copied)
	}
	return users, nil
}

// CountAdmins returns the number of users with the admin role
func (r *MemoryUserRepository) CountAdmins(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, user := range r.byID {
		if user.Role == domain.RoleAdmin {
			count++
		}
	}
	return count, nil
}

// MemoryBookingRepository implements domain.BookingRepository in process memory
type MemoryBookingRepository struct {
	mu    sync.RWMutex
	byID  map[string]*domain.Booking
	order []string // insertion order of IDs
}

// NewMemoryBookingRepository creates an empty in-memory booking repository
func NewMemoryBookingRepository() *MemoryBookingRepository {
	return &MemoryBookingRepository{byID: make(map[string]*domain.Booking)}
}

// Create inserts a new booking
func (r *MemoryBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = time.Now()
	}

	stored := *booking
	r.byID[stored.ID] = &stored
	r.order = append(r.order, stored.ID)
	return nil
}

// GetByID retrieves a booking by ID
func (r *MemoryBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, exists := r.byID[id]
	if !exists {
		return nil, ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

// List returns the whole ledger, newest first
func (r *MemoryBookingRepository) List(ctx context.Context) ([]*domain.Booking, error) {
	return r.listWhere(func(*domain.Booking) bool { return true }), nil
}

// ListByEmail returns bookings owned by the given email, newest first
func (r *MemoryBookingRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	return r.listWhere(func(b *domain.Booking) bool { return b.Email == email }), nil
}

// ListByStatus returns bookings in the given status, newest first
func (r *MemoryBookingRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Booking, error) {
	return r.listWhere(func(b *domain.Booking) bool { return b.Status == status }), nil
}

// UpdateStatus sets the status of a booking and returns the updated record.
// Returns ErrNotFound when no booking has the given id.
func (r *MemoryBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	booking, exists := r.byID[id]
	if !exists {
		return nil, ErrNotFound
	}

	booking.Status = status
	copied := *booking
	return &copied, nil
}

func (r *MemoryBookingRepository) listWhere(match func(*domain.Booking) bool) []*domain.Booking {
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Bookings are inserted in creation order, so reverse insertion order is
	// created_at descending.
	bookings := make([]*domain.Booking, 0, len(r.order))
	for i := len(r.order) - 1; i >= 0; i-- {
		booking := r.byID[r.order[i]]
		if match(booking) {
			copied := *booking
			bookings = append(bookings, &copied)
		}
	}
	return bookings
}

// MemoryEmailRepository implements domain.EmailRepository in process memory
type MemoryEmailRepository struct {
	mu      sync.RWMutex
	records []*domain.EmailRecord
}

// NewMemoryEmailRepository creates an empty in-memory sent-email log
func NewMemoryEmailRepository() *MemoryEmailRepository {
	return &MemoryEmailRepository{}
}

// Append records an outbound email
func (r *MemoryEmailRepository) Append(ctx context.Context, record *domain.EmailRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := *record
	r.records = append(r.records, &stored)
	return nil
}

// List returns the full log in insertion order
func (r *MemoryEmailRepository) List(ctx context.Context) ([]*domain.EmailRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*domain.EmailRecord, 0, len(r.records))
	for _, record := range r.records {
		copied := *record
		records = append(records, &copied)
	}
	return records, nil
}
