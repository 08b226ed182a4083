package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yourorg/ridejoy/internal/domain"
)

// PostgresBookingRepository implements domain.BookingRepository using PostgreSQL
type PostgresBookingRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresBookingRepository creates a new booking repository
func NewPostgresBookingRepository(db *sql.DB, logger *slog.Logger) *PostgresBookingRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresBookingRepository{
		db:     db,
		logger: logger,
	}
}

const bookingColumns = `id, name, email, address, pickup_location, return_location, pickup_date, return_date, status, created_at`

// Create inserts a new booking
func (r *PostgresBookingRepository) Create(ctx context.Context, booking *domain.Booking) error {
	query := `
		INSERT INTO bookings (id, name, email, address, pickup_location, return_location, pickup_date, return_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		booking.ID,
		booking.Name,
		booking.Email,
		booking.Address,
		booking.PickupLocation,
		booking.ReturnLocation,
		booking.PickupDate,
		booking.ReturnDate,
		booking.Status,
	).Scan(&booking.CreatedAt)

	if err != nil {
		r.logger.Error("failed to create booking",
			slog.String("email", booking.Email),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to create booking: %w", err)
	}

	return nil
}

// GetByID retrieves a booking by ID
func (r *PostgresBookingRepository) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := r.scanOne(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to get booking by id",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}

	return booking, nil
}

// List returns the whole ledger, newest first
func (r *PostgresBookingRepository) List(ctx context.Context) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings ORDER BY created_at DESC`
	return r.queryMany(ctx, query)
}

// ListByEmail returns bookings owned by the given email, newest first
func (r *PostgresBookingRepository) ListByEmail(ctx context.Context, email string) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE email = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, email)
}

// ListByStatus returns bookings in the given status, newest first
func (r *PostgresBookingRepository) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE status = $1 ORDER BY created_at DESC`
	return r.queryMany(ctx, query, status)
}

// UpdateStatus sets the status of a booking and returns the updated record.
// Returns ErrNotFound when no booking has the given id.
func (r *PostgresBookingRepository) UpdateStatus(ctx context.Context, id string, status domain.Status) (*domain.Booking, error) {
	query := `
		UPDATE bookings
		SET status = $1
		WHERE id = $2
		RETURNING ` + bookingColumns

	booking, err := r.scanOne(r.db.QueryRowContext(ctx, query, status, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		r.logger.Error("failed to update booking status",
			slog.String("id", id),
			slog.String("status", string(status)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to update booking status: %w", err)
	}

	return booking, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PostgresBookingRepository) scanOne(row rowScanner) (*domain.Booking, error) {
	booking := &domain.Booking{}
	err := row.Scan(
		&booking.ID,
		&booking.Name,
		&booking.Email,
		&booking.Address,
		&booking.PickupLocation,
		&booking.ReturnLocation,
		&booking.PickupDate,
		&booking.ReturnDate,
		&booking.Status,
		&booking.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return booking, nil
}

func (r *PostgresBookingRepository) queryMany(ctx context.Context, query string, args ...any) ([]*domain.Booking, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("failed to list bookings", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	var bookings []*domain.Booking
	for rows.Next() {
		booking, err := r.scanOne(rows)
		if err != nil {
			r.logger.Error("failed to scan booking row",
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
