package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yourorg/ridejoy/internal/domain"
	"github.com/yourorg/ridejoy/internal/notifier"
	"github.com/yourorg/ridejoy/internal/observability/metrics"
	"github.com/yourorg/ridejoy/pkg/cache"
)

const bookingCachePrefix = "bookings:"

// BookingForm is the input captured from the booking form
type BookingForm struct {
	Name           string
	Email          string
	Address        string
	PickupLocation string
	ReturnLocation string
	PickupDate     time.Time
	ReturnDate     time.Time
}

func (f *BookingForm) validate() error {
	if strings.TrimSpace(f.Name) == "" ||
		f.Email == "" ||
		strings.TrimSpace(f.Address) == "" ||
		strings.TrimSpace(f.PickupLocation) == "" ||
		strings.TrimSpace(f.ReturnLocation) == "" {
		return fmt.Errorf("%w: all booking fields are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(f.Email); err != nil {
		return fmt.Errorf("%w: malformed email address", ErrValidation)
	}
	if f.PickupDate.IsZero() || f.ReturnDate.IsZero() {
		return fmt.Errorf("%w: pickup and return dates are required", ErrValidation)
	}
	if f.ReturnDate.Before(f.PickupDate) {
		return fmt.Errorf("%w: return date precedes pickup date", ErrValidation)
	}
	return nil
}

// CreateResult separates the primary outcome (the booking is in the ledger)
// from the secondary ones. A false here never means the booking failed.
type CreateResult struct {
	Booking        *domain.Booking
	AccountCreated bool
	WelcomeSent    bool
	ReceiptSent    bool
}

// LedgerService owns booking records and their lifecycle
type LedgerService struct {
	bookings  domain.BookingRepository
	directory *DirectoryService
	mailer    notifier.Sender
	cache     *cache.Cache
	cacheTTL  time.Duration
	logger    *slog.Logger
}

// NewLedgerService creates a new booking ledger service
func NewLedgerService(
	bookings domain.BookingRepository,
	directory *DirectoryService,
	mailer notifier.Sender,
	c *cache.Cache,
	cacheTTL time.Duration,
	logger *slog.Logger,
) *LedgerService {
	if logger == nil {
		logger = slog.Default()
	}

	return &LedgerService{
		bookings:  bookings,
		directory: directory,
		mailer:    mailer,
		cache:     c,
		cacheTTL:  cacheTTL,
		logger:    logger,
	}
}

// Create validates the form, writes the booking, then runs the best-effort
// side effects: account auto-provisioning with a welcome email, and the
// booking-received email. Side effect failures are logged and reflected in
// the result, never returned as the error.
func (s *LedgerService) Create(ctx context.Context, form BookingForm) (*CreateResult, error) {
	if err := form.validate(); err != nil {
		return nil, err
	}

	booking := &domain.Booking{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(form.Name),
		Email:          form.Email,
		Address:        strings.TrimSpace(form.Address),
		PickupLocation: strings.TrimSpace(form.PickupLocation),
		ReturnLocation: strings.TrimSpace(form.ReturnLocation),
		PickupDate:     form.PickupDate,
		ReturnDate:     form.ReturnDate,
		Status:         domain.StatusPending,
		CreatedAt:      time.Now(),
	}

	if err := s.bookings.Create(ctx, booking); err != nil {
		return nil, fmt.Errorf("failed to save booking: %w", err)
	}

	s.invalidateCache()
	metrics.ObserveBookingCreated()
	s.logger.Info("booking created",
		slog.String("booking_id", booking.ID),
		slog.String("email", booking.Email),
	)

	result := &CreateResult{Booking: booking}
	s.runSideEffects(ctx, booking, result)
	return result, nil
}

func (s *LedgerService) runSideEffects(ctx context.Context, booking *domain.Booking, result *CreateResult) {
	exists, err := s.directory.HasAccount(ctx, booking.Email)
	if err != nil {
		s.logger.Warn("account lookup failed, skipping auto-provisioning",
			slog.String("email", booking.Email),
			slog.String("error", err.Error()),
		)
	} else if !exists {
		password, err := s.directory.ProvisionAccount(ctx, booking.Name, booking.Email)
		if err != nil {
			s.logger.Warn("account auto-provisioning failed",
				slog.String("email", booking.Email),
				slog.String("error", err.Error()),
			)
		} else {
			result.AccountCreated = true
			subject, body := notifier.WelcomeEmail(booking.Name, booking.Email, password)
			result.WelcomeSent = s.mailer.Send(ctx, booking.Email, subject, body)
		}
	}

	subject, body := notifier.BookingReceivedEmail(booking)
	result.ReceiptSent = s.mailer.Send(ctx, booking.Email, subject, body)
	if !result.ReceiptSent {
		s.logger.Warn("booking-received email not delivered",
			slog.String("booking_id", booking.ID),
			slog.String("email", booking.Email),
		)
	}
}

// List returns the whole ledger, newest first
func (s *LedgerService) List(ctx context.Context) ([]*domain.Booking, error) {
	const key = bookingCachePrefix + "all"
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*domain.Booking), nil
	}

	bookings, err := s.bookings.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, bookings, s.cacheTTL)
	return bookings, nil
}

// ListByOwner returns bookings whose email exactly matches
func (s *LedgerService) ListByOwner(ctx context.Context, email string) ([]*domain.Booking, error) {
	return s.bookings.ListByEmail(ctx, email)
}

// ListByStatus returns bookings in the given status, newest first
func (s *LedgerService) ListByStatus(ctx context.Context, status domain.Status) ([]*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	key := bookingCachePrefix + "status:" + string(status)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*domain.Booking), nil
	}

	bookings, err := s.bookings.ListByStatus(ctx, status)
	if err != nil {
		return nil, err
	}

	s.cache.Set(key, bookings, s.cacheTTL)
	return bookings, nil
}

// FindByID returns one booking, or repository.ErrNotFound
func (s *LedgerService) FindByID(ctx context.Context, id string) (*domain.Booking, error) {
	return s.bookings.GetByID(ctx, id)
}

// SetStatus moves a booking to the given status. Any status is accepted from
// any status; the dashboards only offer the expected edges but the ledger
// does not police them. Emits a status-change email when the new status has
// customer-facing copy; a move back to pending is silent.
func (s *LedgerService) SetStatus(ctx context.Context, id string, status domain.Status) (*domain.Booking, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}

	booking, err := s.bookings.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.invalidateCache()
	metrics.ObserveStatusTransition(string(status))
	s.logger.Info("booking status updated",
		slog.String("booking_id", booking.ID),
		slog.String("status", string(booking.Status)),
	)

	if subject, body, ok := notifier.StatusChangeEmail(booking); ok {
		if !s.mailer.Send(ctx, booking.Email, subject, body) {
			s.logger.Warn("status-change email not delivered",
				slog.String("booking_id", booking.ID),
				slog.String("status", string(booking.Status)),
			)
		}
	}

	return booking, nil
}

func (s *LedgerService) invalidateCache() {
	s.cache.Invalidate(bookingCachePrefix)
}
