package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/ridejoy/internal/domain"
	"github.com/yourorg/ridejoy/internal/repository"
	"github.com/yourorg/ridejoy/internal/security/audit"
	"github.com/yourorg/ridejoy/internal/service"
)

// CreateBookingRequest is the booking form payload
type CreateBookingRequest struct {
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Address        string    `json:"address"`
	PickupLocation string    `json:"pickupLocation"`
	ReturnLocation string    `json:"returnLocation"`
	PickupDate     time.Time `json:"pickupDate"`
	ReturnDate     time.Time `json:"returnDate"`
}

// CreateBookingResponse reports the booking plus the outcome of the
// best-effort side effects. The booking is saved even when a side effect
// did not go through.
type CreateBookingResponse struct {
	Booking        BookingResponse `json:"booking"`
	AccountCreated bool            `json:"accountCreated"`
	WelcomeSent    bool            `json:"welcomeSent"`
	ReceiptSent    bool            `json:"receiptSent"`
}

// UpdateStatusRequest carries the target status
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// BookingHandler handles booking capture and the dashboard read/update paths
type BookingHandler struct {
	ledger    *service.LedgerService
	directory *service.DirectoryService
	audit     *audit.Logger
	logger    *slog.Logger
}

// NewBookingHandler creates a new booking handler
func NewBookingHandler(ledger *service.LedgerService, directory *service.DirectoryService, auditLogger *audit.Logger, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		ledger:    ledger,
		directory: directory,
		audit:     auditLogger,
		logger:    logger,
	}
}

// Create handles POST /api/bookings. The form is public: submitting a booking
// needs no account, it provisions one.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	result, err := h.ledger.Create(r.Context(), service.BookingForm{
		Name:           req.Name,
		Email:          req.Email,
		Address:        req.Address,
		PickupLocation: req.PickupLocation,
		ReturnLocation: req.ReturnLocation,
		PickupDate:     req.PickupDate,
		ReturnDate:     req.ReturnDate,
	})
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("booking creation failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to create booking")
		return
	}

	writeJSON(w, http.StatusCreated, CreateBookingResponse{
		Booking:        toBookingResponse(result.Booking),
		AccountCreated: result.AccountCreated,
		WelcomeSent:    result.WelcomeSent,
		ReceiptSent:    result.ReceiptSent,
	})
}

// List handles GET /api/bookings. Admins see the whole ledger, optionally
// narrowed with ?status=; everyone else sees their own bookings.
func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var (
		bookings []*domain.Booking
		err      error
	)

	if user.Role == domain.RoleAdmin {
		if status := r.URL.Query().Get("status"); status != "" {
			bookings, err = h.ledger.ListByStatus(r.Context(), domain.Status(status))
		} else {
			bookings, err = h.ledger.List(r.Context())
		}
	} else {
		bookings, err = h.ledger.ListByOwner(r.Context(), user.Email)
	}

	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("booking list failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponses(bookings))
}

// Get handles GET /api/bookings/{id}
func (h *BookingHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	booking, err := h.ledger.FindByID(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "booking not found")
			return
		}
		h.logger.Error("booking lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to get booking")
		return
	}

	if user.Role != domain.RoleAdmin && booking.Email != user.Email {
		writeError(w, http.StatusForbidden, "not your booking")
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

// UpdateStatus handles PATCH /api/bookings/{id}/status
func (h *BookingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	id := r.PathValue("id")

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if user.Role != domain.RoleAdmin {
		booking, err := h.ledger.FindByID(r.Context(), id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				writeError(w, http.StatusNotFound, "booking not found")
				return
			}
			h.logger.Error("booking lookup failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to get booking")
			return
		}
		if booking.Email != user.Email {
			h.audit.LogDenied(r.Context(), user.ID, "status change on another user's booking")
			writeError(w, http.StatusForbidden, "not your booking")
			return
		}
	}

	booking, err := h.ledger.SetStatus(r.Context(), id, domain.Status(req.Status))
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			writeError(w, http.StatusNotFound, "booking not found")
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("status update failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to update status")
		}
		return
	}

	h.audit.LogStatusChange(r.Context(), user.ID, booking.ID, string(booking.Status))
	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) requireUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing auth")
		return nil, false
	}

	user, err := h.directory.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return nil, false
		}
		h.logger.Error("session lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to resolve session")
		return nil, false
	}

	return user, true
}
