package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/ridejoy/internal/repository"
	"github.com/yourorg/ridejoy/internal/security/audit"
	"github.com/yourorg/ridejoy/internal/security/ratelimit"
	"github.com/yourorg/ridejoy/internal/service"
)

// RegisterRequest represents a registration payload
type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse contains the session token
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

// AuthHandler handles registration, login, logout, and the current-user probe
type AuthHandler struct {
	directory *service.DirectoryService
	limiter   *ratelimit.Limiter
	audit     *audit.Logger
	logger    *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(directory *service.DirectoryService, limiter *ratelimit.Limiter, auditLogger *audit.Logger, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		directory: directory,
		limiter:   limiter,
		audit:     auditLogger,
		logger:    logger,
	}
}

// Register handles POST /api/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	user, err := h.directory.Register(r.Context(), req.Name, req.Email, req.Password, "")
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateUser):
			writeError(w, http.StatusConflict, "user with this email already exists")
		case errors.Is(err, service.ErrValidation):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("registration failed", slog.String("error", err.Error()))
			writeError(w, http.StatusInternalServerError, "failed to register")
		}
		return
	}

	writeJSON(w, http.StatusCreated, toUserResponse(user))
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	// Throttle guessing per email, not per caller.
	if req.Email != "" && !h.limiter.AllowStrict(req.Email, 10, time.Minute) {
		writeError(w, http.StatusTooManyRequests, "too many login attempts")
		return
	}

	result, err := h.directory.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.audit.LogLogin(r.Context(), "", req.Email, "denied")
			// Generic error to prevent user enumeration
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to log in")
		return
	}

	h.audit.LogLogin(r.Context(), result.User.ID, result.User.Email, "success")

	writeJSON(w, http.StatusOK, LoginResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
		User:      toUserResponse(result.User),
	})
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing auth")
		return
	}

	if err := h.directory.Logout(r.Context(), token); err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		h.logger.Error("logout failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "missing auth")
		return
	}

	user, err := h.directory.CurrentUser(r.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrInvalidSession) {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		h.logger.Error("current user lookup failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to resolve session")
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}
