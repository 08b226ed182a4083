package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/yourorg/ridejoy/internal/notifier"
	"github.com/yourorg/ridejoy/internal/service"
)

// EmailRecordResponse is the wire shape of one sent-email log entry
type EmailRecordResponse struct {
	To      string    `json:"to"`
	Subject string    `json:"subject"`
	Body    string    `json:"body"`
	SentAt  time.Time `json:"sentAt"`
}

// EmailHandler exposes the sent-email log to the admin dashboard
type EmailHandler struct {
	mailer    *notifier.Mailer
	directory *service.DirectoryService
	logger    *slog.Logger
}

// NewEmailHandler creates a new email log handler
func NewEmailHandler(mailer *notifier.Mailer, directory *service.DirectoryService, logger *slog.Logger) *EmailHandler {
	return &EmailHandler{
		mailer:    mailer,
		directory: directory,
		logger:    logger,
	}
}

// List handles GET /api/emails (admin only)
func (h *EmailHandler) List(w http.ResponseWriter, r *http.Request) {
	if !h.directory.IsAdmin(r.Context(), bearerToken(r)) {
		writeError(w, http.StatusForbidden, "admin only")
		return
	}

	records, err := h.mailer.ListSent(r.Context())
	if err != nil {
		h.logger.Error("email log list failed", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "failed to list emails")
		return
	}

	out := make([]EmailRecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, EmailRecordResponse{
			To:      rec.To,
			Subject: rec.Subject,
			Body:    rec.Body,
			SentAt:  rec.SentAt,
		})
	}

	writeJSON(w, http.StatusOK, out)
}
