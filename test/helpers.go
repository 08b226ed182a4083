package test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/yourorg/ridejoy/internal/handler"
	"github.com/yourorg/ridejoy/internal/infrastructure/logger"
	"github.com/yourorg/ridejoy/internal/notifier"
	"github.com/yourorg/ridejoy/internal/repository"
	"github.com/yourorg/ridejoy/internal/security/audit"
	"github.com/yourorg/ridejoy/internal/security/ratelimit"
	"github.com/yourorg/ridejoy/internal/service"
	"github.com/yourorg/ridejoy/internal/session"
	"github.com/yourorg/ridejoy/pkg/cache"
	"github.com/yourorg/ridejoy/pkg/config"
)

const (
	adminEmail    = "admin@ridejoy.com"
	adminPassword = "admin123"
)

// TestServerHelper runs the full API against in-memory stores, so flows can
// be exercised end to end without Postgres, Redis, or an SMTP relay.
type TestServerHelper struct {
	Server *httptest.Server
	Logger *slog.Logger
	Mailer *notifier.Mailer
}

func NewTestServer(t *testing.T) *TestServerHelper {
	t.Helper()

	log := logger.NewLogger("debug")

	users := repository.NewMemoryUserRepository()
	bookings := repository.NewMemoryBookingRepository()
	emails := repository.NewMemoryEmailRepository()
	sessions := session.NewMemoryStore()

	directory := service.NewDirectoryService(users, sessions, service.DirectoryConfig{
		JWTSecret:     "test-secret",
		SessionTTL:    time.Hour,
		AdminName:     "Admin",
		AdminEmail:    adminEmail,
		AdminPassword: adminPassword,
	}, log)
	if err := directory.EnsureAdminBootstrap(t.Context()); err != nil {
		t.Fatalf("admin bootstrap failed: %v", err)
	}

	mailer := notifier.NewMailer(emails, config.SMTPConfig{From: "noreply@ridejoy.com"}, log)
	ledger := service.NewLedgerService(bookings, directory, mailer, cache.New(), 0, log)

	limiter := ratelimit.NewLimiter(1000, time.Minute)
	t.Cleanup(limiter.Stop)
	auditLogger := audit.NewLogger(log)

	authHandler := handler.NewAuthHandler(directory, limiter, auditLogger, log)
	bookingHandler := handler.NewBookingHandler(ledger, directory, auditLogger, log)
	emailHandler := handler.NewEmailHandler(mailer, directory, log)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", authHandler.Register)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/logout", authHandler.Logout)
	mux.HandleFunc("GET /api/me", authHandler.Me)
	mux.HandleFunc("POST /api/bookings", bookingHandler.Create)
	mux.HandleFunc("GET /api/bookings", bookingHandler.List)
	mux.HandleFunc("GET /api/bookings/{id}", bookingHandler.Get)
	mux.HandleFunc("PATCH /api/bookings/{id}/status", bookingHandler.UpdateStatus)
	mux.HandleFunc("GET /api/emails", emailHandler.List)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &TestServerHelper{
		Server: server,
		Logger: log,
		Mailer: mailer,
	}
}

func (h *TestServerHelper) URL() string {
	return h.Server.URL
}

// DoJSON sends a JSON request with optional bearer token and decodes the
// response body into out when out is non-nil.
func (h *TestServerHelper) DoJSON(t *testing.T, method, path, token string, payload, out any) *http.Response {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, h.URL()+path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s response: %v", method, path, err)
		}
	}

	return resp
}

// Login authenticates and returns the bearer token
func (h *TestServerHelper) Login(t *testing.T, email, password string) string {
	t.Helper()

	var result struct {
		Token string `json:"token"`
	}
	resp := h.DoJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	AssertStatusCode(t, resp, http.StatusOK)

	if result.Token == "" {
		t.Fatal("login returned an empty token")
	}
	return result.Token
}

// AssertStatusCode helper function
func AssertStatusCode(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("Expected status %d, got %d", expected, resp.StatusCode)
	}
}
