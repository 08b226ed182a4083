package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yourorg/ridejoy/internal/domain"
	"github.com/yourorg/ridejoy/internal/repository"
	"github.com/yourorg/ridejoy/internal/session"
)

func newTestDirectory() *DirectoryService {
	return NewDirectoryService(
		repository.NewMemoryUserRepository(),
		session.NewMemoryStore(),
		DirectoryConfig{
			JWTSecret:     "test-secret",
			SessionTTL:    time.Hour,
			AdminName:     "Admin",
			AdminEmail:    "admin@ridejoy.com",
			AdminPassword: "admin123",
		},
		nil,
	)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestDirectory()
	ctx := context.Background()

	user, err := s.Register(ctx, "Alice", "alice@example.com", "Password123", domain.RoleUser)
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.ID == "" {
		t.Fatalf("expected user id")
	}
	if user.PasswordHash == "Password123" {
		t.Fatalf("password stored in plaintext")
	}

	// Duplicate email
	if _, err := s.Register(ctx, "Alice Again", "alice@example.com", "Other123", domain.RoleUser); !errors.Is(err, repository.ErrDuplicateUser) {
		t.Fatalf("expected ErrDuplicateUser, got %v", err)
	}

	// Login ok
	result, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if result.Token == "" {
		t.Fatalf("expected token on login")
	}

	// Wrong password and unknown email fail the same way
	if _, err := s.Login(ctx, "alice@example.com", "Wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for wrong password, got %v", err)
	}
	if _, err := s.Login(ctx, "nobody@example.com", "Password123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestCurrentUserAcrossLoginAndLogout(t *testing.T) {
	s := newTestDirectory()
	ctx := context.Background()

	if _, err := s.Register(ctx, "Alice", "alice@example.com", "Password123", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	result, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	current, err := s.CurrentUser(ctx, result.Token)
	if err != nil {
		t.Fatalf("current user failed: %v", err)
	}
	if current.Email != "alice@example.com" {
		t.Fatalf("expected alice, got %s", current.Email)
	}

	if err := s.Logout(ctx, result.Token); err != nil {
		t.Fatalf("logout failed: %v", err)
	}

	// The same token is dead after logout even though its signature is valid.
	if _, err := s.CurrentUser(ctx, result.Token); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession after logout, got %v", err)
	}
}

func TestCurrentUserRejectsGarbageToken(t *testing.T) {
	s := newTestDirectory()

	if _, err := s.CurrentUser(context.Background(), "not-a-token"); !errors.Is(err, ErrInvalidSession) {
		t.Fatalf("expected ErrInvalidSession, got %v", err)
	}
}

func TestIsAdmin(t *testing.T) {
	s := newTestDirectory()
	ctx := context.Background()

	if err := s.EnsureAdminBootstrap(ctx); err != nil {
		t.Fatalf("bootstrap failed: %v", err)
	}
	if _, err := s.Register(ctx, "Alice", "alice@example.com", "Password123", domain.RoleUser); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	adminLogin, err := s.Login(ctx, "admin@ridejoy.com", "admin123")
	if err != nil {
		t.Fatalf("admin login failed: %v", err)
	}
	userLogin, err := s.Login(ctx, "alice@example.com", "Password123")
	if err != nil {
		t.Fatalf("user login failed: %v", err)
	}

	if !s.IsAdmin(ctx, adminLogin.Token) {
		t.Fatalf("expected admin token to be admin")
	}
	if s.IsAdmin(ctx, userLogin.Token) {
		t.Fatalf("expected user token to not be admin")
	}
	if s.IsAdmin(ctx, "garbage") {
		t.Fatalf("expected garbage token to not be admin")
	}
}

func TestAdminBootstrapIdempotent(t *testing.T) {
	s := newTestDirectory()
	ctx := context.Background()

	if err := s.EnsureAdminBootstrap(ctx); err != nil {
		t.Fatalf("first bootstrap failed: %v", err)
	}
	if err := s.EnsureAdminBootstrap(ctx); err != nil {
		t.Fatalf("second bootstrap failed: %v", err)
	}

	count, err := s.users.CountAdmins(ctx)
	if err != nil {
		t.Fatalf("count failed: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly one admin, got %d", count)
	}
}

func TestRegisterValidation(t *testing.T) {
	s := newTestDirectory()
	ctx := context.Background()

	cases := []struct {
		name, email, password string
	}{
		{"", "alice@example.com", "Password123"},
		{"Alice", "", "Password123"},
		{"Alice", "alice@example.com", ""},
		{"Alice", "not-an-email", "Password123"},
	}

	for _, tc := range cases {
		if _, err := s.Register(ctx, tc.name, tc.email, tc.password, domain.RoleUser); !errors.Is(err, ErrValidation) {
			t.Fatalf("expected ErrValidation for %+v, got %v", tc, err)
		}
	}
}
