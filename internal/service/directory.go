package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/yourorg/ridejoy/internal/domain"
	"github.com/yourorg/ridejoy/internal/observability/metrics"
	"github.com/yourorg/ridejoy/internal/repository"
	"github.com/yourorg/ridejoy/internal/session"
	"golang.org/x/crypto/bcrypt"
)

// DirectoryService is the user directory: registration, login, sessions, and
// the admin bootstrap.
type DirectoryService struct {
	users      domain.UserRepository
	sessions   session.Store
	jwtKey     []byte
	sessionTTL time.Duration
	adminName  string
	adminEmail string
	adminPass  string
	logger     *slog.Logger
}

// DirectoryConfig carries the directory's tunables
type DirectoryConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// NewDirectoryService creates a new directory service
func NewDirectoryService(
	users domain.UserRepository,
	sessions session.Store,
	cfg DirectoryConfig,
	logger *slog.Logger,
) *DirectoryService {
	if logger == nil {
		logger = slog.Default()
	}

	return &DirectoryService{
		users:      users,
		sessions:   sessions,
		jwtKey:     []byte(cfg.JWTSecret),
		sessionTTL: cfg.SessionTTL,
		adminName:  cfg.AdminName,
		adminEmail: cfg.AdminEmail,
		adminPass:  cfg.AdminPassword,
		logger:     logger,
	}
}

// sessionClaims are the JWT claims for a login token. The registered ID claim
// is the session record key; the token is only as alive as that record.
type sessionClaims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LoginResult represents a successful login
type LoginResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// Register creates a new user account. Returns repository.ErrDuplicateUser
// when the email is already registered; the check is a case-sensitive exact
// match, same as the lookup login uses.
func (s *DirectoryService) Register(ctx context.Context, name, email, password string, role domain.Role) (*domain.User, error) {
	name = strings.TrimSpace(name)
	if name == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: name, email, and password are required", ErrValidation)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: malformed email address", ErrValidation)
	}
	if role == "" {
		role = domain.RoleUser
	}
	if role != domain.RoleUser && role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: unknown role %q", ErrValidation, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error("failed to hash password", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return nil, err
		}
		s.logger.Error("failed to create user", slog.String("error", err.Error()))
		return nil, errors.New("failed to register user")
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
		slog.String("role", string(user.Role)),
	)

	return user, nil
}

// Login authenticates a user, creates a session record, and returns a signed
// token. Any non-matching pair fails with ErrInvalidCredentials.
func (s *DirectoryService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		s.logger.Info("login attempt with unknown email", slog.String("email", email))
		metrics.ObserveLogin("failure")
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Info("login failed with wrong password", slog.String("email", email))
		metrics.ObserveLogin("failure")
		return nil, ErrInvalidCredentials
	}

	now := time.Now()
	sess := &session.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	if err := s.sessions.Put(ctx, sess); err != nil {
		s.logger.Error("failed to store session", slog.String("error", err.Error()))
		return nil, errors.New("failed to log in")
	}

	token, err := s.signToken(user, sess)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user logged in",
		slog.String("user_id", user.ID),
		slog.String("email", user.Email),
	)
	metrics.ObserveLogin("success")

	return &LoginResult{
		User:      user,
		Token:     token,
		ExpiresAt: sess.ExpiresAt,
	}, nil
}

// Logout deletes the session behind the token. The token is dead immediately
// even though its signature stays valid until expiry.
func (s *DirectoryService) Logout(ctx context.Context, token string) error {
	claims, err := s.parseToken(token)
	if err != nil {
		return ErrInvalidSession
	}

	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		s.logger.Error("failed to delete session",
			slog.String("session_id", claims.ID),
			slog.String("error", err.Error()),
		)
		return errors.New("failed to log out")
	}

	return nil
}

// CurrentUser resolves the token to its user, requiring the session record to
// still exist.
func (s *DirectoryService) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.parseToken(token)
	if err != nil {
		return nil, ErrInvalidSession
	}

	if _, err := s.sessions.Get(ctx, claims.ID); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidSession
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	return user, nil
}

// IsAdmin reports whether the token belongs to a live admin session
func (s *DirectoryService) IsAdmin(ctx context.Context, token string) bool {
	user, err := s.CurrentUser(ctx, token)
	return err == nil && user.Role == domain.RoleAdmin
}

// EnsureAdminBootstrap registers the well-known admin account if the
// directory has no admin yet. Safe to call on every start.
func (s *DirectoryService) EnsureAdminBootstrap(ctx context.Context) error {
	count, err := s.users.CountAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	if _, err := s.Register(ctx, s.adminName, s.adminEmail, s.adminPass, domain.RoleAdmin); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			// Lost a race with another instance bootstrapping the same admin.
			s.logger.Warn("admin bootstrap skipped, email already registered",
				slog.String("email", s.adminEmail),
			)
			return nil
		}
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}

	s.logger.Info("admin user created", slog.String("email", s.adminEmail))
	return nil
}

// HasAccount reports whether an account exists for the email
func (s *DirectoryService) HasAccount(ctx context.Context, email string) (bool, error) {
	_, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ProvisionAccount auto-registers an account with a random password at
// booking time and returns the generated password so the welcome email can
// carry it.
func (s *DirectoryService) ProvisionAccount(ctx context.Context, name, email string) (string, error) {
	password, err := generatePassword()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	if _, err := s.Register(ctx, name, email, password, domain.RoleUser); err != nil {
		return "", err
	}

	metrics.ObserveAccountProvisioned()
	return password, nil
}

func (s *DirectoryService) signToken(user *domain.User, sess *session.Session) (string, error) {
	claims := &sessionClaims{
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			Issuer:    "ridejoy",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtKey)
	if err != nil {
		s.logger.Error("failed to sign token", slog.String("error", err.Error()))
		return "", errors.New("failed to generate token")
	}

	return signed, nil
}

func (s *DirectoryService) parseToken(tokenString string) (*sessionClaims, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtKey, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

func generatePassword() (string, error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
