package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/yourorg/ridejoy/internal/domain"
	"github.com/yourorg/ridejoy/internal/handler"
	"github.com/yourorg/ridejoy/internal/infrastructure/logger"
	"github.com/yourorg/ridejoy/internal/infrastructure/redis"
	"github.com/yourorg/ridejoy/internal/notifier"
	"github.com/yourorg/ridejoy/internal/observability/metrics"
	"github.com/yourorg/ridejoy/internal/observability/tracing"
	"github.com/yourorg/ridejoy/internal/repository"
	"github.com/yourorg/ridejoy/internal/security/audit"
	"github.com/yourorg/ridejoy/internal/security/middleware"
	"github.com/yourorg/ridejoy/internal/security/ratelimit"
	"github.com/yourorg/ridejoy/internal/service"
	"github.com/yourorg/ridejoy/internal/session"
	"github.com/yourorg/ridejoy/pkg/cache"
	"github.com/yourorg/ridejoy/pkg/config"
	"github.com/yourorg/ridejoy/pkg/database"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Initialize structured logger
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("starting RideJoy server",
		slog.String("environment", cfg.Environment),
		slog.String("store_driver", cfg.StoreDriver),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 3. Initialize tracing (no-op unless OTEL_EXPORTER_OTLP_ENDPOINT is set)
	shutdownTracing, err := tracing.Init(ctx, log, "ridejoy", cfg.Environment)
	if err != nil {
		log.Error("failed to initialize tracing", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Initialize the record store
	var (
		users    domain.UserRepository
		bookings domain.BookingRepository
		emails   domain.EmailRepository
		readyz   func(context.Context) error
	)

	switch cfg.StoreDriver {
	case "postgres":
		pool, err := database.NewConnectionPool(ctx, &database.Config{
			Host:     cfg.DatabaseHost,
			Port:     cfg.DatabasePort,
			User:     cfg.DatabaseUser,
			Password: cfg.DatabasePassword,
			Database: cfg.DatabaseName,
			SSLMode:  cfg.DatabaseSSLMode,
		}, log)
		if err != nil {
			log.Error("failed to connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()

		db := pool.GetDB()
		users = repository.NewPostgresUserRepository(db, log)
		bookings = repository.NewPostgresBookingRepository(db, log)
		emails = repository.NewPostgresEmailRepository(db, log)
		readyz = pool.Health
	case "memory":
		users = repository.NewMemoryUserRepository()
		bookings = repository.NewMemoryBookingRepository()
		emails = repository.NewMemoryEmailRepository()
		readyz = func(context.Context) error { return nil }
	}

	// 5. Initialize the session store: Redis when configured, else in-process
	var sessions session.Store
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Error("failed to connect to Redis", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer redisClient.Close()
		sessions = session.NewRedisStore(redisClient, log)
	} else {
		log.Info("REDIS_URL not set, using in-process session store")
		sessions = session.NewMemoryStore()
	}

	// 6. Initialize services
	directory := service.NewDirectoryService(users, sessions, service.DirectoryConfig{
		JWTSecret:     cfg.JWTSecret,
		SessionTTL:    cfg.SessionTTL,
		AdminName:     cfg.AdminName,
		AdminEmail:    cfg.AdminEmail,
		AdminPassword: cfg.AdminPassword,
	}, log)

	bootstrapCtx, bootstrapCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := directory.EnsureAdminBootstrap(bootstrapCtx); err != nil {
		bootstrapCancel()
		log.Error("failed to bootstrap admin account", slog.String("error", err.Error()))
		os.Exit(1)
	}
	bootstrapCancel()

	mailer := notifier.NewMailer(emails, cfg.SMTP, log)
	ledger := service.NewLedgerService(bookings, directory, mailer, cache.New(), cfg.CacheTTL, log)

	// 7. Initialize security components
	rateLimiter := ratelimit.NewLimiter(100, time.Minute) // 100 requests per minute per client
	defer rateLimiter.Stop()
	auditLogger := audit.NewLogger(log)

	// 8. Initialize handlers
	authHandler := handler.NewAuthHandler(directory, rateLimiter, auditLogger, log)
	bookingHandler := handler.NewBookingHandler(ledger, directory, auditLogger, log)
	emailHandler := handler.NewEmailHandler(mailer, directory, log)

	// 9. Setup HTTP routes
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
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/readyz", func(w http.ResponseWriter, r *http.Request) {
		checkCtx, checkCancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer checkCancel()
		if err := readyz(checkCtx); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte("store not ready"))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ready"))
	})

	// CORS middleware honoring configured origins
	handlerWithCORS := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if originAllowed(cfg.CORSAllowedOrigins, origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
		} else if len(cfg.CORSAllowedOrigins) > 0 {
			w.Header().Set("Access-Control-Allow-Origin", cfg.CORSAllowedOrigins[0])
		}
		w.Header().Set("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Accept, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		mux.ServeHTTP(w, r)
	})

	// Chain middleware: request ID -> metrics -> rate limit -> content type -> CORS
	rootHandler := withRequestID(
		metrics.HTTPMetricsMiddleware(
			middleware.RateLimitMiddleware(rateLimiter, log)(
				middleware.ValidateJSONContentType(log)(handlerWithCORS),
			),
		),
		log,
	)

	// 10. Start HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      otelhttp.NewHandler(rootHandler, "ridejoy"),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	smtpMode := "record-only"
	if cfg.SMTP.Configured() {
		smtpMode = "configured"
	}
	log.Info("server starting",
		slog.Int("port", cfg.ServerPort),
		slog.String("smtp", smtpMode),
	)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", slog.String("error", err.Error()))
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Info("shutdown signal received")

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", slog.String("error", err.Error()))
	}

	if err := shutdownTracing(shutdownCtx); err != nil {
		log.Error("tracing shutdown error", slog.String("error", err.Error()))
	}

	log.Info("server stopped")
}

type requestIDKey struct{}

// withRequestID attaches a request ID to the context and response headers for traceability
func withRequestID(next http.Handler, log *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := generateRequestID()
		w.Header().Set("X-Request-ID", reqID)

		ctx := context.WithValue(r.Context(), requestIDKey{}, reqID)
		start := time.Now()

		next.ServeHTTP(w, r.WithContext(ctx))

		log.Info("request completed",
			slog.String("request_id", reqID),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration_ms", time.Since(start)),
		)
	})
}

func originAllowed(allowed []string, origin string) bool {
	if origin == "" {
		return false
	}
	for _, a := range allowed {
		if a == "*" || a == origin {
			return true
		}
	}
	return false
}

func generateRequestID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
