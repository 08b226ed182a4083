package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"

	"github.com/yourorg/ridejoy/internal/infrastructure/logger"
	"github.com/yourorg/ridejoy/migrations"
	"github.com/yourorg/ridejoy/pkg/config"
)

func main() {
	command := flag.String("command", "up", "migration command: up, status or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.LogLevel)

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DatabaseHost,
		cfg.DatabasePort,
		cfg.DatabaseUser,
		cfg.DatabasePassword,
		cfg.DatabaseName,
		cfg.DatabaseSSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Error("failed to open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Error("failed to ping database", slog.String("error", err.Error()))
		os.Exit(1)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Error("failed to configure goose", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	switch *command {
	case "up":
		log.Info("applying migrations")
		err = goose.UpContext(ctx, db, ".")
	case "status":
		err = goose.StatusContext(ctx, db, ".")
	case "down":
		log.Info("rolling back latest migration")
		err = goose.DownContext(ctx, db, ".")
	default:
		log.Error("unknown command", slog.String("command", *command))
		os.Exit(1)
	}

	if err != nil {
		log.Error("migration failed",
			slog.String("command", *command),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	log.Info("migration complete", slog.String("command", *command))
}
