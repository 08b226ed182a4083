package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/yourorg/ridejoy/internal/domain"
)

// PostgresEmailRepository implements domain.EmailRepository using PostgreSQL.
// The sent_emails table is append-only; nothing updates or deletes rows.
type PostgresEmailRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewPostgresEmailRepository creates a new sent-email repository
func NewPostgresEmailRepository(db *sql.DB, logger *slog.Logger) *PostgresEmailRepository {
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresEmailRepository{
		db:     db,
		logger: logger,
	}
}

// Append records an outbound email
func (r *PostgresEmailRepository) Append(ctx context.Context, record *domain.EmailRecord) error {
	query := `
		INSERT INTO sent_emails (id, recipient, subject, body, sent_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.To,
		record.Subject,
		record.Body,
		record.SentAt,
	)

	if err != nil {
		r.logger.Error("failed to append email record",
			slog.String("recipient", record.To),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("failed to append email record: %w", err)
	}

	return nil
}

// List returns the full log in insertion order
func (r *PostgresEmailRepository) List(ctx context.Context) ([]*domain.EmailRecord, error) {
	query := `
		SELECT id, recipient, subject, body, sent_at
		FROM sent_emails
		ORDER BY seq ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("failed to list email records", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list email records: %w", err)
	}
	defer rows.Close()

	var records []*domain.EmailRecord
	for rows.Next() {
		record := &domain.EmailRecord{}
		err := rows.Scan(
			&record.ID,
			&record.To,
			&record.Subject,
			&record.Body,
			&record.SentAt,
		)
		if err != nil {
			r.logger.Error("failed to scan email row",
				slog.String("error", err.Error()),
			)
			return nil, fmt.Errorf("failed to scan email record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
