package domain

import (
	"context"
	"time"
)

// EmailRecord is one entry in the append-only log of outbound mail. A record
// is written for every send attempt, whether or not SMTP delivery happened.
type EmailRecord struct {
	ID      string // UUID
	To      string
	Subject string
	Body    string // HTML
	SentAt  time.Time
}

// EmailRepository defines data access for the sent-email log
type EmailRepository interface {
	Append(ctx context.Context, record *EmailRecord) error
	// List returns the full log in insertion order.
	List(ctx context.Context) ([]*EmailRecord, error)
}
