package notifier

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/yourorg/ridejoy/internal/domain"
	"github.com/yourorg/ridejoy/internal/repository"
	"github.com/yourorg/ridejoy/pkg/config"
)

func TestSendRecordsWithoutSMTP(t *testing.T) {
	records := repository.NewMemoryEmailRepository()
	m := NewMailer(records, config.SMTPConfig{From: "noreply@ridejoy.com"}, nil)

	ok := m.Send(context.Background(), "alice@example.com", "hello", "<p>hi</p>")
	if !ok {
		t.Fatalf("expected record-only send to report success")
	}

	sent, err := m.ListSent(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected one record, got %d", len(sent))
	}
	if sent[0].To != "alice@example.com" || sent[0].Subject != "hello" {
		t.Fatalf("unexpected record: %+v", sent[0])
	}
	if sent[0].SentAt.IsZero() {
		t.Fatalf("expected sent timestamp to be set")
	}
}

func TestSendRecordsEvenWhenDeliveryFails(t *testing.T) {
	records := repository.NewMemoryEmailRepository()
	// Credentials present but the relay is unreachable, so delivery fails.
	cfg := config.SMTPConfig{
		Host:     "127.0.0.1",
		Port:     1, // nothing listens here
		Username: "user",
		Password: "pass",
		From:     "noreply@ridejoy.com",
	}
	m := NewMailer(records, cfg, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	ok := m.Send(ctx, "alice@example.com", "hello", "<p>hi</p>")
	if ok {
		t.Fatalf("expected delivery failure to report false")
	}

	sent, err := m.ListSent(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(sent) != 1 {
		t.Fatalf("expected the attempt to be recorded, got %d records", len(sent))
	}
}

func TestStatusChangeEmailCopy(t *testing.T) {
	booking := &domain.Booking{
		ID:             "bk-1",
		Name:           "Alice",
		Email:          "alice@example.com",
		PickupLocation: "Miami Beach",
		ReturnLocation: "Miami Beach",
		PickupDate:     time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
		ReturnDate:     time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
	}

	cases := []struct {
		status      domain.Status
		wantOK      bool
		wantSubject string
	}{
		{domain.StatusConfirmed, true, "confirmed"},
		{domain.StatusCancelled, true, "cancelled"},
		{domain.StatusCompleted, true, "Thanks"},
		{domain.StatusPending, false, ""},
	}

	for _, tc := range cases {
		booking.Status = tc.status
		subject, body, ok := StatusChangeEmail(booking)
		if ok != tc.wantOK {
			t.Fatalf("status %s: expected ok=%v, got %v", tc.status, tc.wantOK, ok)
		}
		if !tc.wantOK {
			continue
		}
		if !strings.Contains(subject, tc.wantSubject) {
			t.Fatalf("status %s: subject %q missing %q", tc.status, subject, tc.wantSubject)
		}
		if !strings.Contains(body, booking.ID) {
			t.Fatalf("status %s: body missing booking reference", tc.status)
		}
	}
}

func TestWelcomeEmailContainsCredentials(t *testing.T) {
	subject, body := WelcomeEmail("Alice", "alice@example.com", "s3cret99")
	if !strings.Contains(subject, "Welcome") {
		t.Fatalf("unexpected subject %q", subject)
	}
	if !strings.Contains(body, "alice@example.com") || !strings.Contains(body, "s3cret99") {
		t.Fatalf("welcome body missing credentials")
	}
}
