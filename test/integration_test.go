package test

import (
	"io"
	"net/http"
	"testing"
	"time"
)

type bookingPayload struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Address        string `json:"address"`
	PickupLocation string `json:"pickupLocation"`
	ReturnLocation string `json:"returnLocation"`
	PickupDate     string `json:"pickupDate"`
	ReturnDate     string `json:"returnDate"`
}

type bookingBody struct {
	ID     string `json:"id"`
	Email  string `json:"email"`
	Status string `json:"status"`
}

type createBookingBody struct {
	Booking        bookingBody `json:"booking"`
	AccountCreated bool        `json:"accountCreated"`
	WelcomeSent    bool        `json:"welcomeSent"`
	ReceiptSent    bool        `json:"receiptSent"`
}

type emailBody struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
}

func validBooking(email string) bookingPayload {
	pickup := time.Now().Add(48 * time.Hour)
	return bookingPayload{
		Name:           "Jamie Rivera",
		Email:          email,
		Address:        "12 Harbor Lane",
		PickupLocation: "Downtown",
		ReturnLocation: "Airport",
		PickupDate:     pickup.Format(time.RFC3339),
		ReturnDate:     pickup.Add(72 * time.Hour).Format(time.RFC3339),
	}
}

func TestHealthEndpoints(t *testing.T) {
	server := NewTestServer(t)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(server.URL() + path)
		if err != nil {
			t.Fatalf("GET %s failed: %v", path, err)
		}
		AssertStatusCode(t, resp, http.StatusOK)
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}
}

func TestAdminBootstrapLogin(t *testing.T) {
	server := NewTestServer(t)

	token := server.Login(t, adminEmail, adminPassword)

	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	resp := server.DoJSON(t, http.MethodGet, "/api/me", token, nil, &me)
	AssertStatusCode(t, resp, http.StatusOK)
	if me.Role != "admin" || me.Email != adminEmail {
		t.Errorf("expected bootstrapped admin, got %+v", me)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	server := NewTestServer(t)

	resp := server.DoJSON(t, http.MethodPost, "/api/login", "", map[string]string{
		"email":    adminEmail,
		"password": "wrong",
	}, nil)
	AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestBookingProvisionsAccountAndNotifies(t *testing.T) {
	server := NewTestServer(t)

	var created createBookingBody
	resp := server.DoJSON(t, http.MethodPost, "/api/bookings", "", validBooking("jamie@example.com"), &created)
	AssertStatusCode(t, resp, http.StatusCreated)

	if created.Booking.Status != "pending" {
		t.Errorf("expected new booking to be pending, got %q", created.Booking.Status)
	}
	if !created.AccountCreated || !created.WelcomeSent || !created.ReceiptSent {
		t.Errorf("expected account provisioning and both emails, got %+v", created)
	}

	adminToken := server.Login(t, adminEmail, adminPassword)

	var emails []emailBody
	resp = server.DoJSON(t, http.MethodGet, "/api/emails", adminToken, nil, &emails)
	AssertStatusCode(t, resp, http.StatusOK)

	if len(emails) != 2 {
		t.Fatalf("expected 2 emails, got %d", len(emails))
	}
	if emails[0].Subject != "Welcome to RideJoy - your account details" {
		t.Errorf("expected welcome email first, got %q", emails[0].Subject)
	}
	if emails[1].Subject != "We received your booking request" {
		t.Errorf("expected booking receipt second, got %q", emails[1].Subject)
	}
	for _, e := range emails {
		if e.To != "jamie@example.com" {
			t.Errorf("email sent to %q, want jamie@example.com", e.To)
		}
	}
}

func TestExistingAccountSkipsProvisioning(t *testing.T) {
	server := NewTestServer(t)

	resp := server.DoJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name":     "Sam Lee",
		"email":    "sam@example.com",
		"password": "hunter22",
	}, nil)
	AssertStatusCode(t, resp, http.StatusCreated)

	var created createBookingBody
	resp = server.DoJSON(t, http.MethodPost, "/api/bookings", "", validBooking("sam@example.com"), &created)
	AssertStatusCode(t, resp, http.StatusCreated)

	if created.AccountCreated || created.WelcomeSent {
		t.Errorf("expected no provisioning for existing account, got %+v", created)
	}
	if !created.ReceiptSent {
		t.Error("expected booking receipt to be sent")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	server := NewTestServer(t)

	payload := map[string]string{
		"name":     "Sam Lee",
		"email":    "sam@example.com",
		"password": "hunter22",
	}
	resp := server.DoJSON(t, http.MethodPost, "/api/register", "", payload, nil)
	AssertStatusCode(t, resp, http.StatusCreated)

	resp = server.DoJSON(t, http.MethodPost, "/api/register", "", payload, nil)
	AssertStatusCode(t, resp, http.StatusConflict)
}

func TestBookingVisibilityByRole(t *testing.T) {
	server := NewTestServer(t)

	server.DoJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Sam Lee", "email": "sam@example.com", "password": "hunter22",
	}, nil)
	server.DoJSON(t, http.MethodPost, "/api/bookings", "", validBooking("sam@example.com"), nil)
	server.DoJSON(t, http.MethodPost, "/api/bookings", "", validBooking("jamie@example.com"), nil)

	adminToken := server.Login(t, adminEmail, adminPassword)
	var all []bookingBody
	resp := server.DoJSON(t, http.MethodGet, "/api/bookings", adminToken, nil, &all)
	AssertStatusCode(t, resp, http.StatusOK)
	if len(all) != 2 {
		t.Errorf("admin expected 2 bookings, got %d", len(all))
	}

	var pending []bookingBody
	resp = server.DoJSON(t, http.MethodGet, "/api/bookings?status=pending", adminToken, nil, &pending)
	AssertStatusCode(t, resp, http.StatusOK)
	if len(pending) != 2 {
		t.Errorf("expected 2 pending bookings, got %d", len(pending))
	}

	samToken := server.Login(t, "sam@example.com", "hunter22")
	var own []bookingBody
	resp = server.DoJSON(t, http.MethodGet, "/api/bookings", samToken, nil, &own)
	AssertStatusCode(t, resp, http.StatusOK)
	if len(own) != 1 || own[0].Email != "sam@example.com" {
		t.Errorf("user expected only their booking, got %+v", own)
	}
}

func TestStatusUpdateFlow(t *testing.T) {
	server := NewTestServer(t)

	var created createBookingBody
	server.DoJSON(t, http.MethodPost, "/api/bookings", "", validBooking("jamie@example.com"), &created)
	id := created.Booking.ID

	adminToken := server.Login(t, adminEmail, adminPassword)

	var updated bookingBody
	resp := server.DoJSON(t, http.MethodPatch, "/api/bookings/"+id+"/status", adminToken,
		map[string]string{"status": "confirmed"}, &updated)
	AssertStatusCode(t, resp, http.StatusOK)
	if updated.Status != "confirmed" {
		t.Errorf("expected confirmed, got %q", updated.Status)
	}

	var emails []emailBody
	server.DoJSON(t, http.MethodGet, "/api/emails", adminToken, nil, &emails)
	last := emails[len(emails)-1]
	if last.Subject != "Your RideJoy booking is confirmed" {
		t.Errorf("expected confirmation email last, got %q", last.Subject)
	}

	resp = server.DoJSON(t, http.MethodPatch, "/api/bookings/"+id+"/status", adminToken,
		map[string]string{"status": "teleported"}, nil)
	AssertStatusCode(t, resp, http.StatusBadRequest)

	resp = server.DoJSON(t, http.MethodPatch, "/api/bookings/missing/status", adminToken,
		map[string]string{"status": "confirmed"}, nil)
	AssertStatusCode(t, resp, http.StatusNotFound)
}

func TestOwnerCanUpdateOnlyTheirBooking(t *testing.T) {
	server := NewTestServer(t)

	server.DoJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Sam Lee", "email": "sam@example.com", "password": "hunter22",
	}, nil)
	server.DoJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Alex Kim", "email": "alex@example.com", "password": "hunter23",
	}, nil)

	var created createBookingBody
	server.DoJSON(t, http.MethodPost, "/api/bookings", "", validBooking("sam@example.com"), &created)
	id := created.Booking.ID

	samToken := server.Login(t, "sam@example.com", "hunter22")
	var updated bookingBody
	resp := server.DoJSON(t, http.MethodPatch, "/api/bookings/"+id+"/status", samToken,
		map[string]string{"status": "cancelled"}, &updated)
	AssertStatusCode(t, resp, http.StatusOK)
	if updated.Status != "cancelled" {
		t.Errorf("expected cancelled, got %q", updated.Status)
	}

	alexToken := server.Login(t, "alex@example.com", "hunter23")
	resp = server.DoJSON(t, http.MethodPatch, "/api/bookings/"+id+"/status", alexToken,
		map[string]string{"status": "confirmed"}, nil)
	AssertStatusCode(t, resp, http.StatusForbidden)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	server := NewTestServer(t)

	token := server.Login(t, adminEmail, adminPassword)

	resp := server.DoJSON(t, http.MethodPost, "/api/logout", token, nil, nil)
	AssertStatusCode(t, resp, http.StatusNoContent)

	resp = server.DoJSON(t, http.MethodGet, "/api/me", token, nil, nil)
	AssertStatusCode(t, resp, http.StatusUnauthorized)
}

func TestEmailLogRequiresAdmin(t *testing.T) {
	server := NewTestServer(t)

	server.DoJSON(t, http.MethodPost, "/api/register", "", map[string]string{
		"name": "Sam Lee", "email": "sam@example.com", "password": "hunter22",
	}, nil)
	samToken := server.Login(t, "sam@example.com", "hunter22")

	resp := server.DoJSON(t, http.MethodGet, "/api/emails", samToken, nil, nil)
	AssertStatusCode(t, resp, http.StatusForbidden)
}

func TestBookingValidation(t *testing.T) {
	server := NewTestServer(t)

	payload := validBooking("jamie@example.com")
	payload.ReturnDate = time.Now().Add(time.Hour).Format(time.RFC3339)
	payload.PickupDate = time.Now().Add(48 * time.Hour).Format(time.RFC3339)

	resp := server.DoJSON(t, http.MethodPost, "/api/bookings", "", payload, nil)
	AssertStatusCode(t, resp, http.StatusBadRequest)
}
