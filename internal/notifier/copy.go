package notifier

import (
	"fmt"

	"github.com/yourorg/ridejoy/internal/domain"
)

const dateLayout = "January 2, 2006"

// WelcomeEmail is sent when a booking auto-provisions an account. The
// generated password goes out in the body so the customer can log in to the
// dashboard and follow their booking.
func WelcomeEmail(name, email, password string) (subject, body string) {
	subject = "Welcome to RideJoy - your account details"
	body = fmt.Sprintf(`<h2>Welcome to RideJoy, %s!</h2>
<p>We created an account for you so you can track your booking.</p>
<p><strong>Email:</strong> %s<br>
<strong>Password:</strong> %s</p>
<p>You can change your password after logging in to your dashboard.</p>
<p>- The RideJoy Team</p>`, name, email, password)
	return subject, body
}

// BookingReceivedEmail confirms that a booking request landed in the ledger.
func BookingReceivedEmail(b *domain.Booking) (subject, body string) {
	subject = "We received your booking request"
	body = fmt.Sprintf(`<h2>Thanks for booking with RideJoy, %s!</h2>
<p>Your booking request is in and our team is reviewing it.</p>
<p><strong>Booking reference:</strong> %s<br>
<strong>Pickup:</strong> %s on %s<br>
<strong>Return:</strong> %s on %s</p>
<p>We will email you as soon as the booking is confirmed.</p>
<p>- The RideJoy Team</p>`,
		b.Name,
		b.ID,
		b.PickupLocation, b.PickupDate.Format(dateLayout),
		b.ReturnLocation, b.ReturnDate.Format(dateLayout),
	)
	return subject, body
}

// StatusChangeEmail produces the update message for a booking's new status.
// ok is false for statuses that have no customer-facing copy; a move back to
// pending is an internal correction and sends nothing.
func StatusChangeEmail(b *domain.Booking) (subject, body string, ok bool) {
	switch b.Status {
	case domain.StatusConfirmed:
		subject = "Your RideJoy booking is confirmed"
		body = fmt.Sprintf(`<h2>Good news, %s!</h2>
<p>Your booking <strong>%s</strong> is confirmed.</p>
<p><strong>Pickup:</strong> %s on %s<br>
<strong>Return:</strong> %s on %s</p>
<p>Bring your driver's license and this email when you pick up the car.</p>
<p>- The RideJoy Team</p>`,
			b.Name, b.ID,
			b.PickupLocation, b.PickupDate.Format(dateLayout),
			b.ReturnLocation, b.ReturnDate.Format(dateLayout),
		)
	case domain.StatusCancelled:
		subject = "Your RideJoy booking has been cancelled"
		body = fmt.Sprintf(`<h2>Hi %s,</h2>
<p>Your booking <strong>%s</strong> has been cancelled.</p>
<p>If this was unexpected, reply to this email and we'll sort it out.</p>
<p>- The RideJoy Team</p>`, b.Name, b.ID)
	case domain.StatusCompleted:
		subject = "Thanks for riding with RideJoy"
		body = fmt.Sprintf(`<h2>Hi %s,</h2>
<p>Your booking <strong>%s</strong> is complete. We hope the ride was great!</p>
<p>We'd love to see you again next time you need a car.</p>
<p>- The RideJoy Team</p>`, b.Name, b.ID)
	default:
		return "", "", false
	}
	return subject, body, true
}
