// Package flow holds the state of the multi-step screens: booking, adding a
// card, login and sign-up. Validation happens here, before any service call.
package flow

import (
	"errors"

	"github.com/diagnosis/salon-bookings/internal/nav"
)

// User-facing messages.
const (
	MsgSelectRequired   = "Please select all required fields"
	MsgBookingFailed    = "Failed to book appointment. Please try again."
	MsgBooked           = "Appointment booked"
	MsgCardDetails      = "Please fill in all card details"
	MsgCardFailed       = "Failed to add card. Please try again."
	MsgCardAdded        = "Card added"
	MsgFillAllFields    = "Please fill in all fields"
	MsgPasswordMismatch = "Passwords do not match"
	MsgLoginFailed      = "Login failed. Please check your credentials."
	MsgSignUpFailed     = "Sign up failed. Please try again."
)

var (
	ErrIncompleteSelection = errors.New("incomplete selection")
	ErrUnavailableSlot     = errors.New("time slot not available")
	ErrIncompleteForm      = errors.New("incomplete form")
	ErrPasswordMismatch    = errors.New("passwords do not match")
)

// Notifier shows transient messages; ui.Toaster satisfies it.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Router is the part of nav.Navigator the flows drive.
type Router interface {
	Navigate(r nav.Route, p nav.Params) error
	Reset(r nav.Route) error
}

type noopNotifier struct{}

func (noopNotifier) Success(string) {}
func (noopNotifier) Error(string) {}

func notifierOrNoop(n Notifier) Notifier {
	if n == nil {
		return noopNotifier{}
	}
	return n
}
