package mailer

import (
	"context"
	"fmt"

	"github.com/diagnosis/salon-bookings/internal/domain"
)

type Email struct {
	ToEmail string
	ToName  string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers one message and returns the provider's message id.
type Sender interface {
	Send(ctx context.Context, e Email) (string, error)
}

type Service interface {
	SendWelcome(ctx context.Context, u domain.User) error
	SendAppointmentConfirmation(ctx context.Context, a domain.Appointment) error
	SendAppointmentCancelled(ctx context.Context, a domain.Appointment) error
}

type service struct {
	sender Sender
	salon  string
}

// New builds the salon's transactional mails on top of sender.
func New(sender Sender, salonName string) Service {
	return &service{sender: sender, salon: salonName}
}

func name(c domain.Contact) string {
	return c.GivenName + " " + c.Surname
}

func (s *service) SendWelcome(ctx context.Context, u domain.User) error {
	subject := fmt.Sprintf("Welcome to %s", s.salon)
	text := fmt.Sprintf("Hi %s,\n\nyour %s account is ready. You can now book appointments from the app.", u.GivenName, s.salon)
	html := fmt.Sprintf(`<h2>Welcome to %s!</h2><p>Hi %s,</p><p>Your account is ready. You can now book appointments from the app.</p>`,
		s.salon, u.GivenName)
	_, err := s.sender.Send(ctx, Email{ToEmail: u.Email, ToName: u.FullName(), Subject: subject, Text: text, HTML: html})
	return err
}

func (s *service) SendAppointmentConfirmation(ctx context.Context, a domain.Appointment) error {
	subject := fmt.Sprintf("Your %s appointment on %s", a.Service.Name, a.Date)
	text := fmt.Sprintf("Hi %s,\n\nwe received your booking:\n%s with %s\n%s at %s (%d min, %.2f€)\n\nStatus: %s",
		a.Client.GivenName, a.Service.Name, a.Specialist.FullName(), a.Date, a.Time, a.Service.DurationMinutes, a.Service.Price, a.Status)
	html := fmt.Sprintf(`<h2>Booking received</h2>
		<p>Hi %s,</p>
		<p><strong>%s</strong> with %s</p>
		<p>%s at %s (%d min, %.2f€)</p>
		<p>Status: %s</p>`,
		a.Client.GivenName, a.Service.Name, a.Specialist.FullName(), a.Date, a.Time, a.Service.DurationMinutes, a.Service.Price, a.Status)
	_, err := s.sender.Send(ctx, Email{ToEmail: a.Client.Email, ToName: name(a.Client), Subject: subject, Text: text, HTML: html})
	return err
}

func (s *service) SendAppointmentCancelled(ctx context.Context, a domain.Appointment) error {
	subject := fmt.Sprintf("Appointment on %s cancelled", a.Date)
	text := fmt.Sprintf("Hi %s,\n\nyour %s appointment on %s at %s has been cancelled.", a.Client.GivenName, a.Service.Name, a.Date, a.Time)
	html := fmt.Sprintf(`<p>Hi %s,</p><p>Your <strong>%s</strong> appointment on %s at %s has been cancelled.</p>`,
		a.Client.GivenName, a.Service.Name, a.Date, a.Time)
	_, err := s.sender.Send(ctx, Email{ToEmail: a.Client.Email, ToName: name(a.Client), Subject: subject, Text: text, HTML: html})
	return err
}
