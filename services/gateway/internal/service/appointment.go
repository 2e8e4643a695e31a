package service

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/mailer"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
)

type AppointmentService interface {
	List(ctx context.Context, clientID int64) ([]domain.Appointment, error)
	Get(ctx context.Context, clientID, id int64) (*domain.Appointment, error)
	Create(ctx context.Context, clientID int64, req domain.BookingRequest) (*domain.Appointment, error)
	Cancel(ctx context.Context, clientID, id int64) (*domain.Appointment, error)
}

type appointmentService struct {
	store  repository.Store
	notify NotificationService
	mailer mailer.Service
	bus    events.Publisher
	clock  Clock
}

func NewAppointmentService(store repository.Store, notify NotificationService, mailer mailer.Service, bus events.Publisher, clock Clock) AppointmentService {
	return &appointmentService{store: store, notify: notify, mailer: mailer, bus: bus, clock: clock}
}

func (s *appointmentService) List(ctx context.Context, clientID int64) ([]domain.Appointment, error) {
	return s.store.ListAppointments(ctx, clientID)
}

func (s *appointmentService) Get(ctx context.Context, clientID, id int64) (*domain.Appointment, error) {
	a, err := s.store.GetAppointment(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *appointmentService) validate(req domain.BookingRequest) error {
	if err := req.Validate(); err != nil {
		return invalid("%s", err.Error())
	}
	if req.Date < s.clock.today() {
		return invalid("date is in the past")
	}
	if !slices.Contains(OpeningSlots, req.Time) {
		return invalid("time %s is outside opening slots", req.Time)
	}
	return nil
}

func (s *appointmentService) Create(ctx context.Context, clientID int64, req domain.BookingRequest) (*domain.Appointment, error) {
	if err := s.validate(req); err != nil {
		return nil, err
	}

	svc, err := s.store.GetService(ctx, req.ServiceID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("unknown service %d", req.ServiceID)
	} else if err != nil {
		return nil, err
	}
	specialist, err := s.store.GetSpecialist(ctx, req.SpecialistID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, invalid("unknown specialist %d", req.SpecialistID)
	} else if err != nil {
		return nil, err
	}
	client, err := s.store.FindUserByID(ctx, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	a, err := s.store.CreateAppointment(ctx, domain.Appointment{
		Date:       req.Date,
		Time:       req.Time,
		Status:     domain.AppointmentPending,
		Service:    svc,
		Specialist: specialist,
		Client:     client.Contact(),
		Notes:      req.Notes,
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Appointment created", "appointment_id", a.ID, "specialist_id", specialist.ID, "date", a.Date, "time", a.Time)

	publish(ctx, s.bus, events.AppointmentCreated, events.AppointmentCreatedEvent{
		AppointmentID: a.ID,
		ClientID:      clientID,
		ClientEmail:   client.Email,
		SpecialistID:  specialist.ID,
		ServiceName:   svc.Name,
		Date:          a.Date,
		Time:          a.Time,
		CreatedAt:     s.clock.now(),
	})
	s.announce(ctx, clientID, a, "Appointment booked",
		fmt.Sprintf("Your %s with %s on %s at %s is awaiting confirmation.", svc.Name, specialist.FullName(), a.Date, a.Time))
	if err := s.mailer.SendAppointmentConfirmation(ctx, a); err != nil {
		logger.WarnContext(ctx, "Failed to send confirmation email", "appointment_id", a.ID, "error", err)
	}
	return &a, nil
}

func (s *appointmentService) Cancel(ctx context.Context, clientID, id int64) (*domain.Appointment, error) {
	a, err := s.store.GetAppointment(ctx, clientID, id)
	if err != nil {
		return nil, err
	}
	if !a.CanCancel() {
		return nil, fmt.Errorf("%w: status is %s", ErrNotCancellable, a.Status)
	}

	a, err = s.store.SetAppointmentStatus(ctx, clientID, id, domain.AppointmentCancelled)
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Appointment cancelled", "appointment_id", a.ID)

	publish(ctx, s.bus, events.AppointmentCancelled, events.AppointmentCancelledEvent{
		AppointmentID: a.ID,
		ClientID:      clientID,
		Reason:        "cancelled by client",
		CancelledAt:   s.clock.now(),
	})
	s.announce(ctx, clientID, a, "Appointment cancelled",
		fmt.Sprintf("Your %s on %s at %s has been cancelled.", a.Service.Name, a.Date, a.Time))
	if err := s.mailer.SendAppointmentCancelled(ctx, a); err != nil {
		logger.WarnContext(ctx, "Failed to send cancellation email", "appointment_id", a.ID, "error", err)
	}
	return &a, nil
}

func (s *appointmentService) announce(ctx context.Context, clientID int64, a domain.Appointment, title, message string) {
	_, err := s.notify.Notify(ctx, clientID, NotificationInput{
		Title:   title,
		Message: message,
		Type:    domain.NotificationAppointment,
		Data:    &domain.NotificationData{AppointmentID: domain.Int64(a.ID)},
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to store notification", "appointment_id", a.ID, "error", err)
	}
}
