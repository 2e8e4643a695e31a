package service

import (
	"context"
	"fmt"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
	"github.com/diagnosis/salon-bookings/pkg/logger"
)

type AppointmentService interface {
	List(ctx context.Context) (Result[[]domain.Appointment], error)
	Get(ctx context.Context, id int64) (Result[*domain.Appointment], error)
	Create(ctx context.Context, req domain.BookingRequest) (Result[domain.Appointment], error)
	Cancel(ctx context.Context, id int64) (Result[*domain.Appointment], error)
}

type appointmentService struct {
	base
	cache cache[domain.Appointment]
}

func NewAppointmentService(api Requester, opts Options) AppointmentService {
	return &appointmentService{base: newBase(api, opts)}
}

func (s *appointmentService) List(ctx context.Context) (Result[[]domain.Appointment], error) {
	var list []domain.Appointment
	if err := s.api.Get(ctx, "/appointments", nil, &list); err != nil {
		if !s.fallback(ctx, "appointments", err) {
			return Result[[]domain.Appointment]{}, fmt.Errorf("failed to list appointments: %w", err)
		}
		return demoResult(s.cache.seed(mock.Appointments())), nil
	}
	return remoteResult(s.cache.replace(list)), nil
}

// Get looks id up in the cached list, loading it first if needed. A miss
// yields nil data.
func (s *appointmentService) Get(ctx context.Context, id int64) (Result[*domain.Appointment], error) {
	if !s.cache.isLoaded() {
		if _, err := s.List(ctx); err != nil {
			return Result[*domain.Appointment]{}, err
		}
	}
	src := s.cache.source()
	a, ok := s.cache.find(func(a domain.Appointment) bool { return a.ID == id })
	if !ok {
		return Result[*domain.Appointment]{Source: src}, nil
	}
	return Result[*domain.Appointment]{Data: &a, Source: src}, nil
}

func (s *appointmentService) Create(ctx context.Context, req domain.BookingRequest) (Result[domain.Appointment], error) {
	if err := req.Validate(); err != nil {
		return Result[domain.Appointment]{}, fmt.Errorf("invalid booking: %w", err)
	}

	var created domain.Appointment
	if err := s.api.Post(ctx, "/appointments", req, &created); err != nil {
		simulate, werr := s.writeFailed(ctx, "create appointment", err)
		if !simulate {
			return Result[domain.Appointment]{}, werr
		}
		created = s.localAppointment(req)
		s.cache.seed(mock.Appointments())
		s.cache.append(created)
		return demoResult(created), nil
	}

	s.cache.append(created)
	logger.InfoContext(ctx, "Appointment created", "appointment_id", created.ID, "date", created.Date, "time", created.Time)
	return remoteResult(created), nil
}

// Cancel changes only the status of the appointment. An id found nowhere
// yields nil data.
func (s *appointmentService) Cancel(ctx context.Context, id int64) (Result[*domain.Appointment], error) {
	src := SourceRemote
	var resp domain.Appointment
	if err := s.api.Post(ctx, fmt.Sprintf("/appointments/%d/cancel", id), nil, &resp); err != nil {
		simulate, werr := s.writeFailed(ctx, "cancel appointment", err)
		if !simulate {
			return Result[*domain.Appointment]{}, werr
		}
		s.cache.seed(mock.Appointments())
		src = SourceDemo
	}

	s.cache.update(func(a domain.Appointment) domain.Appointment {
		if a.ID == id {
			return a.Cancelled()
		}
		return a
	})

	a, ok := s.cache.find(func(a domain.Appointment) bool { return a.ID == id })
	if !ok {
		if src == SourceDemo || resp.ID != id {
			return Result[*domain.Appointment]{Source: src}, nil
		}
		a = resp
	}
	logger.InfoContext(ctx, "Appointment cancelled", "appointment_id", id, "source", src.String())
	return Result[*domain.Appointment]{Data: &a, Source: src}, nil
}

func (s *appointmentService) localAppointment(req domain.BookingRequest) domain.Appointment {
	var next int64 = 1
	items, _ := s.cache.snapshot()
	if len(items) == 0 {
		items = mock.Appointments()
	}
	for _, a := range items {
		if a.ID >= next {
			next = a.ID + 1
		}
	}

	svc, _ := mock.ServiceByID(req.ServiceID)
	spec, _ := mock.SpecialistByID(req.SpecialistID)
	spec.Photo = ""
	return domain.Appointment{
		ID:         next,
		Date:       req.Date,
		Time:       req.Time,
		Status:     domain.AppointmentPending,
		Service:    svc,
		Specialist: spec,
		Client:     mock.DemoUser().Contact(),
		Notes:      req.Notes,
	}
}
