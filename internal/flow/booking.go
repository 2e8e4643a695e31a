package flow

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/nav"
	"github.com/diagnosis/salon-bookings/internal/service"
	"github.com/diagnosis/salon-bookings/pkg/logger"
)

type Stage int

const (
	StageEmpty Stage = iota
	StageService
	StageSpecialist
	StageDate
	StageTime
)

func (s Stage) String() string {
	return [...]string{"empty", "service", "specialist", "date", "time"}[s]
}

type AppointmentCreator interface {
	Create(ctx context.Context, req domain.BookingRequest) (service.Result[domain.Appointment], error)
}

type SlotLoader interface {
	Availability(ctx context.Context, specialistID int64, date string) (service.Result[[]string], error)
}

// Booking is the appointment booking screen state. Selections survive a
// failed submit.
type Booking struct {
	creator AppointmentCreator
	slots   SlotLoader
	notify  Notifier
	router  Router

	Service    *domain.Service
	Specialist *domain.Specialist
	Date       string
	Time       string
	Notes      string
	// Slots are the free times for the chosen specialist and date; nil
	// until both are chosen.
	Slots []string
}

func NewBooking(creator AppointmentCreator, slots SlotLoader, notify Notifier, router Router) *Booking {
	return &Booking{creator: creator, slots: slots, notify: notifierOrNoop(notify), router: router}
}

// Stage is the furthest contiguous step completed.
func (b *Booking) Stage() Stage {
	switch {
	case b.Service == nil:
		return StageEmpty
	case b.Specialist == nil:
		return StageService
	case b.Date == "":
		return StageSpecialist
	case b.Time == "":
		return StageDate
	default:
		return StageTime
	}
}

func (b *Booking) SelectService(s domain.Service) {
	b.Service = &s
}

func (b *Booking) SelectSpecialist(ctx context.Context, s domain.Specialist) error {
	b.Specialist = &s
	return b.refreshSlots(ctx)
}

func (b *Booking) SelectDate(ctx context.Context, date string) error {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	b.Date = date
	return b.refreshSlots(ctx)
}

// SelectTime accepts t only when it is one of the loaded slots.
func (b *Booking) SelectTime(t string) error {
	if b.Slots != nil && !slices.Contains(b.Slots, t) {
		return fmt.Errorf("%w: %s", ErrUnavailableSlot, t)
	}
	b.Time = t
	return nil
}

func (b *Booking) SetNotes(notes string) {
	b.Notes = notes
}

func (b *Booking) refreshSlots(ctx context.Context) error {
	if b.Specialist == nil || b.Date == "" || b.slots == nil {
		return nil
	}
	res, err := b.slots.Availability(ctx, b.Specialist.ID, b.Date)
	if err != nil {
		b.Slots = nil
		return fmt.Errorf("failed to load availability: %w", err)
	}
	b.Slots = res.Data
	if b.Slots == nil {
		b.Slots = []string{}
	}
	if b.Time != "" && !slices.Contains(b.Slots, b.Time) {
		b.Time = ""
	}
	return nil
}

// Submit books the selection and moves on to Payment. Nothing is sent
// unless service, specialist, date and time are all chosen.
func (b *Booking) Submit(ctx context.Context) (*domain.Appointment, error) {
	if b.Service == nil || b.Specialist == nil || b.Date == "" || b.Time == "" {
		b.notify.Error(MsgSelectRequired)
		return nil, ErrIncompleteSelection
	}

	res, err := b.creator.Create(ctx, domain.BookingRequest{
		Date:         b.Date,
		Time:         b.Time,
		ServiceID:    b.Service.ID,
		SpecialistID: b.Specialist.ID,
		Notes:        b.Notes,
	})
	if err != nil {
		logger.ErrorContext(ctx, "Failed to book appointment", "error", err)
		b.notify.Error(MsgBookingFailed)
		return nil, err
	}

	b.notify.Success(MsgBooked)
	if b.router != nil {
		if err := b.router.Navigate(nav.Payment, nav.Params{}); err != nil {
			return &res.Data, err
		}
	}
	return &res.Data, nil
}
