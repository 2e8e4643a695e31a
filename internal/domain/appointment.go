package domain

import (
	"fmt"
	"time"
)

type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "pending"
	AppointmentConfirmed AppointmentStatus = "confirmed"
	AppointmentCancelled AppointmentStatus = "cancelled"
	AppointmentCompleted AppointmentStatus = "completed"
)

func ParseAppointmentStatus(s string) (AppointmentStatus, bool) {
	switch AppointmentStatus(s) {
	case AppointmentPending, AppointmentConfirmed, AppointmentCancelled, AppointmentCompleted:
		return AppointmentStatus(s), true
	default:
		return "", false
	}
}

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type Appointment struct {
	ID         int64             `json:"id"`
	Date       string            `json:"date"`
	Time       string            `json:"time"`
	Status     AppointmentStatus `json:"status"`
	Service    Service           `json:"service"`
	Specialist Specialist        `json:"specialist"`
	Client     Contact           `json:"client"`
	Notes      string            `json:"notes,omitempty"`
}

// CanCancel reports whether the appointment is still open.
func (a *Appointment) CanCancel() bool {
	return a.Status == AppointmentPending || a.Status == AppointmentConfirmed
}

// Cancelled returns a copy whose only difference is the status.
func (a Appointment) Cancelled() Appointment {
	a.Status = AppointmentCancelled
	return a
}

// BookingRequest is the payload of POST /appointments.
type BookingRequest struct {
	Date         string `json:"date"`
	Time         string `json:"time"`
	ServiceID    int64  `json:"service_id"`
	SpecialistID int64  `json:"specialist_id"`
	Notes        string `json:"notes,omitempty"`
}

// Validate checks presence and format of the required fields.
func (r BookingRequest) Validate() error {
	if r.ServiceID == 0 || r.SpecialistID == 0 || r.Date == "" || r.Time == "" {
		return fmt.Errorf("service, specialist, date and time are required")
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("date must be YYYY-MM-DD")
	}
	if _, err := time.Parse(TimeLayout, r.Time); err != nil {
		return fmt.Errorf("time must be HH:MM")
	}
	return nil
}
