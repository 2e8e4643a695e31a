// Package repository persists gateway state. Memory serves local
// development and tests; Postgres is the pgx-backed store.
package repository

import (
	"context"
	"errors"

	"github.com/diagnosis/salon-bookings/internal/domain"
)

var (
	ErrNotFound    = errors.New("not found")
	ErrEmailExists = errors.New("email already registered")
	ErrSlotTaken   = errors.New("time slot already booked")
)

type UserRepository interface {
	CreateUser(ctx context.Context, u domain.User, passwordHash string) (domain.User, error)
	// FindUserByEmail returns ErrNotFound when nobody uses the address.
	FindUserByEmail(ctx context.Context, email string) (domain.User, string, error)
	FindUserByID(ctx context.Context, id int64) (domain.User, error)
}

type CatalogRepository interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetService(ctx context.Context, id int64) (domain.Service, error)
	ListSpecialists(ctx context.Context) ([]domain.Specialist, error)
	GetSpecialist(ctx context.Context, id int64) (domain.Specialist, error)
	ListChats(ctx context.Context, userID int64) ([]domain.Chat, error)
}

type AppointmentRepository interface {
	// CreateAppointment assigns the ID. It returns ErrSlotTaken when the
	// specialist already has an open appointment at that date and time.
	CreateAppointment(ctx context.Context, a domain.Appointment) (domain.Appointment, error)
	ListAppointments(ctx context.Context, clientID int64) ([]domain.Appointment, error)
	GetAppointment(ctx context.Context, clientID, id int64) (domain.Appointment, error)
	SetAppointmentStatus(ctx context.Context, clientID, id int64, status domain.AppointmentStatus) (domain.Appointment, error)
	// BookedTimes lists the times of open appointments for one specialist
	// and date.
	BookedTimes(ctx context.Context, specialistID int64, date string) ([]string, error)
}

type PaymentRepository interface {
	ListPaymentMethods(ctx context.Context, userID int64) ([]domain.PaymentMethod, error)
	// AddPaymentMethod assigns the ID. A default method clears the flag on
	// the user's other methods.
	AddPaymentMethod(ctx context.Context, userID int64, m domain.PaymentMethod) (domain.PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, userID, id int64) error
	SetDefaultPaymentMethod(ctx context.Context, userID, id int64) error
	CreatePayment(ctx context.Context, userID int64, p domain.Payment) (domain.Payment, error)
}

type ReviewRepository interface {
	ListReviews(ctx context.Context) ([]domain.Review, error)
	ListReviewsForSpecialist(ctx context.Context, specialistID int64) ([]domain.Review, error)
	ReviewForAppointment(ctx context.Context, appointmentID int64) (domain.Review, error)
	CreateReview(ctx context.Context, r domain.Review) (domain.Review, error)
}

type NotificationRepository interface {
	ListNotifications(ctx context.Context, userID int64) ([]domain.Notification, error)
	CreateNotification(ctx context.Context, userID int64, n domain.Notification) (domain.Notification, error)
	MarkNotificationRead(ctx context.Context, userID, id int64) error
	MarkAllNotificationsRead(ctx context.Context, userID int64) error

	SaveDeviceToken(ctx context.Context, userID int64, token string) error
	DeviceTokens(ctx context.Context, userID int64) ([]string, error)
	DeleteDeviceTokens(ctx context.Context, tokens ...string) error
}

type Store interface {
	UserRepository
	CatalogRepository
	AppointmentRepository
	PaymentRepository
	ReviewRepository
	NotificationRepository
	Close()
}
