// Package mock holds the fixed demo dataset served when the client runs in
// demo mode and used to seed the development gateway. Every accessor
// returns a fresh copy.
package mock

import "github.com/diagnosis/salon-bookings/internal/domain"

const DemoToken = "demo-token"

var (
	jane = domain.Specialist{ID: 1, Surname: "Doe", GivenName: "Jane", Email: "jane.doe@example.com", Phone: "0123456789", Photo: "https://example.com/jane.jpg"}
	sara = domain.Specialist{ID: 2, Surname: "Smith", GivenName: "Sarah", Email: "sarah.smith@example.com", Phone: "0987654321", Photo: "https://example.com/sarah.jpg"}
	emma = domain.Specialist{ID: 3, Surname: "Johnson", GivenName: "Emma", Email: "emma.johnson@example.com", Phone: "0123456789", Photo: "https://example.com/emma.jpg"}

	john = domain.User{ID: 1, Surname: "Smith", GivenName: "John", Email: "john.smith@example.com", Phone: "0987654321", Role: domain.RoleClient}
)

func DemoUser() domain.User { return john }

func Services() []domain.Service {
	return []domain.Service{
		{ID: 1, Name: "Haircut", Price: 30, Description: "Classic haircut", DurationMinutes: 30},
		{ID: 2, Name: "Colouring", Price: 60, Description: "Full colouring", DurationMinutes: 120},
		{ID: 3, Name: "Highlights", Price: 80, Description: "Highlights application", DurationMinutes: 90},
		{ID: 4, Name: "Blow-dry", Price: 25, Description: "Professional blow-dry", DurationMinutes: 45},
		{ID: 5, Name: "Shampoo", Price: 15, Description: "Shampoo and care", DurationMinutes: 20},
		{ID: 6, Name: "Manicure", Price: 35, Description: "Hand care and polish", DurationMinutes: 60},
	}
}

func Specialists() []domain.Specialist {
	return []domain.Specialist{jane, sara, emma}
}

func Availability() []string {
	return []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}
}

func Appointments() []domain.Appointment {
	svc := Services()
	return []domain.Appointment{
		{
			ID:         1,
			Date:       "2024-03-20",
			Time:       "14:30",
			Status:     domain.AppointmentConfirmed,
			Service:    svc[0],
			Specialist: stripPhoto(jane),
			Client:     john.Contact(),
		},
		{
			ID:         2,
			Date:       "2024-03-25",
			Time:       "10:00",
			Status:     domain.AppointmentPending,
			Service:    svc[1],
			Specialist: stripPhoto(jane),
			Client:     john.Contact(),
		},
	}
}

func PaymentMethods() []domain.PaymentMethod {
	return []domain.PaymentMethod{
		{ID: 1, Type: domain.PaymentMethodCard, Last4: "4242", Expiry: "12/24", IsDefault: true},
		{ID: 2, Type: domain.PaymentMethodCard, Last4: "5678", Expiry: "09/25", IsDefault: false},
	}
}

func Reviews() []domain.Review {
	return []domain.Review{
		{ID: 1, Rating: 5, Comment: "Excellent service, very professional!", Date: "2024-03-15", Client: john.Person(), Specialist: jane.Person(), AppointmentID: 1},
		{ID: 2, Rating: 4, Comment: "Very good service, I recommend it.", Date: "2024-03-10", Client: domain.Person{ID: 2, Surname: "Johnson", GivenName: "Mary"}, Specialist: jane.Person(), AppointmentID: 2},
		{ID: 3, Rating: 5, Comment: "Perfect! I will come back.", Date: "2024-03-05", Client: domain.Person{ID: 3, Surname: "Brown", GivenName: "Sarah"}, Specialist: sara.Person(), AppointmentID: 3},
	}
}

func Notifications() []domain.Notification {
	return []domain.Notification{
		{
			ID: 1, Title: "Appointment confirmed", Message: "Your appointment on March 20 at 14:30 has been confirmed.",
			Date: "2024-03-15T10:00:00Z", Read: false, Type: domain.NotificationAppointment,
			Data: &domain.NotificationData{AppointmentID: domain.Int64(1)},
		},
		{
			ID: 2, Title: "Payment received", Message: "Your payment of 30€ was received.",
			Date: "2024-03-15T09:30:00Z", Read: true, Type: domain.NotificationPayment,
			Data: &domain.NotificationData{PaymentID: domain.Int64(1)},
		},
		{
			ID: 3, Title: "New review", Message: "You received a new 5-star review!",
			Date: "2024-03-14T16:45:00Z", Read: false, Type: domain.NotificationReview,
			Data: &domain.NotificationData{ReviewID: domain.Int64(1)},
		},
	}
}

func Chats() []domain.Chat {
	return []domain.Chat{
		{ID: 1, Name: "Doe John", LastMessage: "Hello, I confirm your appointment tomorrow at 14:00.", Time: "10:30", Unread: 2},
		{ID: 2, Name: "Lucy", LastMessage: "Thanks for your visit today!", Time: "Yesterday", Unread: 0},
		{ID: 3, Name: "Laila", LastMessage: "We have a new promotion on colouring.", Time: "Mon", Unread: 1},
	}
}

// ServiceByID looks up a catalog entry; ok is false when absent.
func ServiceByID(id int64) (domain.Service, bool) {
	for _, s := range Services() {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Service{}, false
}

func SpecialistByID(id int64) (domain.Specialist, bool) {
	for _, s := range Specialists() {
		if s.ID == id {
			return s, true
		}
	}
	return domain.Specialist{}, false
}

func stripPhoto(s domain.Specialist) domain.Specialist {
	s.Photo = ""
	return s
}
