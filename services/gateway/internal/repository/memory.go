package repository

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
)

type memUser struct {
	user domain.User
	hash string
}

type memPayment struct {
	userID  int64
	payment domain.Payment
}

// Memory keeps everything in process. The catalog, chats and reviews are
// seeded from the fixture set; IDs continue after the seeded ones.
type Memory struct {
	mu sync.RWMutex

	users         map[int64]memUser
	services      []domain.Service
	specialists   []domain.Specialist
	chats         []domain.Chat
	appointments  []domain.Appointment
	methods       map[int64][]domain.PaymentMethod
	payments      []memPayment
	reviews       []domain.Review
	notifications map[int64][]domain.Notification
	tokens        map[string]int64

	lastUser, lastAppointment, lastMethod, lastPayment, lastReview, lastNotification int64
}

func NewMemory() *Memory {
	m := &Memory{
		users:         map[int64]memUser{},
		services:      mock.Services(),
		specialists:   mock.Specialists(),
		chats:         mock.Chats(),
		methods:       map[int64][]domain.PaymentMethod{},
		reviews:       mock.Reviews(),
		notifications: map[int64][]domain.Notification{},
		tokens:        map[string]int64{},
	}
	for _, r := range m.reviews {
		m.lastReview = max(m.lastReview, r.ID)
		m.lastAppointment = max(m.lastAppointment, r.AppointmentID)
		m.lastUser = max(m.lastUser, r.Client.ID)
	}
	return m
}

func (m *Memory) Close() {}

func (m *Memory) CreateUser(_ context.Context, u domain.User, passwordHash string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.users {
		if strings.EqualFold(existing.user.Email, u.Email) {
			return domain.User{}, ErrEmailExists
		}
	}
	m.lastUser++
	u.ID = m.lastUser
	m.users[u.ID] = memUser{user: u, hash: passwordHash}
	return u, nil
}

func (m *Memory) FindUserByEmail(_ context.Context, email string) (domain.User, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if strings.EqualFold(u.user.Email, email) {
			return u.user, u.hash, nil
		}
	}
	return domain.User{}, "", ErrNotFound
}

func (m *Memory) FindUserByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return domain.User{}, ErrNotFound
	}
	return u.user, nil
}

func (m *Memory) ListServices(context.Context) ([]domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.services), nil
}

func (m *Memory) GetService(_ context.Context, id int64) (domain.Service, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.services, func(s domain.Service) bool { return s.ID == id })
	if i < 0 {
		return domain.Service{}, ErrNotFound
	}
	return m.services[i], nil
}

func (m *Memory) ListSpecialists(context.Context) ([]domain.Specialist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.specialists), nil
}

func (m *Memory) GetSpecialist(_ context.Context, id int64) (domain.Specialist, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.specialists, func(s domain.Specialist) bool { return s.ID == id })
	if i < 0 {
		return domain.Specialist{}, ErrNotFound
	}
	return m.specialists[i], nil
}

func (m *Memory) ListChats(context.Context, int64) ([]domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.chats), nil
}

func open(a domain.Appointment) bool { return a.CanCancel() }

func (m *Memory) CreateAppointment(_ context.Context, a domain.Appointment) (domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, b := range m.appointments {
		if open(b) && b.Specialist.ID == a.Specialist.ID && b.Date == a.Date && b.Time == a.Time {
			return domain.Appointment{}, ErrSlotTaken
		}
	}
	m.lastAppointment++
	a.ID = m.lastAppointment
	m.appointments = append(m.appointments, a)
	return a, nil
}

func (m *Memory) ListAppointments(_ context.Context, clientID int64) ([]domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Appointment{}
	for _, a := range m.appointments {
		if a.Client.ID == clientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *Memory) appointmentIndex(clientID, id int64) int {
	return slices.IndexFunc(m.appointments, func(a domain.Appointment) bool {
		return a.ID == id && a.Client.ID == clientID
	})
}

func (m *Memory) GetAppointment(_ context.Context, clientID, id int64) (domain.Appointment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := m.appointmentIndex(clientID, id)
	if i < 0 {
		return domain.Appointment{}, ErrNotFound
	}
	return m.appointments[i], nil
}

func (m *Memory) SetAppointmentStatus(_ context.Context, clientID, id int64, status domain.AppointmentStatus) (domain.Appointment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := m.appointmentIndex(clientID, id)
	if i < 0 {
		return domain.Appointment{}, ErrNotFound
	}
	m.appointments[i].Status = status
	return m.appointments[i], nil
}

func (m *Memory) BookedTimes(_ context.Context, specialistID int64, date string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for _, a := range m.appointments {
		if open(a) && a.Specialist.ID == specialistID && a.Date == date {
			out = append(out, a.Time)
		}
	}
	return out, nil
}

func (m *Memory) ListPaymentMethods(_ context.Context, userID int64) ([]domain.PaymentMethod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.methods[userID])
	if out == nil {
		out = []domain.PaymentMethod{}
	}
	return out, nil
}

func (m *Memory) AddPaymentMethod(_ context.Context, userID int64, pm domain.PaymentMethod) (domain.PaymentMethod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastMethod++
	pm.ID = m.lastMethod
	list := append(m.methods[userID], pm)
	if pm.IsDefault {
		list = domain.SetDefault(list, pm.ID)
	}
	m.methods[userID] = list
	return pm, nil
}

func (m *Memory) DeletePaymentMethod(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.methods[userID]
	i := slices.IndexFunc(list, func(pm domain.PaymentMethod) bool { return pm.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	m.methods[userID] = slices.Delete(slices.Clone(list), i, i+1)
	return nil
}

func (m *Memory) SetDefaultPaymentMethod(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.methods[userID]
	if !slices.ContainsFunc(list, func(pm domain.PaymentMethod) bool { return pm.ID == id }) {
		return ErrNotFound
	}
	m.methods[userID] = domain.SetDefault(list, id)
	return nil
}

func (m *Memory) CreatePayment(_ context.Context, userID int64, p domain.Payment) (domain.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastPayment++
	p.ID = m.lastPayment
	m.payments = append(m.payments, memPayment{userID: userID, payment: p})
	return p, nil
}

func (m *Memory) ListReviews(context.Context) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.reviews), nil
}

func (m *Memory) ListReviewsForSpecialist(_ context.Context, specialistID int64) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []domain.Review{}
	for _, r := range m.reviews {
		if r.Specialist.ID == specialistID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *Memory) ReviewForAppointment(_ context.Context, appointmentID int64) (domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i := slices.IndexFunc(m.reviews, func(r domain.Review) bool { return r.AppointmentID == appointmentID })
	if i < 0 {
		return domain.Review{}, ErrNotFound
	}
	return m.reviews[i], nil
}

func (m *Memory) CreateReview(_ context.Context, r domain.Review) (domain.Review, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastReview++
	r.ID = m.lastReview
	m.reviews = append(m.reviews, r)
	return r, nil
}

func (m *Memory) ListNotifications(_ context.Context, userID int64) ([]domain.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := slices.Clone(m.notifications[userID])
	if out == nil {
		out = []domain.Notification{}
	}
	return out, nil
}

// CreateNotification stores newest first.
func (m *Memory) CreateNotification(_ context.Context, userID int64, n domain.Notification) (domain.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastNotification++
	n.ID = m.lastNotification
	m.notifications[userID] = append([]domain.Notification{n}, m.notifications[userID]...)
	return n, nil
}

func (m *Memory) MarkNotificationRead(_ context.Context, userID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.notifications[userID]
	i := slices.IndexFunc(list, func(n domain.Notification) bool { return n.ID == id })
	if i < 0 {
		return ErrNotFound
	}
	list[i].Read = true
	return nil
}

func (m *Memory) MarkAllNotificationsRead(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.notifications[userID] {
		m.notifications[userID][i].Read = true
	}
	return nil
}

// SaveDeviceToken moves a token to userID if another account held it.
func (m *Memory) SaveDeviceToken(_ context.Context, userID int64, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[token] = userID
	return nil
}

func (m *Memory) DeviceTokens(_ context.Context, userID int64) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []string
	for tok, id := range m.tokens {
		if id == userID {
			out = append(out, tok)
		}
	}
	slices.Sort(out)
	return out, nil
}

func (m *Memory) DeleteDeviceTokens(_ context.Context, tokens ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, tok := range tokens {
		delete(m.tokens, tok)
	}
	return nil
}
