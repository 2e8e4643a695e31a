package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/push"
	"github.com/diagnosis/salon-bookings/pkg/config"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/mailer"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/payments"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 6, 2, 8, 30, 0, 0, time.UTC)

const tomorrow = "2025-06-03"

type recordingPusher struct {
	mu     sync.Mutex
	tokens []string
	msgs   []push.RemoteMessage
	stale  []string
}

func (p *recordingPusher) Push(_ context.Context, tokens []string, msg push.RemoteMessage) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tokens = append(p.tokens, tokens...)
	p.msgs = append(p.msgs, msg)
	return p.stale, nil
}

type declining struct{}

func (declining) Charge(context.Context, payments.Charge) (payments.Result, error) {
	return payments.Result{IntentID: "pi_declined", Status: domain.PaymentFailed}, nil
}

type env struct {
	store  *repository.Memory
	bus    *events.MemoryEventBus
	mail   *mailer.Dev
	pusher *recordingPusher

	auth         AuthService
	catalog      CatalogService
	appointments AppointmentService
	payments     PaymentService
	reviews      ReviewService
	notify       NotificationService
}

func newEnv(t *testing.T, processor payments.Processor) *env {
	t.Helper()
	e := &env{
		store:  repository.NewMemory(),
		bus:    events.NewMemoryEventBus(),
		mail:   mailer.NewDev(nil),
		pusher: &recordingPusher{},
	}
	t.Cleanup(func() { _ = e.bus.Close() })

	clock := Clock(func() time.Time { return fixedNow })
	mail := mailer.New(e.mail, "Salon")
	e.auth = NewAuthService(e.store, mail, config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTL: time.Hour})
	e.catalog = NewCatalogService(e.store, e.store)
	e.notify = NewNotificationService(e.store, e.pusher, e.bus, clock)
	e.appointments = NewAppointmentService(e.store, e.notify, mail, e.bus, clock)
	e.payments = NewPaymentService(e.store, processor, e.notify, e.bus, clock)
	e.reviews = NewReviewService(e.store, e.bus, clock)
	return e
}

func (e *env) signUp(t *testing.T, email string) domain.User {
	t.Helper()
	resp, err := e.auth.SignUp(context.Background(), domain.SignUpInput{
		Surname:   "Martin",
		GivenName: "Alice",
		Email:     email,
		Phone:     "06 12 34 56 78",
		Password:  "secret1",
	})
	require.NoError(t, err)
	return resp.User
}

func (e *env) book(t *testing.T, clientID int64, at string) *domain.Appointment {
	t.Helper()
	a, err := e.appointments.Create(context.Background(), clientID, domain.BookingRequest{
		Date: tomorrow, Time: at, ServiceID: 1, SpecialistID: 1,
	})
	require.NoError(t, err)
	return a
}

func (e *env) subjects(t *testing.T, subjects ...string) *[]string {
	t.Helper()
	var mu sync.Mutex
	got := &[]string{}
	for _, s := range subjects {
		require.NoError(t, e.bus.Subscribe(s, func(m *events.Message) {
			mu.Lock()
			*got = append(*got, m.Subject)
			mu.Unlock()
		}))
	}
	return got
}

func TestSignUpAndLogin(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()

	u := e.signUp(t, " Alice@Example.com ")
	assert.Equal(t, "alice@example.com", u.Email)
	assert.Equal(t, "0612345678", u.Phone)
	assert.Equal(t, domain.RoleClient, u.Role)
	require.Len(t, e.mail.Sent(), 1)
	assert.Equal(t, "alice@example.com", e.mail.Sent()[0].ToEmail)

	resp, err := e.auth.Login(ctx, domain.LoginRequest{Email: "ALICE@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, u.ID, resp.User.ID)
	assert.NotEmpty(t, resp.Token)

	_, err = e.auth.Login(ctx, domain.LoginRequest{Email: "alice@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = e.auth.Login(ctx, domain.LoginRequest{Email: "nobody@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrBadCredentials)
	_, err = e.auth.Login(ctx, domain.LoginRequest{Email: "", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.auth.SignUp(ctx, domain.SignUpInput{
		Surname: "Other", GivenName: "A", Email: "alice@example.com", Phone: "0612345678", Password: "secret1",
	})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestSignUpValidation(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	valid := domain.SignUpInput{Surname: "S", GivenName: "G", Email: "g@example.com", Phone: "0612345678", Password: "secret1"}

	cases := map[string]struct {
		mutate func(*domain.SignUpInput)
		msg    string
	}{
		"everything missing": {func(in *domain.SignUpInput) { *in = domain.SignUpInput{} }, "surname is required"},
		"bad email":          {func(in *domain.SignUpInput) { in.Email = "nope" }, "email is not valid"},
		"short phone":        {func(in *domain.SignUpInput) { in.Phone = "123" }, "phone is not valid"},
		"short password":     {func(in *domain.SignUpInput) { in.Password = "12345" }, "at least 6"},
		"unknown role":       {func(in *domain.SignUpInput) { in.Role = "admin" }, "role must be"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			in := valid
			tc.mutate(&in)
			_, err := e.auth.SignUp(ctx, in)
			require.ErrorIs(t, err, ErrInvalidInput)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}

func TestAvailabilitySkipsBookedSlots(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")

	free, err := e.catalog.Availability(ctx, 1, tomorrow)
	require.NoError(t, err)
	assert.Equal(t, OpeningSlots, free)

	a := e.book(t, u.ID, "10:00")
	free, err = e.catalog.Availability(ctx, 1, tomorrow)
	require.NoError(t, err)
	assert.NotContains(t, free, "10:00")
	assert.Len(t, free, len(OpeningSlots)-1)

	_, err = e.appointments.Cancel(ctx, u.ID, a.ID)
	require.NoError(t, err)
	free, err = e.catalog.Availability(ctx, 1, tomorrow)
	require.NoError(t, err)
	assert.Contains(t, free, "10:00")

	_, err = e.catalog.Availability(ctx, 1, "03/06/2025")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.catalog.Availability(ctx, 99, tomorrow)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListChatsFiltersByName(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	chats, err := e.catalog.ListChats(context.Background(), 1, " la ")
	require.NoError(t, err)
	require.Len(t, chats, 1)
	assert.Equal(t, "Laila", chats[0].Name)

	all, err := e.catalog.ListChats(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestCreateAppointment(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")
	got := e.subjects(t, events.AppointmentCreated, events.NotificationCreated)

	a := e.book(t, u.ID, "14:00")
	assert.Equal(t, domain.AppointmentPending, a.Status)
	assert.Equal(t, "Haircut", a.Service.Name)
	assert.Equal(t, u.ID, a.Client.ID)
	assert.Equal(t, []string{events.AppointmentCreated, events.NotificationCreated}, *got)

	notes, err := e.notify.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NotificationAppointment, notes[0].Type)
	assert.Equal(t, a.ID, *notes[0].Data.AppointmentID)
	// welcome plus confirmation
	assert.Len(t, e.mail.Sent(), 2)

	_, err = e.appointments.Create(ctx, u.ID, domain.BookingRequest{Date: tomorrow, Time: "14:00", ServiceID: 2, SpecialistID: 1})
	assert.ErrorIs(t, err, ErrSlotTaken)

	bad := map[string]domain.BookingRequest{
		"past date":          {Date: "2025-06-01", Time: "10:00", ServiceID: 1, SpecialistID: 1},
		"outside opening":    {Date: tomorrow, Time: "12:00", ServiceID: 1, SpecialistID: 1},
		"unknown service":    {Date: tomorrow, Time: "10:00", ServiceID: 42, SpecialistID: 1},
		"unknown specialist": {Date: tomorrow, Time: "10:00", ServiceID: 1, SpecialistID: 42},
		"missing fields":     {Date: tomorrow},
	}
	for name, req := range bad {
		t.Run(name, func(t *testing.T) {
			_, err := e.appointments.Create(ctx, u.ID, req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestCancelAppointment(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")
	other := e.signUp(t, "bob@example.com")
	a := e.book(t, u.ID, "09:00")
	got := e.subjects(t, events.AppointmentCancelled)

	_, err := e.appointments.Cancel(ctx, other.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	cancelled, err := e.appointments.Cancel(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentCancelled, cancelled.Status)
	assert.Equal(t, []string{events.AppointmentCancelled}, *got)

	_, err = e.appointments.Cancel(ctx, u.ID, a.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)

	list, err := e.appointments.List(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, domain.AppointmentCancelled, list[0].Status)
}

func TestPaymentMethods(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")

	_, err := e.payments.AddMethod(ctx, u.ID, domain.AddCardRequest{CardNumber: "4242"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	first, err := e.payments.AddMethod(ctx, u.ID, domain.AddCardRequest{CardNumber: "4242 4242 4242 4242", Expiry: "12/27", CVV: "123"})
	require.NoError(t, err)
	assert.True(t, first.IsDefault)
	assert.Equal(t, "4242", first.Last4)

	second, err := e.payments.AddMethod(ctx, u.ID, domain.AddCardRequest{CardNumber: "5555 5555 5555 4444", Expiry: "01/28", CVV: "321"})
	require.NoError(t, err)
	assert.False(t, second.IsDefault)

	require.NoError(t, e.payments.SetDefault(ctx, u.ID, second.ID))
	methods, err := e.payments.ListMethods(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, methods, 2)
	assert.False(t, methods[0].IsDefault)
	assert.True(t, methods[1].IsDefault)

	require.NoError(t, e.payments.DeleteMethod(ctx, u.ID, first.ID))
	assert.ErrorIs(t, e.payments.DeleteMethod(ctx, u.ID, first.ID), ErrNotFound)
	assert.ErrorIs(t, e.payments.SetDefault(ctx, u.ID, first.ID), ErrNotFound)
}

func TestProcessCardPaymentConfirmsAppointment(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")
	a := e.book(t, u.ID, "11:00")
	got := e.subjects(t, events.PaymentProcessed, events.PaymentFailed)

	req := domain.PaymentRequest{AppointmentID: a.ID, Amount: 30, Mode: domain.PaymentModeCard}
	_, err := e.payments.Process(ctx, u.ID, req, "key-1")
	assert.ErrorIs(t, err, ErrNoPaymentMethod)

	_, err = e.payments.AddMethod(ctx, u.ID, domain.AddCardRequest{CardNumber: "4242424242424242", Expiry: "12/27", CVV: "123"})
	require.NoError(t, err)

	p, err := e.payments.Process(ctx, u.ID, req, "key-1")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, p.Status)
	assert.Equal(t, "2025-06-02", p.Date)
	assert.Equal(t, []string{events.PaymentProcessed}, *got)

	confirmed, err := e.appointments.Get(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentConfirmed, confirmed.Status)

	notes, err := e.notify.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationPayment, notes[0].Type)
	assert.Equal(t, p.ID, *notes[0].Data.PaymentID)

	req.CardID = 99
	_, err = e.payments.Process(ctx, u.ID, req, "key-2")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessCashAndRejections(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")
	a := e.book(t, u.ID, "15:00")

	p, err := e.payments.Process(ctx, u.ID, domain.PaymentRequest{AppointmentID: a.ID, Amount: 30, Mode: domain.PaymentModeCash}, "")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, p.Status)
	still, err := e.appointments.Get(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentPending, still.Status)

	_, err = e.payments.Process(ctx, u.ID, domain.PaymentRequest{AppointmentID: a.ID, Amount: 30, Mode: "cheque"}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.payments.Process(ctx, u.ID, domain.PaymentRequest{AppointmentID: a.ID, Amount: 0, Mode: domain.PaymentModeCash}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.payments.Process(ctx, u.ID, domain.PaymentRequest{AppointmentID: 999, Amount: 30, Mode: domain.PaymentModeCash}, "")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = e.appointments.Cancel(ctx, u.ID, a.ID)
	require.NoError(t, err)
	_, err = e.payments.Process(ctx, u.ID, domain.PaymentRequest{AppointmentID: a.ID, Amount: 30, Mode: domain.PaymentModeCash}, "")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestProcessDeclinedCard(t *testing.T) {
	e := newEnv(t, declining{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")
	a := e.book(t, u.ID, "16:00")
	_, err := e.payments.AddMethod(ctx, u.ID, domain.AddCardRequest{CardNumber: "4000000000000002", Expiry: "12/27", CVV: "123"})
	require.NoError(t, err)

	var failed events.PaymentProcessedEvent
	require.NoError(t, e.bus.Subscribe(events.PaymentFailed, func(m *events.Message) {
		require.NoError(t, m.Decode(&failed))
	}))

	p, err := e.payments.Process(ctx, u.ID, domain.PaymentRequest{AppointmentID: a.ID, Amount: 30, Mode: domain.PaymentModeCard}, "k")
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentFailed, p.Status)
	assert.Equal(t, "pi_declined", failed.IntentID)

	still, err := e.appointments.Get(ctx, u.ID, a.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.AppointmentPending, still.Status)
}

func TestCreateReview(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")
	other := e.signUp(t, "bob@example.com")
	a := e.book(t, u.ID, "17:00")

	before, err := e.reviews.ListForSpecialist(ctx, 1)
	require.NoError(t, err)

	_, err = e.reviews.Create(ctx, u.ID, domain.ReviewRequest{Rating: 6, AppointmentID: a.ID})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = e.reviews.Create(ctx, other.ID, domain.ReviewRequest{Rating: 4, AppointmentID: a.ID})
	assert.ErrorIs(t, err, ErrNotFound)

	r, err := e.reviews.Create(ctx, u.ID, domain.ReviewRequest{Rating: 4, Comment: "  Lovely  ", AppointmentID: a.ID})
	require.NoError(t, err)
	assert.Equal(t, "Lovely", r.Comment)
	assert.Equal(t, "2025-06-02", r.Date)
	assert.Equal(t, u.ID, r.Client.ID)
	assert.Equal(t, int64(1), r.Specialist.ID)

	_, err = e.reviews.Create(ctx, u.ID, domain.ReviewRequest{Rating: 5, AppointmentID: a.ID})
	assert.ErrorIs(t, err, ErrAlreadyReviewed)

	after, err := e.reviews.ListForSpecialist(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, after, len(before)+1)

	_, err = e.reviews.ListForSpecialist(ctx, 99)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNotifyPushesAndDropsStaleTokens(t *testing.T) {
	e := newEnv(t, payments.Offline{})
	ctx := context.Background()
	u := e.signUp(t, "alice@example.com")

	assert.ErrorIs(t, e.notify.RegisterToken(ctx, u.ID, "  "), ErrInvalidInput)
	require.NoError(t, e.notify.RegisterToken(ctx, u.ID, "dev-a"))
	require.NoError(t, e.notify.RegisterToken(ctx, u.ID, "dev-b"))
	e.pusher.stale = []string{"dev-b"}

	n, err := e.notify.Notify(ctx, u.ID, NotificationInput{Message: "Hello"})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultNotificationTitle, n.Title)
	assert.Equal(t, domain.NotificationSystem, n.Type)
	assert.Equal(t, "2025-06-02T08:30:00Z", n.Date)
	assert.Equal(t, []string{"dev-a", "dev-b"}, e.pusher.tokens)

	tokens, err := e.store.DeviceTokens(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"dev-a"}, tokens)

	_, err = e.notify.Notify(ctx, u.ID, NotificationInput{Title: "Empty"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	require.NoError(t, e.notify.MarkRead(ctx, u.ID, n.ID))
	assert.ErrorIs(t, e.notify.MarkRead(ctx, u.ID, 999), ErrNotFound)
	_, err = e.notify.Notify(ctx, u.ID, NotificationInput{Message: "Again"})
	require.NoError(t, err)
	require.NoError(t, e.notify.MarkAllRead(ctx, u.ID))
	list, err := e.notify.List(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, domain.CountUnread(list))
}
