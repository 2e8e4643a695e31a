package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/diagnosis/salon-bookings/internal/api"
	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
	"github.com/diagnosis/salon-bookings/internal/push"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailedReadsServeDemoData(t *testing.T) {
	ctx := context.Background()
	f := downAPI()

	appts, err := NewAppointmentService(f, demoOpts()).List(ctx)
	require.NoError(t, err)
	assert.True(t, appts.Demo())
	assert.Len(t, appts.Data, 2)

	methods, err := NewPaymentService(f, demoOpts()).ListMethods(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, methods.Data)

	reviews, err := NewReviewService(f, nil, demoOpts()).List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, reviews.Data)

	services, err := NewCatalogService(f, demoOpts()).List(ctx)
	require.NoError(t, err)
	assert.Len(t, services.Data, 6)

	specs, err := NewSpecialistService(f, demoOpts()).List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, specs.Data)

	notes, err := NewNotificationService(f, push.NewMemoryMessenger(push.StatusDenied, ""), demoOpts()).List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, notes.Data)

	chats, err := NewChatService(f, demoOpts()).List(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, chats.Data)
}

func TestFailedReadsReturnErrorsOutsideDemoMode(t *testing.T) {
	ctx := context.Background()
	f := downAPI()

	_, err := NewAppointmentService(f, strictOpts()).List(ctx)
	assert.ErrorIs(t, err, api.ErrTransport)

	_, err = NewCatalogService(f, strictOpts()).List(ctx)
	assert.ErrorIs(t, err, api.ErrTransport)

	f = newFakeAPI().status(http.MethodGet, "/specialists", http.StatusInternalServerError)
	_, err = NewSpecialistService(f, strictOpts()).List(ctx)
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusInternalServerError, se.Code)
}

func TestRemoteReadsAreTaggedRemote(t *testing.T) {
	f := newFakeAPI().on(http.MethodGet, "/services", []domain.Service{{ID: 7, Name: "Perm"}})
	res, err := NewCatalogService(f, demoOpts()).List(context.Background())
	require.NoError(t, err)
	assert.False(t, res.Demo())
	assert.Equal(t, "Perm", res.Data[0].Name)
}

func TestNotFoundLookupIsNilWithoutError(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI().status(http.MethodGet, "/services/99", http.StatusNotFound)

	res, err := NewCatalogService(f, strictOpts()).Get(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, res.Data)

	appt, err := NewAppointmentService(downAPI(), demoOpts()).Get(ctx, 42)
	require.NoError(t, err)
	assert.Nil(t, appt.Data)
}

func TestCancelDemoScenario(t *testing.T) {
	ctx := context.Background()
	svc := NewAppointmentService(downAPI(), demoOpts())

	before, err := svc.List(ctx)
	require.NoError(t, err)

	res, err := svc.Cancel(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, res.Data)
	assert.Equal(t, domain.AppointmentCancelled, res.Data.Status)

	after, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, after.Data, 2)

	want := before.Data[0]
	want.Status = domain.AppointmentCancelled
	assert.Equal(t, want, after.Data[0])
	assert.Equal(t, before.Data[1], after.Data[1])
}

func TestCancelRemoteChangesOnlyStatus(t *testing.T) {
	ctx := context.Background()
	appts := mock.Appointments()
	appts[1].Notes = "bring photos"
	f := newFakeAPI().on(http.MethodGet, "/appointments", appts)
	svc := NewAppointmentService(f, strictOpts())

	_, err := svc.List(ctx)
	require.NoError(t, err)
	_, err = svc.Cancel(ctx, 2)
	require.NoError(t, err)

	got, err := svc.Get(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, got.Data)
	want := appts[1]
	want.Status = domain.AppointmentCancelled
	assert.Equal(t, want, *got.Data)
	assert.Equal(t, 1, f.callsTo(http.MethodPost, "/appointments/2/cancel"))
}

func TestWriteFailurePropagatesOutsideDemoMode(t *testing.T) {
	ctx := context.Background()
	svc := NewAppointmentService(downAPI(), strictOpts())

	_, err := svc.Cancel(ctx, 1)
	assert.ErrorIs(t, err, ErrWriteFailed)
	assert.ErrorIs(t, err, api.ErrTransport)

	_, err = svc.Create(ctx, domain.BookingRequest{Date: "2024-04-01", Time: "10:00", ServiceID: 1, SpecialistID: 1})
	assert.ErrorIs(t, err, ErrWriteFailed)
}

func TestCreateAppendsToCache(t *testing.T) {
	ctx := context.Background()
	created := domain.Appointment{ID: 3, Date: "2024-04-01", Time: "10:00", Status: domain.AppointmentPending}
	f := newFakeAPI().
		on(http.MethodGet, "/appointments", mock.Appointments()).
		on(http.MethodPost, "/appointments", created)
	svc := NewAppointmentService(f, strictOpts())

	_, err := svc.List(ctx)
	require.NoError(t, err)
	res, err := svc.Create(ctx, domain.BookingRequest{Date: "2024-04-01", Time: "10:00", ServiceID: 1, SpecialistID: 1})
	require.NoError(t, err)
	assert.Equal(t, created, res.Data)

	got, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got.Data)

	_, err = svc.Create(ctx, domain.BookingRequest{Date: "2024-04-01"})
	assert.Error(t, err)
	assert.Equal(t, 1, f.callsTo(http.MethodPost, "/appointments"))
}

func TestAddMethodDemoScenario(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(downAPI(), demoOpts())

	res, err := svc.AddMethod(ctx, domain.AddCardRequest{CardNumber: "4242424242424242", Expiry: "12/24", CVV: "123"})
	require.NoError(t, err)
	assert.Equal(t, "4242", res.Data.Last4)
	assert.False(t, res.Data.IsDefault)
	assert.Equal(t, int64(3), res.Data.ID)

	list, err := svc.ListMethods(ctx)
	require.NoError(t, err)
	assert.Len(t, list.Data, 3)
}

func TestAddMethodToEmptyListBecomesDefault(t *testing.T) {
	ctx := context.Background()

	f := downAPI()
	svc := NewPaymentService(f, demoOpts())
	require.NoError(t, svc.DeleteMethod(ctx, 1))
	require.NoError(t, svc.DeleteMethod(ctx, 2))

	res, err := svc.AddMethod(ctx, domain.AddCardRequest{CardNumber: "5555", Expiry: "01/30", CVV: "1"})
	require.NoError(t, err)
	assert.True(t, res.Data.IsDefault)
}

func TestAddMethodLoadsListFirst(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI().
		on(http.MethodGet, "/payment-methods", []domain.PaymentMethod{}).
		on(http.MethodPost, "/payment-methods", domain.PaymentMethod{ID: 10, Type: domain.PaymentMethodCard, Last4: "1111", IsDefault: true})
	svc := NewPaymentService(f, strictOpts())

	res, err := svc.AddMethod(ctx, domain.AddCardRequest{CardNumber: "4111111111111111", Expiry: "10/29", CVV: "999"})
	require.NoError(t, err)
	assert.True(t, res.Data.IsDefault)
	assert.Equal(t, 1, f.callsTo(http.MethodGet, "/payment-methods"))
}

func TestAddMethodRequiresAllFields(t *testing.T) {
	f := newFakeAPI()
	svc := NewPaymentService(f, strictOpts())

	_, err := svc.AddMethod(context.Background(), domain.AddCardRequest{CardNumber: "4242", Expiry: "12/24"})
	assert.ErrorIs(t, err, ErrMissingCardDetails)
	assert.Empty(t, f.calls)
}

func TestSetDefaultLeavesExactlyOne(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(downAPI(), demoOpts())

	for _, id := range []int64{2, 1, 2} {
		res, err := svc.SetDefault(ctx, id)
		require.NoError(t, err)
		defaults := 0
		for _, m := range res.Data {
			if m.IsDefault {
				defaults++
				assert.Equal(t, id, m.ID)
			}
		}
		assert.Equal(t, 1, defaults)
	}
}

func TestProcessPayment(t *testing.T) {
	ctx := context.Background()
	svc := NewPaymentService(downAPI(), demoOpts())

	_, err := svc.Process(ctx, domain.PaymentRequest{AppointmentID: 1, Amount: 30, Mode: "bitcoin"})
	assert.ErrorIs(t, err, ErrInvalidPayment)

	res, err := svc.Process(ctx, domain.PaymentRequest{AppointmentID: 1, Amount: 30, Mode: domain.PaymentModeCash, CardID: 4})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, res.Data.Status)
	assert.Equal(t, "2024-03-15", res.Data.Date)

	p, err := svc.GetPayment(ctx, res.Data.ID)
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, 30.0, p.Amount)

	p, err = svc.GetPayment(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestReviews(t *testing.T) {
	ctx := context.Background()
	user := &domain.User{ID: 5, Surname: "Lee", GivenName: "Ana"}
	svc := NewReviewService(downAPI(), func(context.Context) (*domain.User, error) { return user, nil }, demoOpts())

	_, err := svc.Add(ctx, domain.ReviewRequest{Rating: 6, AppointmentID: 1})
	assert.ErrorIs(t, err, ErrInvalidRating)

	res, err := svc.Add(ctx, domain.ReviewRequest{Rating: 4, Comment: "nice", AppointmentID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Data.ID)
	assert.Equal(t, "Ana", res.Data.Client.GivenName)
	assert.Equal(t, int64(1), res.Data.Specialist.ID)

	forJane, err := svc.ListForSpecialist(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, forJane.Data, 3)

	got, err := svc.Get(ctx, 3)
	require.NoError(t, err)
	require.NotNil(t, got.Data)
	assert.True(t, got.Demo())
	assert.Equal(t, "Brown", got.Data.Client.Surname)
}

func TestMarkAsReadFlipsOnlyTarget(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI().on(http.MethodGet, "/notifications", mock.Notifications())
	svc := NewNotificationService(f, push.NewMemoryMessenger(push.StatusDenied, ""), strictOpts())

	before, err := svc.List(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.MarkAsRead(ctx, 3))
	require.NoError(t, svc.MarkAsRead(ctx, 2))

	list, _ := svc.(*notificationService).cache.snapshot()
	for i, n := range list {
		want := before.Data[i]
		if n.ID == 3 {
			want.Read = true
		}
		assert.Equal(t, want, n)
	}
	assert.Equal(t, 1, f.callsTo(http.MethodPost, "/notifications/2/read"), "already-read still calls the gateway")
	assert.Equal(t, 1, svc.Unread())

	require.NoError(t, svc.MarkAllAsRead(ctx))
	assert.Zero(t, svc.Unread())
	assert.Equal(t, 1, f.callsTo(http.MethodPost, "/notifications/read-all"))
}

func TestMarkAsReadFailureOutsideDemoMode(t *testing.T) {
	svc := NewNotificationService(downAPI(), push.NewMemoryMessenger(push.StatusDenied, ""), strictOpts())
	assert.ErrorIs(t, svc.MarkAllAsRead(context.Background()), ErrWriteFailed)
}

func TestNotificationStartUploadsTokenAndReceivesMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := newFakeAPI()
	m := push.NewMemoryMessenger(push.StatusAuthorized, "tok-1")
	svc := NewNotificationService(f, m, strictOpts())
	sub := svc.Subscribe()

	status, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, push.StatusAuthorized, status)
	assert.Equal(t, tokenUpload{Token: "tok-1"}, f.lastBody(http.MethodPost, "/notifications/token"))

	m.Deliver(push.RemoteMessage{Data: map[string]string{"type": "review", "reviewId": "8"}})

	select {
	case n := <-sub:
		assert.Equal(t, domain.DefaultNotificationTitle, n.Title)
		assert.Equal(t, domain.NotificationReview, n.Type)
		assert.Equal(t, fixedNow.UnixMilli(), n.ID)
		assert.False(t, n.Read)
		require.NotNil(t, n.Data)
		assert.Equal(t, int64(8), *n.Data.ReviewID)
	case <-time.After(time.Second):
		t.Fatal("notification not delivered")
	}
	assert.Equal(t, 1, svc.Unread())

	m.Rotate("tok-2")
	require.Eventually(t, func() bool {
		return f.callsTo(http.MethodPost, "/notifications/token") == 2
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, tokenUpload{Token: "tok-2"}, f.lastBody(http.MethodPost, "/notifications/token"))

	cancel()
	select {
	case _, open := <-sub:
		assert.False(t, open)
	case <-time.After(time.Second):
		t.Fatal("subscription not closed")
	}
}

func TestNotificationStartWithoutPermission(t *testing.T) {
	f := newFakeAPI()
	svc := NewNotificationService(f, push.NewMemoryMessenger(push.StatusDenied, "tok"), strictOpts())

	status, err := svc.Start(context.Background())
	require.NoError(t, err)
	assert.False(t, status.Enabled())
	assert.Zero(t, f.callsTo(http.MethodPost, "/notifications/token"))
}

func TestTokenUploadFailureIsNotFatal(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	svc := NewNotificationService(downAPI(), push.NewMemoryMessenger(push.StatusProvisional, "tok"), strictOpts())
	status, err := svc.Start(ctx)
	require.NoError(t, err)
	assert.Equal(t, push.StatusProvisional, status)
}

func TestChatSearch(t *testing.T) {
	svc := NewChatService(downAPI(), demoOpts())

	res, err := svc.Search(context.Background(), "  LA ")
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Laila", res.Data[0].Name)

	all, err := svc.Search(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, all.Data, 3)
}

func TestAvailabilityFallback(t *testing.T) {
	res, err := NewSpecialistService(downAPI(), demoOpts()).Availability(context.Background(), 1, "2024-03-20")
	require.NoError(t, err)
	assert.Equal(t, mock.Availability(), res.Data)
}

func TestSetDefaultLoadsListFirst(t *testing.T) {
	ctx := context.Background()
	f := newFakeAPI().on(http.MethodGet, "/payment-methods", mock.PaymentMethods())
	svc := NewPaymentService(f, strictOpts())

	res, err := svc.SetDefault(ctx, 2)
	require.NoError(t, err)
	assert.False(t, res.Demo())
	require.Len(t, res.Data, 2)
	defaults := 0
	for _, m := range res.Data {
		if m.IsDefault {
			defaults++
			assert.Equal(t, int64(2), m.ID)
		}
	}
	assert.Equal(t, 1, defaults)
	assert.Equal(t, 1, f.callsTo(http.MethodGet, "/payment-methods"))
	assert.Equal(t, 1, f.callsTo(http.MethodPost, "/payment-methods/2/default"))
}

func TestCancelUnknownAppointmentIsNil(t *testing.T) {
	ctx := context.Background()
	svc := NewAppointmentService(downAPI(), demoOpts())

	res, err := svc.Cancel(ctx, 99)
	require.NoError(t, err)
	assert.Nil(t, res.Data)
	assert.True(t, res.Demo())

	list, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, mock.Appointments(), list.Data)
}

func TestDemoNotificationsKeepPushedOnes(t *testing.T) {
	ctx := context.Background()
	svc := NewNotificationService(downAPI(), push.NewMemoryMessenger(push.StatusDenied, ""), demoOpts())
	ns := svc.(*notificationService)
	pushed := domain.Notification{ID: 1710496800000, Title: "Reminder", Type: domain.NotificationAppointment}
	ns.cache.prepend(pushed)

	res, err := svc.List(ctx)
	require.NoError(t, err)
	assert.True(t, res.Demo())
	require.Len(t, res.Data, 1+len(mock.Notifications()))
	assert.Equal(t, pushed, res.Data[0])
	assert.Equal(t, SourceDemo, ns.cache.source())

	require.NoError(t, svc.MarkAllAsRead(ctx))
	assert.Zero(t, svc.Unread())
}

func TestDemoLoginOnlyWhenGatewayUnreachable(t *testing.T) {
	ctx := context.Background()

	rejected := newFakeAPI().status(http.MethodPost, "/auth/login", http.StatusUnauthorized)
	sess := &memSession{}
	_, err := NewAuthService(rejected, sess, demoOpts()).Login(ctx, "alice@example.com", "wrong")
	var se *api.StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.Code)
	tok, _ := sess.Token(ctx)
	assert.Empty(t, tok)

	res, err := NewAuthService(downAPI(), sess, demoOpts()).Login(ctx, "alice@example.com", "any")
	require.NoError(t, err)
	assert.True(t, res.Demo())
	assert.Equal(t, mock.DemoUser().ID, res.Data.ID)
	tok, _ = sess.Token(ctx)
	assert.Equal(t, mock.DemoToken, tok)
}
