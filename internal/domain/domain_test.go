package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUserIsCanonical(t *testing.T) {
	u := NewUser(9, SignUpInput{
		Surname:   " Smith ",
		GivenName: "John",
		Email:     "John.Smith@Example.com ",
		Phone:     "0987654321",
		Password:  "ignored",
		Role:      "admin",
	})

	assert.Equal(t, User{ID: 9, Surname: "Smith", GivenName: "John", Email: "john.smith@example.com", Phone: "0987654321", Role: RoleClient}, u)
	assert.Equal(t, "John Smith", u.FullName())

	s := NewUser(1, SignUpInput{Role: RoleSpecialist})
	assert.Equal(t, RoleSpecialist, s.Role)
}

func TestCancelledChangesOnlyStatus(t *testing.T) {
	a := Appointment{
		ID: 1, Date: "2024-03-20", Time: "14:30", Status: AppointmentConfirmed,
		Service:    Service{ID: 1, Name: "Haircut", Price: 30, DurationMinutes: 30},
		Specialist: Specialist{ID: 1, Surname: "Doe", GivenName: "Jane"},
		Client:     Contact{ID: 1, Surname: "Smith"},
		Notes:      "fringe only",
	}

	c := a.Cancelled()
	assert.Equal(t, AppointmentCancelled, c.Status)
	c.Status = a.Status
	assert.Equal(t, a, c)
	assert.True(t, a.CanCancel())
	assert.False(t, (&Appointment{Status: AppointmentCompleted}).CanCancel())
}

func TestBookingRequestValidate(t *testing.T) {
	ok := BookingRequest{Date: "2024-03-20", Time: "14:30", ServiceID: 1, SpecialistID: 2}
	require.NoError(t, ok.Validate())

	bad := ok
	bad.Time = "2pm"
	assert.Error(t, bad.Validate())

	missing := ok
	missing.SpecialistID = 0
	assert.Error(t, missing.Validate())
}

func TestLast4(t *testing.T) {
	assert.Equal(t, "4242", Last4("4242424242424242"))
	assert.Equal(t, "1234", Last4("5555 6666 7777 1234"))
	assert.Equal(t, "12", Last4("12"))
}

func TestSetDefaultLeavesExactlyOne(t *testing.T) {
	methods := []PaymentMethod{{ID: 1, IsDefault: true}, {ID: 2}, {ID: 3, IsDefault: true}}

	out := SetDefault(methods, 2)

	defaults := 0
	for _, m := range out {
		if m.IsDefault {
			defaults++
			assert.Equal(t, int64(2), m.ID)
		}
	}
	assert.Equal(t, 1, defaults)
	assert.True(t, methods[0].IsDefault, "input must not be mutated")
}

func TestNewCardMethodDefaultOnlyWhenFirst(t *testing.T) {
	req := AddCardRequest{CardNumber: "4242424242424242", Expiry: "12/24", CVV: "123"}
	assert.True(t, NewCardMethod(1, req, 0).IsDefault)

	m := NewCardMethod(3, req, 2)
	assert.False(t, m.IsDefault)
	assert.Equal(t, "4242", m.Last4)
	assert.Equal(t, PaymentMethodCard, m.Type)
}

func TestIncomingNotificationDefaults(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	n := IncomingNotification(now, "", "body", map[string]string{"type": "bogus"})
	assert.Equal(t, DefaultNotificationTitle, n.Title)
	assert.Equal(t, NotificationSystem, n.Type)
	assert.Equal(t, now.UnixMilli(), n.ID)
	assert.Equal(t, "2024-03-15T10:00:00Z", n.Date)
	assert.False(t, n.Read)
	assert.Nil(t, n.Data)

	n = IncomingNotification(now, "Paid", "", map[string]string{"type": "payment", "paymentId": "12"})
	assert.Equal(t, NotificationPayment, n.Type)
	require.NotNil(t, n.Data)
	assert.Equal(t, int64(12), *n.Data.PaymentID)
	assert.Equal(t, map[string]string{"paymentId": "12"}, n.Data.Map())
}

func TestAverageRating(t *testing.T) {
	assert.Zero(t, AverageRating(nil))
	assert.InDelta(t, 4.5, AverageRating([]Review{{Rating: 5}, {Rating: 4}}), 1e-9)
}
