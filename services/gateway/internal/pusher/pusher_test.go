package pusher

import (
	"context"
	"errors"
	"testing"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/push"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageCarriesTypeAndReferences(t *testing.T) {
	msg := Message(domain.Notification{
		Title:   "Payment received",
		Message: "Thanks",
		Type:    domain.NotificationPayment,
		Data:    &domain.NotificationData{PaymentID: domain.Int64(7)},
	})
	assert.Equal(t, "Payment received", msg.Title())
	assert.Equal(t, "Thanks", msg.Body())
	assert.Equal(t, map[string]string{"type": "payment", "paymentId": "7"}, msg.Data)

	bare := Message(domain.Notification{Title: "Hi", Type: domain.NotificationSystem})
	assert.Equal(t, map[string]string{"type": "system"}, bare.Data)
}

func TestNATSPublishesPerToken(t *testing.T) {
	bus := events.NewMemoryEventBus()
	var got []push.RemoteMessage
	require.NoError(t, bus.Subscribe(events.PushMessageSubject("dev-1"), func(m *events.Message) {
		var msg push.RemoteMessage
		require.NoError(t, m.Decode(&msg))
		got = append(got, msg)
	}))

	p := NewNATS(bus)
	stale, err := p.Push(context.Background(), []string{"dev-1", "dev-2"}, push.RemoteMessage{
		Notification: &push.MessageNotification{Title: "T", Body: "B"},
	})
	require.NoError(t, err)
	assert.Empty(t, stale)
	require.Len(t, got, 1)
	assert.Equal(t, "T", got[0].Title())
}

func TestNATSRotate(t *testing.T) {
	bus := events.NewMemoryEventBus()
	var update push.TokenUpdate
	require.NoError(t, bus.Subscribe(events.PushTokenSubject("old"), func(m *events.Message) {
		require.NoError(t, m.Decode(&update))
	}))
	require.NoError(t, NewNATS(bus).Rotate(context.Background(), "old", "new"))
	assert.Equal(t, "new", update.Token)
}

type stubPusher struct {
	stale []string
	err   error
}

func (s stubPusher) Push(context.Context, []string, push.RemoteMessage) ([]string, error) {
	return s.stale, s.err
}

func TestMultiCollectsStaleAndErrors(t *testing.T) {
	boom := errors.New("boom")
	m := Multi{stubPusher{stale: []string{"a"}}, stubPusher{err: boom}, stubPusher{stale: []string{"b"}}}
	stale, err := m.Push(context.Background(), []string{"a", "b"}, push.RemoteMessage{})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a", "b"}, stale)
}
