package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPushSubjectsEscapeTokenSeparators(t *testing.T) {
	assert.Equal(t, "push.device.abc_def", PushMessageSubject("abc.def"))
	assert.Equal(t, "push.device.a_b.token", PushTokenSubject("a b"))
}

func TestMemoryEventBusDeliversToSubscribers(t *testing.T) {
	bus := NewMemoryEventBus()

	var got []ReviewCreatedEvent
	require.NoError(t, bus.Subscribe(ReviewCreated, func(msg *Message) {
		var ev ReviewCreatedEvent
		require.NoError(t, msg.Decode(&ev))
		got = append(got, ev)
	}))

	require.NoError(t, bus.Publish(context.Background(), ReviewCreated, ReviewCreatedEvent{ReviewID: 4, Rating: 5}))
	require.NoError(t, bus.Publish(context.Background(), PaymentFailed, map[string]int{"x": 1}))

	require.Len(t, got, 1)
	assert.Equal(t, int64(4), got[0].ReviewID)
}

func TestMemoryEventBusQueueGroupHasOneConsumer(t *testing.T) {
	bus := NewMemoryEventBus()
	calls := 0
	for i := 0; i < 3; i++ {
		require.NoError(t, bus.QueueSubscribe(NotificationCreated, "workers", func(*Message) { calls++ }))
	}

	require.NoError(t, bus.Publish(context.Background(), NotificationCreated, NotificationEvent{}))
	assert.Equal(t, 1, calls)

	require.NoError(t, bus.Close())
	assert.Error(t, bus.Publish(context.Background(), NotificationCreated, NotificationEvent{}))
}
