package push

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/pkg/logger"
)

// NATSMessenger receives pushes published by the gateway on the subjects of
// its device token. The device id doubles as the initial token.
type NATSMessenger struct {
	sub events.Subscriber

	mu       sync.Mutex
	token    string
	closed   bool
	messages chan RemoteMessage
	tokens   chan string
}

func NewNATSMessenger(sub events.Subscriber, deviceID string) (*NATSMessenger, error) {
	if deviceID == "" {
		return nil, errors.New("push: device id is required")
	}
	m := &NATSMessenger{
		sub:      sub,
		token:    deviceID,
		messages: make(chan RemoteMessage, bufferSize),
		tokens:   make(chan string, bufferSize),
	}
	if err := m.listen(deviceID); err != nil {
		return nil, err
	}
	return m, nil
}

// RequestPermission always grants: a NATS subscriber has no OS prompt.
func (m *NATSMessenger) RequestPermission(context.Context) (AuthorizationStatus, error) {
	return StatusAuthorized, nil
}

func (m *NATSMessenger) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *NATSMessenger) TokenRefreshes() <-chan string { return m.tokens }
func (m *NATSMessenger) Messages() <-chan RemoteMessage { return m.messages }

func (m *NATSMessenger) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	close(m.messages)
	close(m.tokens)
	return nil
}

func (m *NATSMessenger) listen(token string) error {
	if err := m.sub.Subscribe(events.PushMessageSubject(token), m.onMessage); err != nil {
		return fmt.Errorf("failed to subscribe to push messages: %w", err)
	}
	if err := m.sub.Subscribe(events.PushTokenSubject(token), m.onToken); err != nil {
		return fmt.Errorf("failed to subscribe to token updates: %w", err)
	}
	return nil
}

func (m *NATSMessenger) onMessage(msg *events.Message) {
	var rm RemoteMessage
	if err := msg.Decode(&rm); err != nil {
		logger.Warn("Dropping malformed push message", "error", err)
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.messages <- rm:
	default:
		logger.Warn("Push message buffer full, dropping message", "subject", msg.Subject)
	}
}

func (m *NATSMessenger) onToken(msg *events.Message) {
	var upd TokenUpdate
	if err := msg.Decode(&upd); err != nil || upd.Token == "" {
		logger.Warn("Dropping malformed token update", "subject", msg.Subject)
		return
	}

	m.mu.Lock()
	if m.closed || upd.Token == m.token {
		m.mu.Unlock()
		return
	}
	m.token = upd.Token
	m.mu.Unlock()

	if err := m.listen(upd.Token); err != nil {
		logger.Error("Failed to follow refreshed token", "error", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	select {
	case m.tokens <- upd.Token:
	default:
		logger.Warn("Token refresh buffer full, dropping update")
	}
}
