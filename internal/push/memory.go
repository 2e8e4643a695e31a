package push

import (
	"context"
	"sync"
)

// MemoryMessenger is an in-process Messenger driven by Deliver and Rotate.
type MemoryMessenger struct {
	mu       sync.Mutex
	status   AuthorizationStatus
	token    string
	closed   bool
	messages chan RemoteMessage
	tokens   chan string
}

func NewMemoryMessenger(status AuthorizationStatus, token string) *MemoryMessenger {
	return &MemoryMessenger{
		status:   status,
		token:    token,
		messages: make(chan RemoteMessage, bufferSize),
		tokens:   make(chan string, bufferSize),
	}
}

func (m *MemoryMessenger) RequestPermission(context.Context) (AuthorizationStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status, nil
}

func (m *MemoryMessenger) Token(context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *MemoryMessenger) TokenRefreshes() <-chan string { return m.tokens }
func (m *MemoryMessenger) Messages() <-chan RemoteMessage { return m.messages }

// Deliver queues msg; it reports false once the messenger is closed.
func (m *MemoryMessenger) Deliver(msg RemoteMessage) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.messages <- msg
	return true
}

// Rotate replaces the device token and announces it on TokenRefreshes.
func (m *MemoryMessenger) Rotate(token string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return false
	}
	m.token = token
	m.tokens <- token
	return true
}

func (m *MemoryMessenger) Close() error {
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
