package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// MemoryEventBus delivers events synchronously inside the process. It backs
// tests and deployments that run without NATS. Subjects match exactly.
type MemoryEventBus struct {
	mu       sync.RWMutex
	handlers map[string][]func(msg *Message)
	queues   map[string]int
	closed   bool
}

func NewMemoryEventBus() *MemoryEventBus {
	return &MemoryEventBus{
		handlers: make(map[string][]func(msg *Message)),
		queues:   make(map[string]int),
	}
}

func (b *MemoryEventBus) Publish(_ context.Context, subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	b.mu.RLock()
	if b.closed {
		b.mu.RUnlock()
		return fmt.Errorf("event bus closed")
	}
	handlers := append([]func(msg *Message){}, b.handlers[subject]...)
	b.mu.RUnlock()

	for _, h := range handlers {
		h(wrap(subject, payload))
	}
	return nil
}

func (b *MemoryEventBus) Subscribe(subject string, handler func(msg *Message)) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[subject] = append(b.handlers[subject], handler)
	return nil
}

// QueueSubscribe registers at most one handler per subject and queue pair,
// matching the one-consumer-per-group delivery of a NATS queue group.
func (b *MemoryEventBus) QueueSubscribe(subject, queue string, handler func(msg *Message)) error {
	b.mu.Lock()
	key := subject + "|" + queue
	b.queues[key]++
	first := b.queues[key] == 1
	b.mu.Unlock()

	if !first {
		return nil
	}
	return b.Subscribe(subject, handler)
}

func (b *MemoryEventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = make(map[string][]func(msg *Message))
	return nil
}
