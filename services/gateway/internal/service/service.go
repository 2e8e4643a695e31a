// Package service holds the gateway's business rules. Handlers map the
// errors declared here to HTTP statuses.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
)

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrBadCredentials  = errors.New("invalid email or password")
	ErrNotCancellable  = errors.New("appointment can no longer be cancelled")
	ErrAlreadyReviewed = errors.New("appointment already reviewed")
	ErrNoPaymentMethod = errors.New("no card on file")

	ErrNotFound    = repository.ErrNotFound
	ErrEmailExists = repository.ErrEmailExists
	ErrSlotTaken   = repository.ErrSlotTaken
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

func (c Clock) today() string {
	return c.now().Format(domain.DateLayout)
}

// publish sends an event without failing the request.
func publish(ctx context.Context, bus events.Publisher, subject string, event any) {
	if bus == nil {
		return
	}
	if err := bus.Publish(ctx, subject, event); err != nil {
		logger.ErrorContext(ctx, "Failed to publish event", "subject", subject, "error", err)
	}
}
