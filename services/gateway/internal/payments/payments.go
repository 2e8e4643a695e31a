// Package payments charges card payments. Cash never goes through a
// processor.
package payments

import (
	"context"
	"math"

	"github.com/diagnosis/salon-bookings/internal/domain"
)

type Charge struct {
	UserID         int64
	AppointmentID  int64
	Amount         float64
	IdempotencyKey string
}

type Result struct {
	IntentID string
	Status   domain.PaymentStatus
}

type Processor interface {
	Charge(ctx context.Context, c Charge) (Result, error)
}

// cents converts a euro amount to the smallest currency unit.
func cents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// Offline accepts every card charge. It stands in for a provider in local
// development.
type Offline struct{}

func (Offline) Charge(context.Context, Charge) (Result, error) {
	return Result{Status: domain.PaymentCompleted}, nil
}
