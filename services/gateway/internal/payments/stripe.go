package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

// TestPaymentMethod is Stripe's always-succeeding test card.
const TestPaymentMethod = "pm_card_visa"

type Stripe struct {
	api           *client.API
	currency      string
	paymentMethod string
}

// NewStripe charges through PaymentIntents. With a paymentMethod the intent
// is confirmed immediately; without one it stays pending until the client
// confirms it.
func NewStripe(secretKey, currency, paymentMethod string) *Stripe {
	sc := &client.API{}
	sc.Init(secretKey, nil)
	return &Stripe{api: sc, currency: currency, paymentMethod: paymentMethod}
}

func (s *Stripe) Charge(ctx context.Context, c Charge) (Result, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(cents(c.Amount)),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx
	params.AddMetadata("appointment_id", strconv.FormatInt(c.AppointmentID, 10))
	params.AddMetadata("user_id", strconv.FormatInt(c.UserID, 10))
	if c.IdempotencyKey != "" {
		params.SetIdempotencyKey(c.IdempotencyKey)
	}
	if s.paymentMethod != "" {
		params.PaymentMethod = stripe.String(s.paymentMethod)
		params.Confirm = stripe.Bool(true)
	}

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		var serr *stripe.Error
		if errors.As(err, &serr) && serr.Type == stripe.ErrorTypeCard {
			logger.WarnContext(ctx, "Card declined", "code", serr.Code, "appointment_id", c.AppointmentID)
			return Result{Status: domain.PaymentFailed}, nil
		}
		return Result{}, fmt.Errorf("failed to create payment intent: %w", err)
	}

	logger.InfoContext(ctx, "Payment intent created", "intent_id", pi.ID, "status", pi.Status)
	return Result{IntentID: pi.ID, Status: statusOf(pi.Status)}, nil
}

func statusOf(s stripe.PaymentIntentStatus) domain.PaymentStatus {
	switch s {
	case stripe.PaymentIntentStatusSucceeded:
		return domain.PaymentCompleted
	case stripe.PaymentIntentStatusCanceled:
		return domain.PaymentFailed
	default:
		return domain.PaymentPending
	}
}
