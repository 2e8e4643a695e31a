package payments

import (
	"context"
	"testing"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v76"
)

func TestCents(t *testing.T) {
	assert.Equal(t, int64(3000), cents(30))
	assert.Equal(t, int64(1999), cents(19.99))
	assert.Equal(t, int64(1), cents(0.005))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, domain.PaymentCompleted, statusOf(stripe.PaymentIntentStatusSucceeded))
	assert.Equal(t, domain.PaymentFailed, statusOf(stripe.PaymentIntentStatusCanceled))
	assert.Equal(t, domain.PaymentPending, statusOf(stripe.PaymentIntentStatusRequiresAction))
	assert.Equal(t, domain.PaymentPending, statusOf(stripe.PaymentIntentStatusProcessing))
}

func TestOfflineCompletes(t *testing.T) {
	res, err := Offline{}.Charge(context.Background(), Charge{Amount: 30, AppointmentID: 1})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentCompleted, res.Status)
	assert.Empty(t, res.IntentID)
}
