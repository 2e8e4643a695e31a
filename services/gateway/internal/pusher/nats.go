package pusher

import (
	"context"
	"errors"
	"fmt"

	"github.com/diagnosis/salon-bookings/internal/push"
	"github.com/diagnosis/salon-bookings/pkg/events"
)

// NATS publishes on each token's device subject, where the client's NATS
// messenger listens.
type NATS struct {
	pub events.Publisher
}

func NewNATS(pub events.Publisher) *NATS {
	return &NATS{pub: pub}
}

func (n *NATS) Push(ctx context.Context, tokens []string, msg push.RemoteMessage) ([]string, error) {
	var errs []error
	for _, tok := range tokens {
		if err := n.pub.Publish(ctx, events.PushMessageSubject(tok), msg); err != nil {
			errs = append(errs, fmt.Errorf("publish to %s: %w", tok, err))
		}
	}
	return nil, errors.Join(errs...)
}

// Rotate tells the device holding oldToken to switch to newToken.
func (n *NATS) Rotate(ctx context.Context, oldToken, newToken string) error {
	return n.pub.Publish(ctx, events.PushTokenSubject(oldToken), push.TokenUpdate{Token: newToken})
}
