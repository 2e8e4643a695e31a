// Package pusher delivers stored notifications to registered devices.
package pusher

import (
	"context"
	"errors"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/push"
)

type Pusher interface {
	// Push sends msg to every token. Stale lists tokens the provider reports
	// as no longer registered.
	Push(ctx context.Context, tokens []string, msg push.RemoteMessage) (stale []string, err error)
}

// Message is the push form of a stored notification.
func Message(n domain.Notification) push.RemoteMessage {
	data := n.Data.Map()
	data[domain.DataKeyType] = string(n.Type)
	return push.RemoteMessage{
		Notification: &push.MessageNotification{Title: n.Title, Body: n.Message},
		Data:         data,
	}
}

// Multi fans out to several pushers.
type Multi []Pusher

func (m Multi) Push(ctx context.Context, tokens []string, msg push.RemoteMessage) ([]string, error) {
	var (
		stale []string
		errs  []error
	)
	for _, p := range m {
		s, err := p.Push(ctx, tokens, msg)
		stale = append(stale, s...)
		errs = append(errs, err)
	}
	return stale, errors.Join(errs...)
}
