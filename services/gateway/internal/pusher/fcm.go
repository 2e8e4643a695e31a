package pusher

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/diagnosis/salon-bookings/internal/push"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"google.golang.org/api/option"
)

// FCM sends through Firebase Cloud Messaging.
type FCM struct {
	client *messaging.Client
}

// NewFCM uses the service account in credentialsFile, or the ambient
// Google credentials when it is empty.
func NewFCM(ctx context.Context, credentialsFile string) (*FCM, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	logger.InfoContext(ctx, "FCM client initialized")
	return &FCM{client: client}, nil
}

func (f *FCM) Push(ctx context.Context, tokens []string, msg push.RemoteMessage) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	resp, err := f.client.SendEachForMulticast(ctx, &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: msg.Title(),
			Body:  msg.Body(),
		},
		Data: msg.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to send FCM multicast message: %w", err)
	}

	logger.InfoContext(ctx, "FCM multicast sent", "success", resp.SuccessCount, "failure", resp.FailureCount)

	var stale []string
	for i, r := range resp.Responses {
		if r.Success {
			continue
		}
		if messaging.IsUnregistered(r.Error) {
			stale = append(stale, tokens[i])
			continue
		}
		logger.WarnContext(ctx, "FCM delivery failed", "error", r.Error)
	}
	return stale, nil
}
