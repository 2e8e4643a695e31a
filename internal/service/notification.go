package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
	"github.com/diagnosis/salon-bookings/internal/push"
	"github.com/diagnosis/salon-bookings/pkg/logger"
)

type NotificationService interface {
	// Start requests push permission and, when granted, uploads the device
	// token and consumes refreshes and messages until ctx is done.
	Start(ctx context.Context) (push.AuthorizationStatus, error)
	List(ctx context.Context) (Result[[]domain.Notification], error)
	MarkAsRead(ctx context.Context, id int64) error
	MarkAllAsRead(ctx context.Context) error
	Unread() int
	// Subscribe returns a channel of notifications delivered by push. It is
	// closed when the listener stops.
	Subscribe() <-chan domain.Notification
}

type notificationService struct {
	base
	messenger push.Messenger
	cache     cache[domain.Notification]

	mu          sync.Mutex
	subscribers []chan domain.Notification
	stopped     bool
}

func NewNotificationService(api Requester, messenger push.Messenger, opts Options) NotificationService {
	return &notificationService{base: newBase(api, opts), messenger: messenger}
}

type tokenUpload struct {
	Token string `json:"token"`
}

func (s *notificationService) Start(ctx context.Context) (push.AuthorizationStatus, error) {
	status, err := s.messenger.RequestPermission(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to request push permission: %w", err)
	}
	if !status.Enabled() {
		logger.InfoContext(ctx, "Push notifications not permitted", "status", status.String())
		return status, nil
	}

	token, err := s.messenger.Token(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to get device token: %w", err)
	}
	s.uploadToken(ctx, token)

	go s.listen(ctx)
	return status, nil
}

func (s *notificationService) listen(ctx context.Context) {
	defer s.closeSubscribers()

	tokens := s.messenger.TokenRefreshes()
	messages := s.messenger.Messages()
	for tokens != nil || messages != nil {
		select {
		case <-ctx.Done():
			return
		case tok, ok := <-tokens:
			if !ok {
				tokens = nil
				continue
			}
			s.uploadToken(ctx, tok)
		case msg, ok := <-messages:
			if !ok {
				messages = nil
				continue
			}
			s.handleMessage(ctx, msg)
		}
	}
}

// uploadToken failures are logged, never returned.
func (s *notificationService) uploadToken(ctx context.Context, token string) {
	if err := s.api.Post(ctx, "/notifications/token", tokenUpload{Token: token}, nil); err != nil {
		logger.ErrorContext(ctx, "Failed to upload device token", "error", err)
		return
	}
	logger.DebugContext(ctx, "Device token uploaded")
}

func (s *notificationService) handleMessage(ctx context.Context, msg push.RemoteMessage) {
	n := domain.IncomingNotification(s.now(), msg.Title(), msg.Body(), msg.Data)
	s.cache.prepend(n)
	logger.InfoContext(ctx, "Notification received", "notification_id", n.ID, "type", n.Type)

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- n:
		default:
			logger.WarnContext(ctx, "Notification subscriber is slow, dropping", "notification_id", n.ID)
		}
	}
}

func (s *notificationService) Subscribe() <-chan domain.Notification {
	ch := make(chan domain.Notification, 16)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		close(ch)
		return ch
	}
	s.subscribers = append(s.subscribers, ch)
	return ch
}

func (s *notificationService) closeSubscribers() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	for _, ch := range s.subscribers {
		close(ch)
	}
	s.subscribers = nil
}

// List replaces the cache with the gateway's list, which includes anything
// already delivered by push.
func (s *notificationService) List(ctx context.Context) (Result[[]domain.Notification], error) {
	var list []domain.Notification
	if err := s.api.Get(ctx, "/notifications", nil, &list); err != nil {
		if !s.fallback(ctx, "notifications", err) {
			return Result[[]domain.Notification]{}, fmt.Errorf("failed to list notifications: %w", err)
		}
		return demoResult(s.seedDemo()), nil
	}
	return remoteResult(s.cache.replace(list)), nil
}

// seedDemo loads the fixed notifications behind any pushed ones.
func (s *notificationService) seedDemo() []domain.Notification {
	return s.cache.seedWith(func(pushed []domain.Notification) []domain.Notification {
		return append(pushed, mock.Notifications()...)
	})
}

// MarkAsRead always calls the gateway, even for a record already read.
func (s *notificationService) MarkAsRead(ctx context.Context, id int64) error {
	if err := s.api.Post(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil); err != nil {
		simulate, werr := s.writeFailed(ctx, "mark notification read", err)
		if !simulate {
			return werr
		}
		s.seedDemo()
	}
	s.cache.update(func(n domain.Notification) domain.Notification {
		if n.ID == id {
			n.Read = true
		}
		return n
	})
	return nil
}

func (s *notificationService) MarkAllAsRead(ctx context.Context) error {
	if err := s.api.Post(ctx, "/notifications/read-all", nil, nil); err != nil {
		simulate, werr := s.writeFailed(ctx, "mark all notifications read", err)
		if !simulate {
			return werr
		}
		s.seedDemo()
	}
	s.cache.update(func(n domain.Notification) domain.Notification {
		n.Read = true
		return n
	})
	return nil
}

func (s *notificationService) Unread() int {
	list, _ := s.cache.snapshot()
	return domain.CountUnread(list)
}
