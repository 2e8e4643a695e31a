package service

import (
	"context"
	"strings"
	"time"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/pusher"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
)

// NotificationInput is the body of POST /notifications.
type NotificationInput struct {
	Title   string                   `json:"title"`
	Message string                   `json:"message"`
	Type    domain.NotificationType  `json:"type"`
	Data    *domain.NotificationData `json:"data,omitempty"`
}

type NotificationService interface {
	List(ctx context.Context, userID int64) ([]domain.Notification, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) error
	RegisterToken(ctx context.Context, userID int64, token string) error
	// Notify stores the notification and pushes it to the user's devices.
	// Delivery failures are logged, never returned.
	Notify(ctx context.Context, userID int64, in NotificationInput) (*domain.Notification, error)
}

type notificationService struct {
	repo   repository.NotificationRepository
	pusher pusher.Pusher
	bus    events.Publisher
	clock  Clock
}

func NewNotificationService(repo repository.NotificationRepository, p pusher.Pusher, bus events.Publisher, clock Clock) NotificationService {
	return &notificationService{repo: repo, pusher: p, bus: bus, clock: clock}
}

func (s *notificationService) List(ctx context.Context, userID int64) ([]domain.Notification, error) {
	return s.repo.ListNotifications(ctx, userID)
}

func (s *notificationService) MarkRead(ctx context.Context, userID, id int64) error {
	return s.repo.MarkNotificationRead(ctx, userID, id)
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID int64) error {
	return s.repo.MarkAllNotificationsRead(ctx, userID)
}

func (s *notificationService) RegisterToken(ctx context.Context, userID int64, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return invalid("token is required")
	}
	if err := s.repo.SaveDeviceToken(ctx, userID, token); err != nil {
		return err
	}
	logger.InfoContext(ctx, "Device registered", "user_id", userID)
	publish(ctx, s.bus, events.DeviceRegistered, events.DeviceRegisteredEvent{UserID: userID, Token: token})
	return nil
}

func (s *notificationService) Notify(ctx context.Context, userID int64, in NotificationInput) (*domain.Notification, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, invalid("message is required")
	}
	typ, ok := domain.ParseNotificationType(string(in.Type))
	if !ok {
		typ = domain.NotificationSystem
	}
	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = domain.DefaultNotificationTitle
	}

	n, err := s.repo.CreateNotification(ctx, userID, domain.Notification{
		Title:   title,
		Message: in.Message,
		Date:    s.clock.now().UTC().Format(time.RFC3339),
		Type:    typ,
		Data:    in.Data,
	})
	if err != nil {
		return nil, err
	}

	publish(ctx, s.bus, events.NotificationCreated, events.NotificationEvent{
		NotificationID: n.ID,
		UserID:         userID,
		Type:           string(n.Type),
		Title:          n.Title,
		Data:           n.Data.Map(),
	})
	s.deliver(ctx, userID, n)
	return &n, nil
}

func (s *notificationService) deliver(ctx context.Context, userID int64, n domain.Notification) {
	if s.pusher == nil {
		return
	}
	tokens, err := s.repo.DeviceTokens(ctx, userID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to load device tokens", "user_id", userID, "error", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	stale, err := s.pusher.Push(ctx, tokens, pusher.Message(n))
	if err != nil {
		logger.WarnContext(ctx, "Push delivery failed", "user_id", userID, "notification_id", n.ID, "error", err)
	}
	if len(stale) > 0 {
		if err := s.repo.DeleteDeviceTokens(ctx, stale...); err != nil {
			logger.WarnContext(ctx, "Failed to drop stale device tokens", "error", err)
		}
	}
}
