package service

import (
	"context"
	"fmt"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/pkg/logger"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/payments"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
)

type PaymentService interface {
	ListMethods(ctx context.Context, userID int64) ([]domain.PaymentMethod, error)
	// AddMethod keeps only the last four digits and the expiry. The first
	// method of a user becomes the default.
	AddMethod(ctx context.Context, userID int64, req domain.AddCardRequest) (*domain.PaymentMethod, error)
	DeleteMethod(ctx context.Context, userID, id int64) error
	SetDefault(ctx context.Context, userID, id int64) error
	// Process charges a card through the processor or records a cash
	// payment, which stays pending until settled at the salon.
	Process(ctx context.Context, userID int64, req domain.PaymentRequest, idempotencyKey string) (*domain.Payment, error)
}

type paymentService struct {
	store     repository.Store
	processor payments.Processor
	notify    NotificationService
	bus       events.Publisher
	clock     Clock
}

func NewPaymentService(store repository.Store, processor payments.Processor, notify NotificationService, bus events.Publisher, clock Clock) PaymentService {
	return &paymentService{store: store, processor: processor, notify: notify, bus: bus, clock: clock}
}

func (s *paymentService) ListMethods(ctx context.Context, userID int64) ([]domain.PaymentMethod, error) {
	return s.store.ListPaymentMethods(ctx, userID)
}

func (s *paymentService) AddMethod(ctx context.Context, userID int64, req domain.AddCardRequest) (*domain.PaymentMethod, error) {
	if !req.Complete() {
		return nil, invalid("card number, expiry and cvv are required")
	}
	existing, err := s.store.ListPaymentMethods(ctx, userID)
	if err != nil {
		return nil, err
	}

	m, err := s.store.AddPaymentMethod(ctx, userID, domain.NewCardMethod(0, req, len(existing)))
	if err != nil {
		return nil, err
	}
	publish(ctx, s.bus, events.PaymentMethodAdded, events.PaymentMethodEvent{MethodID: m.ID, ClientID: userID, IsDefault: m.IsDefault})
	return &m, nil
}

func (s *paymentService) DeleteMethod(ctx context.Context, userID, id int64) error {
	if err := s.store.DeletePaymentMethod(ctx, userID, id); err != nil {
		return err
	}
	publish(ctx, s.bus, events.PaymentMethodRemoved, events.PaymentMethodEvent{MethodID: id, ClientID: userID})
	return nil
}

func (s *paymentService) SetDefault(ctx context.Context, userID, id int64) error {
	if err := s.store.SetDefaultPaymentMethod(ctx, userID, id); err != nil {
		return err
	}
	publish(ctx, s.bus, events.PaymentMethodDefaults, events.PaymentMethodEvent{MethodID: id, ClientID: userID, IsDefault: true})
	return nil
}

// card picks the requested card, or the default one when id is zero.
func (s *paymentService) card(ctx context.Context, userID, id int64) (domain.PaymentMethod, error) {
	methods, err := s.store.ListPaymentMethods(ctx, userID)
	if err != nil {
		return domain.PaymentMethod{}, err
	}
	for _, m := range methods {
		if (id != 0 && m.ID == id) || (id == 0 && m.IsDefault) {
			return m, nil
		}
	}
	if id != 0 {
		return domain.PaymentMethod{}, fmt.Errorf("payment method %d: %w", id, ErrNotFound)
	}
	return domain.PaymentMethod{}, ErrNoPaymentMethod
}

func (s *paymentService) Process(ctx context.Context, userID int64, req domain.PaymentRequest, idempotencyKey string) (*domain.Payment, error) {
	mode, ok := domain.ParsePaymentMode(string(req.Mode))
	if !ok {
		return nil, invalid("mode must be card or cash")
	}
	if req.Amount <= 0 {
		return nil, invalid("amount must be positive")
	}
	a, err := s.store.GetAppointment(ctx, userID, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if a.Status == domain.AppointmentCancelled {
		return nil, invalid("appointment %d is cancelled", a.ID)
	}

	p := domain.Payment{
		Amount:        req.Amount,
		Mode:          mode,
		Status:        domain.PaymentPending,
		Date:          s.clock.today(),
		AppointmentID: a.ID,
	}
	var intentID string
	if mode == domain.PaymentModeCard {
		card, err := s.card(ctx, userID, req.CardID)
		if err != nil {
			return nil, err
		}
		res, err := s.processor.Charge(ctx, payments.Charge{
			UserID:         userID,
			AppointmentID:  a.ID,
			Amount:         req.Amount,
			IdempotencyKey: idempotencyKey,
		})
		if err != nil {
			return nil, err
		}
		p.Status, intentID = res.Status, res.IntentID
		logger.InfoContext(ctx, "Card charged", "appointment_id", a.ID, "card_id", card.ID, "status", p.Status)
	}

	p, err = s.store.CreatePayment(ctx, userID, p)
	if err != nil {
		return nil, err
	}

	subject := events.PaymentProcessed
	if p.Status == domain.PaymentFailed {
		subject = events.PaymentFailed
	}
	publish(ctx, s.bus, subject, events.PaymentProcessedEvent{
		PaymentID:     p.ID,
		AppointmentID: a.ID,
		ClientID:      userID,
		Amount:        p.Amount,
		Mode:          string(p.Mode),
		Status:        string(p.Status),
		IntentID:      intentID,
	})

	if p.Status == domain.PaymentCompleted && a.Status == domain.AppointmentPending {
		if _, err := s.store.SetAppointmentStatus(ctx, userID, a.ID, domain.AppointmentConfirmed); err != nil {
			logger.WarnContext(ctx, "Failed to confirm paid appointment", "appointment_id", a.ID, "error", err)
		}
	}
	s.announce(ctx, userID, p)
	return &p, nil
}

func (s *paymentService) announce(ctx context.Context, userID int64, p domain.Payment) {
	title, message := "Payment received", fmt.Sprintf("We received your payment of %.2f€.", p.Amount)
	switch {
	case p.Status == domain.PaymentFailed:
		title, message = "Payment failed", fmt.Sprintf("Your payment of %.2f€ was declined.", p.Amount)
	case p.Mode == domain.PaymentModeCash:
		title, message = "Pay at the salon", fmt.Sprintf("Please pay %.2f€ in cash at your appointment.", p.Amount)
	}
	_, err := s.notify.Notify(ctx, userID, NotificationInput{
		Title:   title,
		Message: message,
		Type:    domain.NotificationPayment,
		Data:    &domain.NotificationData{PaymentID: domain.Int64(p.ID), AppointmentID: domain.Int64(p.AppointmentID)},
	})
	if err != nil {
		logger.WarnContext(ctx, "Failed to store notification", "payment_id", p.ID, "error", err)
	}
}
