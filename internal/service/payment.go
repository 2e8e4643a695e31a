package service

import (
	"context"
	"fmt"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
	"github.com/diagnosis/salon-bookings/pkg/logger"
)

type PaymentService interface {
	ListMethods(ctx context.Context) (Result[[]domain.PaymentMethod], error)
	AddMethod(ctx context.Context, req domain.AddCardRequest) (Result[domain.PaymentMethod], error)
	DeleteMethod(ctx context.Context, id int64) error
	SetDefault(ctx context.Context, id int64) (Result[[]domain.PaymentMethod], error)
	Process(ctx context.Context, req domain.PaymentRequest) (Result[domain.Payment], error)
	// GetPayment returns a payment processed in this session, or nil.
	GetPayment(ctx context.Context, id int64) (*domain.Payment, error)
}

type paymentService struct {
	base
	methods  cache[domain.PaymentMethod]
	payments cache[domain.Payment]
}

func NewPaymentService(api Requester, opts Options) PaymentService {
	return &paymentService{base: newBase(api, opts)}
}

func (s *paymentService) ListMethods(ctx context.Context) (Result[[]domain.PaymentMethod], error) {
	var list []domain.PaymentMethod
	if err := s.api.Get(ctx, "/payment-methods", nil, &list); err != nil {
		if !s.fallback(ctx, "payment-methods", err) {
			return Result[[]domain.PaymentMethod]{}, fmt.Errorf("failed to list payment methods: %w", err)
		}
		return demoResult(s.methods.seed(mock.PaymentMethods())), nil
	}
	return remoteResult(s.methods.replace(list)), nil
}

// AddMethod stores a new card. It becomes the default only when the list
// was empty before the add.
func (s *paymentService) AddMethod(ctx context.Context, req domain.AddCardRequest) (Result[domain.PaymentMethod], error) {
	if !req.Complete() {
		return Result[domain.PaymentMethod]{}, ErrMissingCardDetails
	}
	if !s.methods.isLoaded() {
		if _, err := s.ListMethods(ctx); err != nil {
			return Result[domain.PaymentMethod]{}, err
		}
	}

	var created domain.PaymentMethod
	if err := s.api.Post(ctx, "/payment-methods", req, &created); err != nil {
		simulate, werr := s.writeFailed(ctx, "add payment method", err)
		if !simulate {
			return Result[domain.PaymentMethod]{}, werr
		}
		created = domain.NewCardMethod(s.nextMethodID(), req, s.methods.len())
		s.methods.append(created)
		return demoResult(created), nil
	}

	s.methods.apply(func(list []domain.PaymentMethod) []domain.PaymentMethod {
		list = append(list, created)
		if created.IsDefault {
			list = domain.SetDefault(list, created.ID)
		}
		return list
	})
	logger.InfoContext(ctx, "Payment method added", "method_id", created.ID, "is_default", created.IsDefault)
	return remoteResult(created), nil
}

func (s *paymentService) DeleteMethod(ctx context.Context, id int64) error {
	if err := s.api.Delete(ctx, fmt.Sprintf("/payment-methods/%d", id)); err != nil {
		simulate, werr := s.writeFailed(ctx, "delete payment method", err)
		if !simulate {
			return werr
		}
		s.methods.seed(mock.PaymentMethods())
	}
	s.methods.filter(func(m domain.PaymentMethod) bool { return m.ID != id })
	logger.InfoContext(ctx, "Payment method deleted", "method_id", id)
	return nil
}

// SetDefault leaves exactly one default method, applied in one cache mutation.
func (s *paymentService) SetDefault(ctx context.Context, id int64) (Result[[]domain.PaymentMethod], error) {
	if !s.methods.isLoaded() {
		if _, err := s.ListMethods(ctx); err != nil {
			return Result[[]domain.PaymentMethod]{}, err
		}
	}
	src := SourceRemote
	if err := s.api.Post(ctx, fmt.Sprintf("/payment-methods/%d/default", id), nil, nil); err != nil {
		simulate, werr := s.writeFailed(ctx, "set default payment method", err)
		if !simulate {
			return Result[[]domain.PaymentMethod]{}, werr
		}
		s.methods.seed(mock.PaymentMethods())
		src = SourceDemo
	}
	s.methods.apply(func(list []domain.PaymentMethod) []domain.PaymentMethod {
		return domain.SetDefault(list, id)
	})
	list, _ := s.methods.snapshot()
	return Result[[]domain.PaymentMethod]{Data: list, Source: src}, nil
}

func (s *paymentService) Process(ctx context.Context, req domain.PaymentRequest) (Result[domain.Payment], error) {
	if _, ok := domain.ParsePaymentMode(string(req.Mode)); !ok || req.Amount <= 0 || req.AppointmentID == 0 {
		return Result[domain.Payment]{}, ErrInvalidPayment
	}
	if req.Mode == domain.PaymentModeCash {
		req.CardID = 0
	}

	var p domain.Payment
	if err := s.api.Post(ctx, "/payments", req, &p); err != nil {
		simulate, werr := s.writeFailed(ctx, "process payment", err)
		if !simulate {
			return Result[domain.Payment]{}, werr
		}
		p = domain.Payment{
			ID:            s.now().UnixMilli(),
			Amount:        req.Amount,
			Mode:          req.Mode,
			Status:        domain.PaymentCompleted,
			Date:          s.today(),
			AppointmentID: req.AppointmentID,
		}
		s.payments.append(p)
		return demoResult(p), nil
	}

	s.payments.append(p)
	logger.InfoContext(ctx, "Payment processed", "payment_id", p.ID, "status", p.Status, "mode", p.Mode)
	return remoteResult(p), nil
}

func (s *paymentService) GetPayment(_ context.Context, id int64) (*domain.Payment, error) {
	p, ok := s.payments.find(func(p domain.Payment) bool { return p.ID == id })
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (s *paymentService) nextMethodID() int64 {
	list, _ := s.methods.snapshot()
	var next int64 = 1
	for _, m := range list {
		if m.ID >= next {
			next = m.ID + 1
		}
	}
	return next
}
