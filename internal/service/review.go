package service

import (
	"context"
	"fmt"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
	"github.com/diagnosis/salon-bookings/pkg/logger"
)

type ReviewService interface {
	List(ctx context.Context) (Result[[]domain.Review], error)
	ListForSpecialist(ctx context.Context, specialistID int64) (Result[[]domain.Review], error)
	Get(ctx context.Context, id int64) (Result[*domain.Review], error)
	Add(ctx context.Context, req domain.ReviewRequest) (Result[domain.Review], error)
}

type reviewService struct {
	base
	cache cache[domain.Review]
	user  func(ctx context.Context) (*domain.User, error)
}

// NewReviewService takes the current-user lookup used to attribute reviews
// written in demo mode.
func NewReviewService(api Requester, currentUser func(ctx context.Context) (*domain.User, error), opts Options) ReviewService {
	return &reviewService{base: newBase(api, opts), user: currentUser}
}

func (s *reviewService) List(ctx context.Context) (Result[[]domain.Review], error) {
	var list []domain.Review
	if err := s.api.Get(ctx, "/reviews", nil, &list); err != nil {
		if !s.fallback(ctx, "reviews", err) {
			return Result[[]domain.Review]{}, fmt.Errorf("failed to list reviews: %w", err)
		}
		return demoResult(s.cache.seed(mock.Reviews())), nil
	}
	return remoteResult(s.cache.replace(list)), nil
}

func (s *reviewService) ListForSpecialist(ctx context.Context, specialistID int64) (Result[[]domain.Review], error) {
	var list []domain.Review
	if err := s.api.Get(ctx, fmt.Sprintf("/specialists/%d/reviews", specialistID), nil, &list); err != nil {
		if !s.fallback(ctx, "specialist reviews", err) {
			return Result[[]domain.Review]{}, fmt.Errorf("failed to list reviews for specialist %d: %w", specialistID, err)
		}
		all := s.cache.seed(mock.Reviews())
		out := []domain.Review{}
		for _, r := range all {
			if r.Specialist.ID == specialistID {
				out = append(out, r)
			}
		}
		return demoResult(out), nil
	}
	return remoteResult(list), nil
}

func (s *reviewService) Get(ctx context.Context, id int64) (Result[*domain.Review], error) {
	if !s.cache.isLoaded() {
		if _, err := s.List(ctx); err != nil {
			return Result[*domain.Review]{}, err
		}
	}
	src := s.cache.source()
	r, ok := s.cache.find(func(r domain.Review) bool { return r.ID == id })
	if !ok {
		return Result[*domain.Review]{Source: src}, nil
	}
	return Result[*domain.Review]{Data: &r, Source: src}, nil
}

func (s *reviewService) Add(ctx context.Context, req domain.ReviewRequest) (Result[domain.Review], error) {
	if !req.ValidRating() {
		return Result[domain.Review]{}, ErrInvalidRating
	}

	var created domain.Review
	if err := s.api.Post(ctx, "/reviews", req, &created); err != nil {
		simulate, werr := s.writeFailed(ctx, "add review", err)
		if !simulate {
			return Result[domain.Review]{}, werr
		}
		created, err = s.localReview(ctx, req)
		if err != nil {
			return Result[domain.Review]{}, err
		}
		s.cache.seed(mock.Reviews())
		s.cache.append(created)
		return demoResult(created), nil
	}

	s.cache.append(created)
	logger.InfoContext(ctx, "Review added", "review_id", created.ID, "rating", created.Rating)
	return remoteResult(created), nil
}

func (s *reviewService) localReview(ctx context.Context, req domain.ReviewRequest) (domain.Review, error) {
	client := mock.DemoUser().Person()
	if s.user != nil {
		u, err := s.user(ctx)
		if err != nil {
			return domain.Review{}, err
		}
		if u != nil {
			client = u.Person()
		}
	}

	var specialist domain.Person
	for _, a := range mock.Appointments() {
		if a.ID == req.AppointmentID {
			specialist = a.Specialist.Person()
		}
	}

	items, _ := s.cache.snapshot()
	if len(items) == 0 {
		items = mock.Reviews()
	}
	var next int64 = 1
	for _, r := range items {
		if r.ID >= next {
			next = r.ID + 1
		}
	}

	return domain.Review{
		ID:            next,
		Rating:        req.Rating,
		Comment:       req.Comment,
		Date:          s.today(),
		Client:        client,
		Specialist:    specialist,
		AppointmentID: req.AppointmentID,
	}, nil
}
