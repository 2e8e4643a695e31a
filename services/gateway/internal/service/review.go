package service

import (
	"context"
	"errors"
	"strings"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/pkg/events"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
)

type ReviewService interface {
	List(ctx context.Context) ([]domain.Review, error)
	ListForSpecialist(ctx context.Context, specialistID int64) ([]domain.Review, error)
	// Create reviews one of the caller's appointments, at most once.
	Create(ctx context.Context, userID int64, req domain.ReviewRequest) (*domain.Review, error)
}

type reviewService struct {
	store repository.Store
	bus   events.Publisher
	clock Clock
}

func NewReviewService(store repository.Store, bus events.Publisher, clock Clock) ReviewService {
	return &reviewService{store: store, bus: bus, clock: clock}
}

func (s *reviewService) List(ctx context.Context) ([]domain.Review, error) {
	return s.store.ListReviews(ctx)
}

func (s *reviewService) ListForSpecialist(ctx context.Context, specialistID int64) ([]domain.Review, error) {
	if _, err := s.store.GetSpecialist(ctx, specialistID); err != nil {
		return nil, err
	}
	return s.store.ListReviewsForSpecialist(ctx, specialistID)
}

func (s *reviewService) Create(ctx context.Context, userID int64, req domain.ReviewRequest) (*domain.Review, error) {
	if !req.ValidRating() {
		return nil, invalid("rating must be between %d and %d", domain.MinRating, domain.MaxRating)
	}
	a, err := s.store.GetAppointment(ctx, userID, req.AppointmentID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.ReviewForAppointment(ctx, a.ID); err == nil {
		return nil, ErrAlreadyReviewed
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	client, err := s.store.FindUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	r, err := s.store.CreateReview(ctx, domain.Review{
		Rating:        req.Rating,
		Comment:       strings.TrimSpace(req.Comment),
		Date:          s.clock.today(),
		Client:        client.Person(),
		Specialist:    a.Specialist.Person(),
		AppointmentID: a.ID,
	})
	if err != nil {
		return nil, err
	}
	publish(ctx, s.bus, events.ReviewCreated, events.ReviewCreatedEvent{ReviewID: r.ID, SpecialistID: a.Specialist.ID, Rating: r.Rating})
	return &r, nil
}
