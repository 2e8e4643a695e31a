package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/diagnosis/salon-bookings/internal/api"
	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/mock"
	"github.com/diagnosis/salon-bookings/internal/utils"
)

// CatalogService serves the salon's offering (haircut, colouring, ...).
type CatalogService interface {
	List(ctx context.Context) (Result[[]domain.Service], error)
	Get(ctx context.Context, id int64) (Result[*domain.Service], error)
}

type catalogService struct {
	base
	cache cache[domain.Service]
}

func NewCatalogService(api Requester, opts Options) CatalogService {
	return &catalogService{base: newBase(api, opts)}
}

func (s *catalogService) List(ctx context.Context) (Result[[]domain.Service], error) {
	var list []domain.Service
	if err := s.api.Get(ctx, "/services", nil, &list); err != nil {
		if !s.fallback(ctx, "services", err) {
			return Result[[]domain.Service]{}, fmt.Errorf("failed to list services: %w", err)
		}
		return demoResult(s.cache.seed(mock.Services())), nil
	}
	return remoteResult(s.cache.replace(list)), nil
}

func (s *catalogService) Get(ctx context.Context, id int64) (Result[*domain.Service], error) {
	var svc domain.Service
	err := s.api.Get(ctx, fmt.Sprintf("/services/%d", id), nil, &svc)
	switch {
	case err == nil:
		return remoteResult(&svc), nil
	case api.IsNotFound(err):
		return remoteResult[*domain.Service](nil), nil
	case !s.fallback(ctx, "service", err):
		return Result[*domain.Service]{}, fmt.Errorf("failed to get service %d: %w", id, err)
	}
	if m, ok := mock.ServiceByID(id); ok {
		return demoResult(&m), nil
	}
	return demoResult[*domain.Service](nil), nil
}

type SpecialistService interface {
	List(ctx context.Context) (Result[[]domain.Specialist], error)
	Get(ctx context.Context, id int64) (Result[*domain.Specialist], error)
	// Availability returns the free "HH:MM" slots on date (YYYY-MM-DD).
	Availability(ctx context.Context, id int64, date string) (Result[[]string], error)
}

type specialistService struct {
	base
	cache cache[domain.Specialist]
}

func NewSpecialistService(api Requester, opts Options) SpecialistService {
	return &specialistService{base: newBase(api, opts)}
}

func (s *specialistService) List(ctx context.Context) (Result[[]domain.Specialist], error) {
	var list []domain.Specialist
	if err := s.api.Get(ctx, "/specialists", nil, &list); err != nil {
		if !s.fallback(ctx, "specialists", err) {
			return Result[[]domain.Specialist]{}, fmt.Errorf("failed to list specialists: %w", err)
		}
		return demoResult(s.cache.seed(mock.Specialists())), nil
	}
	return remoteResult(s.cache.replace(list)), nil
}

func (s *specialistService) Get(ctx context.Context, id int64) (Result[*domain.Specialist], error) {
	var sp domain.Specialist
	err := s.api.Get(ctx, fmt.Sprintf("/specialists/%d", id), nil, &sp)
	switch {
	case err == nil:
		return remoteResult(&sp), nil
	case api.IsNotFound(err):
		return remoteResult[*domain.Specialist](nil), nil
	case !s.fallback(ctx, "specialist", err):
		return Result[*domain.Specialist]{}, fmt.Errorf("failed to get specialist %d: %w", id, err)
	}
	if m, ok := mock.SpecialistByID(id); ok {
		return demoResult(&m), nil
	}
	return demoResult[*domain.Specialist](nil), nil
}

func (s *specialistService) Availability(ctx context.Context, id int64, date string) (Result[[]string], error) {
	var slots []string
	q := domain.AvailabilityQuery{Date: date}
	if err := s.api.Get(ctx, fmt.Sprintf("/specialists/%d/availability", id), q, &slots); err != nil {
		if !s.fallback(ctx, "availability", err) {
			return Result[[]string]{}, fmt.Errorf("failed to load availability: %w", err)
		}
		return demoResult(mock.Availability()), nil
	}
	return remoteResult(slots), nil
}

type ChatService interface {
	List(ctx context.Context) (Result[[]domain.Chat], error)
	// Search filters the chat list by a case-insensitive name match.
	Search(ctx context.Context, q string) (Result[[]domain.Chat], error)
}

type chatService struct {
	base
	cache cache[domain.Chat]
}

func NewChatService(api Requester, opts Options) ChatService {
	return &chatService{base: newBase(api, opts)}
}

func (s *chatService) List(ctx context.Context) (Result[[]domain.Chat], error) {
	var list []domain.Chat
	if err := s.api.Get(ctx, "/chats", nil, &list); err != nil {
		if !s.fallback(ctx, "chats", err) {
			return Result[[]domain.Chat]{}, fmt.Errorf("failed to list chats: %w", err)
		}
		return demoResult(s.cache.seed(mock.Chats())), nil
	}
	return remoteResult(s.cache.replace(list)), nil
}

func (s *chatService) Search(ctx context.Context, q string) (Result[[]domain.Chat], error) {
	res, err := s.List(ctx)
	if err != nil {
		return res, err
	}
	if strings.TrimSpace(q) == "" {
		return res, nil
	}
	out := []domain.Chat{}
	for _, c := range res.Data {
		if utils.ContainsFold(c.Name, q) {
			out = append(out, c)
		}
	}
	res.Data = out
	return res, nil
}
