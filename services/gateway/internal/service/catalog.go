package service

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/diagnosis/salon-bookings/internal/domain"
	"github.com/diagnosis/salon-bookings/internal/utils"
	"github.com/diagnosis/salon-bookings/services/gateway/internal/repository"
)

// OpeningSlots are the bookable start times of every specialist's day.
var OpeningSlots = []string{"09:00", "10:00", "11:00", "14:00", "15:00", "16:00", "17:00"}

type CatalogService interface {
	ListServices(ctx context.Context) ([]domain.Service, error)
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	ListSpecialists(ctx context.Context) ([]domain.Specialist, error)
	GetSpecialist(ctx context.Context, id int64) (*domain.Specialist, error)
	// Availability lists the free opening slots of a specialist on date.
	Availability(ctx context.Context, specialistID int64, date string) ([]string, error)
	ListChats(ctx context.Context, userID int64, q string) ([]domain.Chat, error)
}

type catalogService struct {
	catalog      repository.CatalogRepository
	appointments repository.AppointmentRepository
}

func NewCatalogService(catalog repository.CatalogRepository, appointments repository.AppointmentRepository) CatalogService {
	return &catalogService{catalog: catalog, appointments: appointments}
}

func (s *catalogService) ListServices(ctx context.Context) ([]domain.Service, error) {
	return s.catalog.ListServices(ctx)
}

func (s *catalogService) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	svc, err := s.catalog.GetService(ctx, id)
	if err != nil {
		return nil, err
	}
	return &svc, nil
}

func (s *catalogService) ListSpecialists(ctx context.Context) ([]domain.Specialist, error) {
	return s.catalog.ListSpecialists(ctx)
}

func (s *catalogService) GetSpecialist(ctx context.Context, id int64) (*domain.Specialist, error) {
	sp, err := s.catalog.GetSpecialist(ctx, id)
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (s *catalogService) Availability(ctx context.Context, specialistID int64, date string) ([]string, error) {
	if _, err := time.Parse(domain.DateLayout, date); err != nil {
		return nil, invalid("date must be YYYY-MM-DD")
	}
	if _, err := s.catalog.GetSpecialist(ctx, specialistID); err != nil {
		return nil, err
	}
	booked, err := s.appointments.BookedTimes(ctx, specialistID, date)
	if err != nil {
		return nil, err
	}
	free := make([]string, 0, len(OpeningSlots))
	for _, slot := range OpeningSlots {
		if !slices.Contains(booked, slot) {
			free = append(free, slot)
		}
	}
	return free, nil
}

func (s *catalogService) ListChats(ctx context.Context, userID int64, q string) ([]domain.Chat, error) {
	chats, err := s.catalog.ListChats(ctx, userID)
	if err != nil || strings.TrimSpace(q) == "" {
		return chats, err
	}
	out := []domain.Chat{}
	for _, c := range chats {
		if utils.ContainsFold(c.Name, q) {
			out = append(out, c)
		}
	}
	return out, nil
}
