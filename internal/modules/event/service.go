package event

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"stagegear/internal/domain"
	"stagegear/internal/repository"
)

type Service struct {
	events *repository.EventRepository
	log    *zap.Logger
}

func NewService(events *repository.EventRepository, log *zap.Logger) *Service {
	return &Service{events: events, log: log}
}

func (s *Service) List(ctx context.Context, status domain.EventStatus, limit, offset int) ([]domain.Event, error) {
	return s.events.List(ctx, status, limit, offset)
}

func (s *Service) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return e, err
}

func (s *Service) GetByCode(ctx context.Context, code string) (*domain.Event, error) {
	e, err := s.events.GetByCode(ctx, code)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	return e, err
}

func (s *Service) Create(ctx context.Context, req CreateEventRequest, ownerID string) (*domain.Event, error) {
	if req.EndDate.Before(req.StartDate) {
		return nil, ErrInvalidWindow
	}

	exists, err := s.events.CodeExists(ctx, req.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateCode
	}

	e := &domain.Event{
		Code:        req.Code,
		Name:        req.Name,
		Type:        req.Type,
		Category:    req.Category,
		Status:      domain.EventPlanned,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		OwnerID:     &ownerID,
		Location:    req.Location,
		Description: req.Description,
	}
	if err := s.events.Create(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info("event created", zap.String("event_id", e.ID), zap.String("code", e.Code))
	return e, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateEventRequest) (*domain.Event, error) {
	e, err := s.events.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Type != nil {
		e.Type = *req.Type
	}
	if req.Category != nil {
		e.Category = *req.Category
	}
	if req.Status != nil {
		e.Status = *req.Status
	}
	if req.StartDate != nil {
		e.StartDate = *req.StartDate
	}
	if req.EndDate != nil {
		e.EndDate = *req.EndDate
	}
	if req.Location != nil {
		e.Location = *req.Location
	}
	if req.Description != nil {
		e.Description = *req.Description
	}

	if e.EndDate.Before(e.StartDate) {
		return nil, ErrInvalidWindow
	}

	if err := s.events.Update(ctx, e); err != nil {
		return nil, err
	}

	s.log.Info("event updated", zap.String("event_id", e.ID))
	return e, nil
}

// Delete is a soft delete: the event is cancelled, its history stays.
func (s *Service) Delete(ctx context.Context, id string) error {
	e, err := s.events.GetByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if err := s.events.UpdateStatus(ctx, e.ID, domain.EventCancelled); err != nil {
		return err
	}

	s.log.Info("event cancelled", zap.String("event_id", e.ID))
	return nil
}
