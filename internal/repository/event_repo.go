package repository

import (
	"context"

	"gorm.io/gorm"

	"stagegear/internal/domain"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EventRepository) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	var e domain.Event
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) GetByCode(ctx context.Context, code string) (*domain.Event, error) {
	var e domain.Event
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = LOWER(?)", code).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepository) List(ctx context.Context, status domain.EventStatus, limit, offset int) ([]domain.Event, error) {
	q := r.db.WithContext(ctx).Model(&domain.Event{})
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var events []domain.Event
	err := q.Order("start_date DESC").Limit(limit).Offset(offset).Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (r *EventRepository) Update(ctx context.Context, e *domain.Event) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EventRepository) UpdateStatus(ctx context.Context, id string, status domain.EventStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *EventRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("LOWER(code) = LOWER(?)", code).
		Count(&n).Error
	return n > 0, err
}

func (r *EventRepository) CountByStatus(ctx context.Context, status domain.EventStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Event{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
