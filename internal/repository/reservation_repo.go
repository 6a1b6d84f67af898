package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"stagegear/internal/domain"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

func (r *ReservationRepository) WithTx(tx *gorm.DB) *ReservationRepository {
	return &ReservationRepository{db: tx}
}

type ReservationFilters struct {
	Status  domain.ReservationStatus
	EventID string
	Limit   int
	Offset  int
}

func (r *ReservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithContext(ctx).Create(res).Error
}

func (r *ReservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := r.db.WithContext(ctx).First(&res, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &res, nil
}

func (r *ReservationRepository) List(ctx context.Context, f ReservationFilters) ([]domain.Reservation, error) {
	q := r.db.WithContext(ctx).Model(&domain.Reservation{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.EventID != "" {
		q = q.Where("event_id = ?", f.EventID)
	}
	var out []domain.Reservation
	err := q.Order("start_date DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ReservationRepository) Update(ctx context.Context, res *domain.Reservation) error {
	return r.db.WithContext(ctx).Save(res).Error
}

// HasConflict reports whether an active reservation for the same resource
// overlaps [start, end). The overlap test is half-open: a reservation ending
// exactly when another starts does not conflict. excludeID, when non-empty,
// skips that reservation (used when re-checking an update in place).
func (r *ReservationRepository) HasConflict(ctx context.Context, equipmentID, bagID *string, start, end time.Time, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&domain.Reservation{}).
		Where("status = ?", domain.ReservationActive).
		Where("start_date < ? AND end_date > ?", end, start)

	switch {
	case equipmentID != nil:
		q = q.Where("equipment_id = ?", *equipmentID)
	case bagID != nil:
		q = q.Where("bag_id = ?", *bagID)
	default:
		return false, nil
	}

	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}

	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}
