package repository

import (
	"context"

	"gorm.io/gorm"

	"stagegear/internal/domain"
)

type BagRepository struct {
	db *gorm.DB
}

func NewBagRepository(db *gorm.DB) *BagRepository {
	return &BagRepository{db: db}
}

func (r *BagRepository) WithTx(tx *gorm.DB) *BagRepository {
	return &BagRepository{db: tx}
}

func (r *BagRepository) Create(ctx context.Context, b *domain.Bag) error {
	return r.db.WithContext(ctx).Create(b).Error
}

func (r *BagRepository) GetByID(ctx context.Context, id string) (*domain.Bag, error) {
	var b domain.Bag
	if err := r.db.WithContext(ctx).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BagRepository) GetByIDLocked(ctx context.Context, id string) (*domain.Bag, error) {
	var b domain.Bag
	if err := forUpdate(r.db.WithContext(ctx)).First(&b, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BagRepository) GetByCode(ctx context.Context, code string) (*domain.Bag, error) {
	var b domain.Bag
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = LOWER(?)", code).
		First(&b).Error
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns bags filtered by status. Without a filter, excluded bags are
// hidden.
func (r *BagRepository) List(ctx context.Context, status domain.BagStatus, limit, offset int) ([]domain.Bag, error) {
	q := r.db.WithContext(ctx).Model(&domain.Bag{})
	if status != "" {
		q = q.Where("status = ?", status)
	} else {
		q = q.Where("status <> ?", domain.BagExcluded)
	}
	var bags []domain.Bag
	if err := q.Limit(limit).Offset(offset).Find(&bags).Error; err != nil {
		return nil, err
	}
	return bags, nil
}

func (r *BagRepository) Update(ctx context.Context, b *domain.Bag) error {
	return r.db.WithContext(ctx).Save(b).Error
}

func (r *BagRepository) UpdateStatus(ctx context.Context, id string, status domain.BagStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Bag{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *BagRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Bag{}).
		Where("LOWER(code) = LOWER(?)", code).
		Count(&n).Error
	return n > 0, err
}

// EquipmentCount counts the items currently inside the bag.
func (r *BagRepository) EquipmentCount(ctx context.Context, bagID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("bag_id = ?", bagID).
		Count(&n).Error
	return n, err
}
