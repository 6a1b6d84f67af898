package repository

import (
	"context"

	"gorm.io/gorm"

	"stagegear/internal/domain"
)

type TransactionRepository struct {
	db *gorm.DB
}

func NewTransactionRepository(db *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) WithTx(tx *gorm.DB) *TransactionRepository {
	return &TransactionRepository{db: tx}
}

type TransactionFilters struct {
	Type   domain.TransactionType
	Status domain.TransactionStatus
	Limit  int
	Offset int
}

func (r *TransactionRepository) Create(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var t domain.Transaction
	if err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) List(ctx context.Context, f TransactionFilters) ([]domain.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&domain.Transaction{})
	if f.Type != "" {
		q = q.Where("transaction_type = ?", f.Type)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []domain.Transaction
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *TransactionRepository) Update(ctx context.Context, t *domain.Transaction) error {
	return r.db.WithContext(ctx).Save(t).Error
}

// CountByEventAndType counts an event's withdrawals or returns, used by the
// event completion rule.
func (r *TransactionRepository) CountByEventAndType(ctx context.Context, eventID string, typ domain.TransactionType) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("event_id = ? AND transaction_type = ?", eventID, typ).
		Count(&n).Error
	return n, err
}

// LatestWithdrawalForEquipment finds the most recent withdrawal touching the
// item, used to name the event currently holding it.
func (r *TransactionRepository) LatestWithdrawalForEquipment(ctx context.Context, equipmentID string) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.WithContext(ctx).
		Where("equipment_id = ? AND transaction_type = ?", equipmentID, domain.TransactionWithdrawal).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) LatestWithdrawalForBag(ctx context.Context, bagID string) (*domain.Transaction, error) {
	var t domain.Transaction
	err := r.db.WithContext(ctx).
		Where("bag_id = ? AND transaction_type = ?", bagID, domain.TransactionWithdrawal).
		Order("created_at DESC").
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TransactionRepository) CountByStatus(ctx context.Context, status domain.TransactionStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}
