package repository

import (
	"context"

	"gorm.io/gorm"

	"stagegear/internal/domain"
)

type EquipmentRepository struct {
	db *gorm.DB
}

func NewEquipmentRepository(db *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: db}
}

func (r *EquipmentRepository) WithTx(tx *gorm.DB) *EquipmentRepository {
	return &EquipmentRepository{db: tx}
}

type EquipmentFilters struct {
	Category string
	Status   domain.EquipmentStatus
	Limit    int
	Offset   int
}

func (r *EquipmentRepository) Create(ctx context.Context, e *domain.Equipment) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *EquipmentRepository) GetByID(ctx context.Context, id string) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByIDLocked fetches the row under a FOR UPDATE lock on PostgreSQL.
// Lifecycle flows use it for the check-then-write sequence.
func (r *EquipmentRepository) GetByIDLocked(ctx context.Context, id string) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := forUpdate(r.db.WithContext(ctx)).First(&e, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByCode is case-insensitive, matching how codes are scanned in the field.
func (r *EquipmentRepository) GetByCode(ctx context.Context, code string) (*domain.Equipment, error) {
	var e domain.Equipment
	err := r.db.WithContext(ctx).
		Where("LOWER(code) = LOWER(?)", code).
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentRepository) GetByQRCode(ctx context.Context, qr string) (*domain.Equipment, error) {
	var e domain.Equipment
	if err := r.db.WithContext(ctx).First(&e, "qr_code = ?", qr).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentRepository) List(ctx context.Context, f EquipmentFilters) ([]domain.Equipment, error) {
	q := r.db.WithContext(ctx).Model(&domain.Equipment{})
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var items []domain.Equipment
	if err := q.Limit(f.Limit).Offset(f.Offset).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByBag returns every item currently owned by the bag, explicitly by
// bag_id rather than by relationship traversal.
func (r *EquipmentRepository) ListByBag(ctx context.Context, bagID string) ([]domain.Equipment, error) {
	var items []domain.Equipment
	if err := r.db.WithContext(ctx).Where("bag_id = ?", bagID).Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *EquipmentRepository) Update(ctx context.Context, e *domain.Equipment) error {
	return r.db.WithContext(ctx).Save(e).Error
}

func (r *EquipmentRepository) UpdateStatus(ctx context.Context, id string, status domain.EquipmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// UpdateStatusByBag sets the status of every member of the bag in one batch.
func (r *EquipmentRepository) UpdateStatusByBag(ctx context.Context, bagID string, status domain.EquipmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("bag_id = ?", bagID).
		Update("status", status).Error
}

// UpdateStatusByBagFrom is the conditional variant: only members currently in
// one of the given statuses move.
func (r *EquipmentRepository) UpdateStatusByBagFrom(ctx context.Context, bagID string, from []domain.EquipmentStatus, status domain.EquipmentStatus) error {
	return r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("bag_id = ? AND status IN ?", bagID, from).
		Update("status", status).Error
}

// ClearBag detaches the item from its bag.
func (r *EquipmentRepository) ClearBag(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("id = ?", id).
		Update("bag_id", nil).Error
}

func (r *EquipmentRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, "LOWER(code) = LOWER(?)", code)
}

func (r *EquipmentRepository) SerialExists(ctx context.Context, serial string) (bool, error) {
	return r.exists(ctx, "serial = ?", serial)
}

func (r *EquipmentRepository) QRCodeExists(ctx context.Context, qr string) (bool, error) {
	return r.exists(ctx, "qr_code = ?", qr)
}

func (r *EquipmentRepository) exists(ctx context.Context, cond string, arg any) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where(cond, arg).
		Count(&n).Error
	return n > 0, err
}

func (r *EquipmentRepository) CountByStatus(ctx context.Context, status domain.EquipmentStatus) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Where("status = ?", status).
		Count(&n).Error
	return n, err
}

func (r *EquipmentRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Equipment{}).Count(&n).Error
	return n, err
}

type GroupCount struct {
	Key   string `gorm:"column:key"`
	Count int64  `gorm:"column:count"`
}

// CountGroupedBy groups equipment rows by the given column (category or
// status) for usage reports.
func (r *EquipmentRepository) CountGroupedBy(ctx context.Context, column string) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.WithContext(ctx).
		Model(&domain.Equipment{}).
		Select(column + " AS key, COUNT(id) AS count").
		Group(column).
		Find(&rows).Error
	return rows, err
}
