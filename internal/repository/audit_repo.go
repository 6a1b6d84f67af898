package repository

import (
	"context"

	"gorm.io/gorm"

	"stagegear/internal/domain"
)

type AuditLogRepository struct {
	db *gorm.DB
}

func NewAuditLogRepository(db *gorm.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

type AuditLogFilters struct {
	TableName string
	Action    domain.AuditAction
	UserID    string
	Limit     int
	Offset    int
}

func (r *AuditLogRepository) List(ctx context.Context, f AuditLogFilters) ([]domain.AuditLog, error) {
	q := r.db.WithContext(ctx).Model(&domain.AuditLog{})
	if f.TableName != "" {
		q = q.Where("table_name = ?", f.TableName)
	}
	if f.Action != "" {
		q = q.Where("action = ?", f.Action)
	}
	if f.UserID != "" {
		q = q.Where("user_id = ?", f.UserID)
	}
	var out []domain.AuditLog
	err := q.Order("created_at DESC").Limit(f.Limit).Offset(f.Offset).Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *AuditLogRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.AuditLog{}).Count(&n).Error
	return n, err
}

func (r *AuditLogRepository) CountGroupedByAction(ctx context.Context) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Select("action AS key, COUNT(id) AS count").
		Group("action").
		Find(&rows).Error
	return rows, err
}

func (r *AuditLogRepository) CountGroupedByTable(ctx context.Context) ([]GroupCount, error) {
	var rows []GroupCount
	err := r.db.WithContext(ctx).
		Model(&domain.AuditLog{}).
		Select("table_name AS key, COUNT(id) AS count").
		Group("table_name").
		Find(&rows).Error
	return rows, err
}
