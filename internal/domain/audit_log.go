package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditAction string

const (
	AuditInsert AuditAction = "INSERT"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
)

// AuditLog is an append-only change record. Rows are never updated or
// deleted after creation.
type AuditLog struct {
	ID        string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	Table     string      `json:"table_name" gorm:"column:table_name;size:50;not null;index"`
	RecordID  string      `json:"record_id" gorm:"type:varchar(36);not null;index"`
	Action    AuditAction `json:"action" gorm:"size:10;not null"`
	OldValues *string     `json:"old_values,omitempty" gorm:"type:text"`
	NewValues *string     `json:"new_values,omitempty" gorm:"type:text"`
	UserID    *string     `json:"user_id,omitempty" gorm:"type:varchar(36);index"`
	IPAddress *string     `json:"ip_address,omitempty" gorm:"size:45"`
	CreatedAt time.Time   `json:"created_at" gorm:"index"`
}

func (AuditLog) TableName() string { return "audit_log" }

func (a *AuditLog) BeforeCreate(_ *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
