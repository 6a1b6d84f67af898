package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionType string

const (
	TransactionWithdrawal TransactionType = "withdrawal"
	TransactionReturn     TransactionType = "return"
)

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionConfirmed TransactionStatus = "confirmed"
	TransactionCompleted TransactionStatus = "completed"
	TransactionCancelled TransactionStatus = "cancelled"
)

// Transaction records a withdrawal or return of a single equipment item or a
// whole bag for an event.
type Transaction struct {
	ID            string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	EquipmentID   *string           `json:"equipment_id,omitempty" gorm:"type:varchar(36);index"`
	BagID         *string           `json:"bag_id,omitempty" gorm:"type:varchar(36);index"`
	EventID       string            `json:"event_id" gorm:"type:varchar(36);not null;index"`
	UserID        string            `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Type          TransactionType   `json:"transaction_type" gorm:"column:transaction_type;size:20;not null;index"`
	Status        TransactionStatus `json:"status" gorm:"size:20;not null;index;default:'pending'"`
	ScheduledDate time.Time         `json:"scheduled_date" gorm:"not null;index"`
	ActualDate    *time.Time        `json:"actual_date,omitempty" gorm:"index"`
	Notes         string            `json:"notes,omitempty" gorm:"type:text"`
	CreatedAt     time.Time         `json:"created_at"`
	UpdatedAt     time.Time         `json:"updated_at"`
}

func (Transaction) TableName() string { return "transactions" }

func (t *Transaction) BeforeCreate(_ *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}

// Snapshot serializes the full row for the audit trail. Enums and timestamps
// become their canonical string form; absent optional values stay nil.
func (t *Transaction) Snapshot() map[string]any {
	snap := map[string]any{
		"id":               t.ID,
		"equipment_id":     nil,
		"bag_id":           nil,
		"event_id":         t.EventID,
		"user_id":          t.UserID,
		"transaction_type": string(t.Type),
		"status":           string(t.Status),
		"scheduled_date":   t.ScheduledDate.Format(time.RFC3339),
		"actual_date":      nil,
		"notes":            t.Notes,
		"created_at":       t.CreatedAt.Format(time.RFC3339),
		"updated_at":       t.UpdatedAt.Format(time.RFC3339),
	}
	if t.EquipmentID != nil {
		snap["equipment_id"] = *t.EquipmentID
	}
	if t.BagID != nil {
		snap["bag_id"] = *t.BagID
	}
	if t.ActualDate != nil {
		snap["actual_date"] = t.ActualDate.Format(time.RFC3339)
	}
	return snap
}
