package transaction

import (
	"time"

	"stagegear/internal/domain"
)

type CreateTransactionRequest struct {
	EquipmentID   *string                `json:"equipment_id"`
	BagID         *string                `json:"bag_id"`
	EventID       string                 `json:"event_id" binding:"required"`
	Type          domain.TransactionType `json:"transaction_type" binding:"required"`
	ScheduledDate time.Time              `json:"scheduled_date" binding:"required"`
	Notes         string                 `json:"notes"`
}

// UpdateTransactionRequest patches a transaction. Nil fields are left alone.
type UpdateTransactionRequest struct {
	Status        *domain.TransactionStatus `json:"status"`
	ScheduledDate *time.Time                `json:"scheduled_date"`
	ActualDate    *time.Time                `json:"actual_date"`
	Notes         *string                   `json:"notes"`
}
