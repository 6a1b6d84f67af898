package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReservationStatus string

const (
	ReservationActive    ReservationStatus = "active"
	ReservationCompleted ReservationStatus = "completed"
	ReservationCancelled ReservationStatus = "cancelled"
)

// Reservation holds exactly one of EquipmentID or BagID for a time window.
type Reservation struct {
	ID          string            `json:"id" gorm:"type:varchar(36);primaryKey"`
	EquipmentID *string           `json:"equipment_id,omitempty" gorm:"type:varchar(36);index"`
	BagID       *string           `json:"bag_id,omitempty" gorm:"type:varchar(36);index"`
	EventID     string            `json:"event_id" gorm:"type:varchar(36);not null;index"`
	ReservedBy  string            `json:"reserved_by" gorm:"type:varchar(36);not null;index"`
	StartDate   time.Time         `json:"start_date" gorm:"not null;index"`
	EndDate     time.Time         `json:"end_date" gorm:"not null;index"`
	Status      ReservationStatus `json:"status" gorm:"size:20;not null;index;default:'active'"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

func (Reservation) TableName() string { return "reservations" }

func (r *Reservation) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}

// ExactlyOneResource validates the equipment-or-bag exclusive-or rule shared
// by reservations and transactions.
func ExactlyOneResource(equipmentID, bagID *string) bool {
	return (equipmentID != nil) != (bagID != nil)
}
