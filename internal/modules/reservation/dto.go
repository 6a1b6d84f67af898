package reservation

import (
	"time"

	"stagegear/internal/domain"
)

type CreateReservationRequest struct {
	EquipmentID *string   `json:"equipment_id"`
	BagID       *string   `json:"bag_id"`
	EventID     string    `json:"event_id" binding:"required"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// UpdateReservationRequest patches a reservation. Nil fields are left alone.
type UpdateReservationRequest struct {
	StartDate *time.Time                `json:"start_date"`
	EndDate   *time.Time                `json:"end_date"`
	Status    *domain.ReservationStatus `json:"status"`
}
