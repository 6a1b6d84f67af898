package event

import (
	"time"

	"stagegear/internal/domain"
)

type CreateEventRequest struct {
	Code        string    `json:"code" binding:"required"`
	Name        string    `json:"name" binding:"required"`
	Type        string    `json:"type" binding:"required"`
	Category    string    `json:"category"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
	Location    string    `json:"location"`
	Description string    `json:"description"`
}

// UpdateEventRequest patches an event. Nil fields are left alone.
type UpdateEventRequest struct {
	Name        *string             `json:"name"`
	Type        *string             `json:"type"`
	Category    *string             `json:"category"`
	Status      *domain.EventStatus `json:"status"`
	StartDate   *time.Time          `json:"start_date"`
	EndDate     *time.Time          `json:"end_date"`
	Location    *string             `json:"location"`
	Description *string             `json:"description"`
}
