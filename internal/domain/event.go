package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EventStatus string

const (
	EventPlanned    EventStatus = "planned"
	EventConfirmed  EventStatus = "confirmed"
	EventInProgress EventStatus = "in_progress"
	EventCompleted  EventStatus = "completed"
	EventCancelled  EventStatus = "cancelled"
)

// AcceptsReservations reports whether new reservations may target the event.
func (s EventStatus) AcceptsReservations() bool {
	return s == EventConfirmed || s == EventInProgress
}

// AcceptsTransactions reports whether withdrawals/returns may target the event.
func (s EventStatus) AcceptsTransactions() bool {
	return s == EventPlanned || s == EventConfirmed || s == EventInProgress
}

type Event struct {
	ID          string      `json:"id" gorm:"type:varchar(36);primaryKey"`
	Code        string      `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name        string      `json:"name" gorm:"size:255;not null"`
	Type        string      `json:"type" gorm:"size:50;not null"`
	Category    string      `json:"category,omitempty" gorm:"size:100"`
	Status      EventStatus `json:"status" gorm:"size:20;not null;index;default:'planned'"`
	StartDate   time.Time   `json:"start_date" gorm:"not null;index"`
	EndDate     time.Time   `json:"end_date" gorm:"not null;index"`
	OwnerID     *string     `json:"owner_id,omitempty" gorm:"type:varchar(36);index"`
	Location    string      `json:"location,omitempty" gorm:"size:255"`
	Description string      `json:"description,omitempty" gorm:"type:text"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}
