package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type BagStatus string

const (
	BagAvailable BagStatus = "available"
	BagReserved  BagStatus = "reserved"
	BagInUse     BagStatus = "in_use"
	BagExcluded  BagStatus = "excluded"
)

// Bag groups equipment items that are reserved and withdrawn as a unit.
type Bag struct {
	ID          string    `json:"id" gorm:"type:varchar(36);primaryKey"`
	Code        string    `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Status      BagStatus `json:"status" gorm:"size:20;not null;index;default:'available'"`
	IsActive    bool      `json:"is_active" gorm:"not null;default:true"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Bag) TableName() string { return "bags" }

func (b *Bag) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}
