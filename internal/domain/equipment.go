package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EquipmentStatus string

const (
	EquipmentAvailable   EquipmentStatus = "available"
	EquipmentReserved    EquipmentStatus = "reserved"
	EquipmentInUse       EquipmentStatus = "in_use"
	EquipmentMaintenance EquipmentStatus = "maintenance"
	EquipmentExcluded    EquipmentStatus = "excluded"
)

type EquipmentCondition string

const (
	ConditionExcellent EquipmentCondition = "excellent"
	ConditionGood      EquipmentCondition = "good"
	ConditionFair      EquipmentCondition = "fair"
	ConditionPoor      EquipmentCondition = "poor"
	ConditionDamaged   EquipmentCondition = "damaged"
)

// Equipment is a single trackable asset. Serial and QRCode are nullable so
// the unique indexes only apply when a value is present.
type Equipment struct {
	ID          string             `json:"id" gorm:"type:varchar(36);primaryKey"`
	Code        string             `json:"code" gorm:"size:50;uniqueIndex;not null"`
	Name        string             `json:"name" gorm:"size:255;not null"`
	Category    string             `json:"category" gorm:"size:100;not null;index"`
	Serial      *string            `json:"serial,omitempty" gorm:"size:100;uniqueIndex"`
	QRCode      *string            `json:"qr_code,omitempty" gorm:"column:qr_code;size:100;uniqueIndex"`
	Status      EquipmentStatus    `json:"status" gorm:"size:20;not null;index;default:'available'"`
	Condition   EquipmentCondition `json:"condition" gorm:"size:20;not null;default:'good'"`
	BagID       *string            `json:"bag_id,omitempty" gorm:"type:varchar(36);index"`
	Location    string             `json:"location,omitempty" gorm:"size:255"`
	Description string             `json:"description,omitempty" gorm:"type:text"`
	Image       string             `json:"image,omitempty" gorm:"size:500"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func (Equipment) TableName() string { return "equipment" }

func (e *Equipment) BeforeCreate(_ *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// DetachesFromBag reports whether moving to the given status must clear
// bag membership (items under maintenance or excluded leave their bag).
func (s EquipmentStatus) DetachesFromBag() bool {
	return s == EquipmentMaintenance || s == EquipmentExcluded
}
