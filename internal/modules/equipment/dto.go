package equipment

import "stagegear/internal/domain"

type CreateEquipmentRequest struct {
	Code        string                    `json:"code" binding:"required"`
	Name        string                    `json:"name" binding:"required"`
	Category    string                    `json:"category" binding:"required"`
	Serial      *string                   `json:"serial"`
	QRCode      *string                   `json:"qr_code"`
	Condition   domain.EquipmentCondition `json:"condition"`
	Location    string                    `json:"location"`
	Description string                    `json:"description"`
	Image       string                    `json:"image"`
}

// UpdateEquipmentRequest patches an item. Nil fields are left alone. Code is
// immutable after creation; bag membership changes go through the bag routes.
type UpdateEquipmentRequest struct {
	Name        *string                    `json:"name"`
	Category    *string                    `json:"category"`
	Serial      *string                    `json:"serial"`
	QRCode      *string                    `json:"qr_code"`
	Status      *domain.EquipmentStatus    `json:"status"`
	Condition   *domain.EquipmentCondition `json:"condition"`
	Location    *string                    `json:"location"`
	Description *string                    `json:"description"`
	Image       *string                    `json:"image"`
}
