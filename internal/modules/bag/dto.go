package bag

import "stagegear/internal/domain"

type CreateBagRequest struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// UpdateBagRequest patches a bag. Nil fields are left alone.
type UpdateBagRequest struct {
	Name        *string           `json:"name"`
	Description *string           `json:"description"`
	Status      *domain.BagStatus `json:"status"`
	IsActive    *bool             `json:"is_active"`
}

// View is a bag with its current member count, the shape every bag read
// endpoint returns.
type View struct {
	domain.Bag
	EquipmentCount int64 `json:"equipment_count"`
}
