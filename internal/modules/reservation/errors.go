package reservation

import "errors"

var (
	ErrNotFound          = errors.New("reservation not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrBagNotFound       = errors.New("bag not found")

	// invariant violations
	ErrResourceExclusive = errors.New("exactly one of equipment_id or bag_id must be provided")
	ErrInvalidWindow     = errors.New("end_date must be greater than or equal to start_date")

	// precondition failures
	ErrEventNotAccepting    = errors.New("event must be confirmed or in progress to accept reservations")
	ErrEquipmentInBag       = errors.New("equipment belongs to a bag and cannot be reserved individually")
	ErrEquipmentUnavailable = errors.New("equipment is not available for reservation")
	ErrBagInactive          = errors.New("bag is not active")
	ErrBagUnavailable       = errors.New("bag is not available for reservation")
	ErrNotActive            = errors.New("only active reservations can be cancelled")

	ErrConflict = errors.New("conflicting reservation exists for the specified dates")
)
