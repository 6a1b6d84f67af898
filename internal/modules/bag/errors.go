package bag

import "errors"

var (
	ErrNotFound          = errors.New("bag not found")
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrDuplicateCode     = errors.New("bag code already registered")
	ErrExcluded          = errors.New("cannot add equipment to excluded bag")
	ErrInOtherBag        = errors.New("equipment already belongs to another bag")
	ErrAlreadyInBag      = errors.New("equipment already in this bag")
	ErrNotInBag          = errors.New("equipment does not belong to this bag")
)
