package event

import "errors"

var (
	ErrNotFound      = errors.New("event not found")
	ErrDuplicateCode = errors.New("event code already registered")
	ErrInvalidWindow = errors.New("end_date must not be before start_date")
)
