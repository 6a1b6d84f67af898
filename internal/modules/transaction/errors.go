package transaction

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("transaction not found")
	ErrEventNotFound     = errors.New("event not found")
	ErrEquipmentNotFound = errors.New("equipment not found")
	ErrBagNotFound       = errors.New("bag not found")

	ErrResourceExclusive = errors.New("exactly one of equipment_id or bag_id must be provided")
	ErrInvalidType       = errors.New("transaction_type must be withdrawal or return")

	ErrEventNotAccepting = errors.New("event must be planned, confirmed or in progress for transactions")
	ErrEquipmentNotInUse = errors.New("equipment is not currently in use")
	ErrAlreadyCompleted  = errors.New("cannot cancel a completed transaction")
)

// InUseError rejects a withdrawal because the resource is held elsewhere. The
// holding event, when it can be determined from the latest withdrawal, is
// named in the message.
type InUseError struct {
	Resource  string
	Status    string
	EventName string
}

func (e *InUseError) Error() string {
	if e.EventName != "" {
		return fmt.Sprintf("%s is already in use by event %q (current status: %s)", e.Resource, e.EventName, e.Status)
	}
	return fmt.Sprintf("%s is already in use by another event (current status: %s)", e.Resource, e.Status)
}
