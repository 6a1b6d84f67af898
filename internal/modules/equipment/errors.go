package equipment

import "errors"

var (
	ErrNotFound        = errors.New("equipment not found")
	ErrDuplicateCode   = errors.New("equipment code already registered")
	ErrDuplicateSerial = errors.New("serial number already registered")
	ErrDuplicateQRCode = errors.New("qr code already registered")
)
