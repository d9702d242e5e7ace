package property

import "errors"

var (
	ErrUnsupportedRecord = errors.New("unsupported record type")
	ErrUnknownProperty   = errors.New("unknown property")
	ErrNotAddressable    = errors.New("record is not addressable")
	ErrTypeMismatch      = errors.New("value type does not match property")
)
