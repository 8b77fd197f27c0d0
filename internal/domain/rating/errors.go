package rating

import "errors"

// Sentinel kinds for rating errors.
var (
	ErrInvalidInput  = errors.New("invalid rating input")
	ErrInvalidRecord = errors.New("invalid rating record")
	ErrOutOfOrder    = errors.New("day computed out of order")
)
