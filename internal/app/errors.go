package service

import "errors"

// Sentinel errors returned by the service.
var (
	// ErrMissingPriorDay is returned when the snapshot of the previous day is
	// missing while an older one exists. Rating from the older snapshot would
	// silently change every later result.
	ErrMissingPriorDay = errors.New("prior day snapshot missing")
	ErrInvalidRange    = errors.New("invalid date range")
	ErrInvalidLimit    = errors.New("invalid limit")
	ErrLimitExceeded   = errors.New("limit exceeded")
	ErrPlayerNotFound  = errors.New("player not found")
)
