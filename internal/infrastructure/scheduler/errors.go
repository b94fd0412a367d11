package scheduler

import "errors"

var (
	// ErrRunInProgress is returned when a run is requested while one is active
	ErrRunInProgress = errors.New("reorder run already in progress")

	// ErrInvalidConfig is returned when configuration is invalid
	ErrInvalidConfig = errors.New("invalid scheduler configuration")
)
