package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted    = errors.New("service not started")
	ErrBackpressure  = errors.New("ingestion queue full")
	ErrMissingRiotID = errors.New("player has no riot id")
	ErrInvalidLimit  = errors.New("limit must be positive")
	ErrRiotDisabled  = errors.New("riot client not configured")
)
