package riot

import "errors"

// Sentinel kinds for Riot API errors.
var (
	ErrNoAPIKey    = errors.New("riot api key not configured")
	ErrNotFound    = errors.New("riot resource not found")
	ErrRateLimited = errors.New("riot api rate limited")
	ErrUpstream    = errors.New("riot api error")
)
