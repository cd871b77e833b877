package balance

import "errors"

// Sentinel kinds for balancing errors. All of them are input validation
// failures detected before any algorithm runs.
var (
	ErrInvalidPlayerCount = errors.New("exactly 10 players are required")
	ErrDuplicatePlayer    = errors.New("duplicate player")
	ErrUnresolvedPlayer   = errors.New("unresolved player")
	ErrInvalidMode        = errors.New("invalid balance mode")
)
