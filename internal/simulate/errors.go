package simulate

import (
	"errors"
	"fmt"
)

// Sentinel kinds for simulation errors.
var (
	ErrInvalidConfig     = errors.New("invalid simulation config")
	ErrProcessingTimeout = errors.New("games not recorded in time")
	ErrVerification      = errors.New("balance verification failed")
)

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.Code, e.Body)
}
