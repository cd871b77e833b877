package model

import "errors"

// Sentinel kinds for model parsing errors.
var (
	ErrInvalidLane     = errors.New("invalid lane")
	ErrInvalidTier     = errors.New("invalid tier")
	ErrInvalidDivision = errors.New("invalid division")
	ErrInvalidSide     = errors.New("invalid side")
	ErrInvalidGame     = errors.New("invalid game")
)
