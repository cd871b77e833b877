package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPlayerExists   = errors.New("player already exists")
	ErrGameExists     = errors.New("game already recorded")
	ErrInvalidPlayer  = errors.New("invalid player")
	ErrInvalidPath    = errors.New("invalid database path")
)
