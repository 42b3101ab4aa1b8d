package scoreboard

import "errors"

// Sentinel kinds for board errors.
var (
	ErrNotFound     = errors.New("member not found")
	ErrInvalidRange = errors.New("invalid rank range")
)
