package score

import "errors"

// Sentinel kinds for codec errors. These allow errors.Is/As from callers.
var (
	// ErrInvalidInput flags a negative metric/rate/count or an achievement
	// timestamp after the period end. Callers validate upstream; the codec
	// re-checks defensively.
	ErrInvalidInput = errors.New("invalid codec input")

	// ErrCountOverflow flags a rate-family trial count beyond the 16-bit
	// capacity.
	ErrCountOverflow = errors.New("trial count overflow")
)
