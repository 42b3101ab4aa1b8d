package period

import "errors"

// Sentinel kinds for calendar errors.
var (
	ErrUnknownZone = errors.New("unknown time zone")
)
