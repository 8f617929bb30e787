package shift

import "errors"

// Sentinel kinds for shift parsing errors.
var (
	ErrBadClock = errors.New("malformed clock value")
)
