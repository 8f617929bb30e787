package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrBadPlayerID = errors.New("malformed player id")
)
