package repository

import "errors"

// Sentinel kinds for timeline store errors.
var (
	ErrNotFound     = errors.New("game not found")
	ErrAlreadySaved = errors.New("game already saved")
)
