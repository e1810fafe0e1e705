package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound     = errors.New("match not found")
	ErrInvalidLimit = errors.New("invalid list limit")
	ErrEmptyMatchID = errors.New("empty match id")
	ErrStale        = errors.New("newer revision already stored")
)
