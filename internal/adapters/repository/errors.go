package repository

import "errors"

// Sentinel kinds for leaderboard errors.
var (
	ErrNotFound     = errors.New("pitcher not found")
	ErrInvalidLimit = errors.New("invalid leaderboard limit")
	ErrNoSnapshot   = errors.New("no leaderboard published")
)
