package model

import "time"

// RefreshJob asks the service to rebuild the leaderboard for a date range.
type RefreshJob struct {
	ID          string    // uuid, returned to the caller
	Start       time.Time // first game date, inclusive
	End         time.Time // last game date, inclusive
	RequestedAt time.Time
}
