package model

import "errors"

// Errors shared by the service and its transports.
var (
	ErrRefreshBusy  = errors.New("refresh queue full")
	ErrNotStarted   = errors.New("service not started")
	ErrNoThresholds = errors.New("qualification thresholds unavailable")
)
