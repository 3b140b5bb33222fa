package service

import (
	"errors"

	"github.com/okian/pitchplus/internal/domain/model"
)

// Sentinel kinds for service errors.
var (
	ErrRefreshBusy  = model.ErrRefreshBusy
	ErrNotStarted   = model.ErrNotStarted
	ErrNoThresholds = model.ErrNoThresholds
	ErrNoPitchFeed  = errors.New("no pitch feed configured")
)
