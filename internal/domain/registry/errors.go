package registry

import "errors"

// Sentinel kinds for registry errors.
var (
	// ErrModelUnavailable means a family's classifier could not be located or decoded.
	ErrModelUnavailable = errors.New("model unavailable")
	ErrBadArtifact      = errors.New("bad classifier artifact")
)
