package features

import "errors"

// Sentinel kinds for feature building errors.
var (
	// ErrMalformedInput marks a pitch table the builder cannot interpret.
	ErrMalformedInput = errors.New("malformed pitch input")
)
