package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	// ErrBadPrediction means a classifier returned output the scorer cannot use.
	ErrBadPrediction = errors.New("bad classifier prediction")
)
