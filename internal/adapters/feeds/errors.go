package feeds

import "errors"

// Sentinel errors for external feeds.
var (
	// ErrFeedStatus means the remote answered with a non-success status.
	ErrFeedStatus = errors.New("feed returned unexpected status")
	// ErrBadFeed means the payload could not be parsed.
	ErrBadFeed = errors.New("malformed feed payload")
)
