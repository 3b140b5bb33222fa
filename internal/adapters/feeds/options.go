package feeds

import (
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Option configures a feed client.
type Option func(*client)

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *client) {
		if c != nil {
			cl.http = c
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *client) {
		if d > 0 {
			cl.http = &http.Client{Timeout: d}
		}
	}
}

// WithBackOff sets the retry policy factory. A fresh policy is built per request.
func WithBackOff(f func() backoff.BackOff) Option {
	return func(cl *client) {
		if f != nil {
			cl.newBackOff = f
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(cl *client) {
		cl.userAgent = ua
	}
}
