// Package feeds fetches raw pitches, roster usage and qualification
// thresholds from their public sources.
package feeds

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

const defaultUserAgent = "Mozilla/5.0 (compatible; pitchplus/1.0)"

// client is the retrying HTTP getter shared by all feeds.
type client struct {
	name       string
	http       *http.Client
	newBackOff func() backoff.BackOff
	userAgent  string
	logger     logger.Logger
}

func newClient(name string, opts ...Option) *client {
	c := &client{
		name:      name,
		http:      &http.Client{Timeout: 60 * time.Second},
		userAgent: defaultUserAgent,
		newBackOff: func() backoff.BackOff {
			bo := backoff.NewExponentialBackOff()
			bo.MaxElapsedTime = 2 * time.Minute
			return bo
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = logger.Named("feeds." + name)
	return c
}

// retriable reports whether a status is worth another attempt.
func retriable(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// get fetches url and returns the body. 429, 5xx and transport errors are
// retried with backoff; any other non-200 status fails at once.
func (c *client) get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	attempt := 0
	operation := func() error {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("build request: %w", err))
		}
		req.Header.Set("User-Agent", c.userAgent)

		start := time.Now()
		resp, err := c.http.Do(req)
		if err != nil {
			metrics.RecordFeedRequest(c.name, "error", time.Since(start).Seconds())
			if ctx.Err() != nil {
				return backoff.Permanent(ctx.Err())
			}
			c.logger.Warn(ctx, "feed request failed", logger.Int("attempt", attempt), logger.Error(err))
			return fmt.Errorf("fetch %s: %w", c.name, err)
		}
		defer resp.Body.Close()
		metrics.RecordFeedRequest(c.name, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			err := fmt.Errorf("%w: %s: status %d: %s", ErrFeedStatus, c.name, resp.StatusCode, string(b))
			if retriable(resp.StatusCode) {
				c.logger.Warn(ctx, "feed status retriable", logger.Int("status", resp.StatusCode), logger.Int("attempt", attempt))
				return err
			}
			return backoff.Permanent(err)
		}
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read %s body: %w", c.name, err)
		}
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(c.newBackOff(), ctx)); err != nil {
		return nil, err
	}
	return body, nil
}
