// Package queue holds pending leaderboard refresh jobs.
package queue

import (
	"context"
	"sync"

	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/metrics"
)

const defaultQueueCapacity = 4

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a job. Returns false if the queue is full or closed.
	Enqueue(ctx context.Context, job model.RefreshJob) bool

	// Dequeue returns a channel that receives jobs in enqueue order. The
	// channel is closed when the queue is closed and drained or ctx ends.
	Dequeue(ctx context.Context) <-chan model.RefreshJob

	// Len returns the current number of queued jobs.
	Len(ctx context.Context) int

	// Close stops accepting jobs. Queued jobs are still delivered.
	Close() error

	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	jobs     chan model.RefreshJob
	capacity int
	mu       sync.RWMutex
	closed   bool
}

// NewInMemoryQueue creates a bounded in-memory queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{capacity: defaultQueueCapacity}
	for _, opt := range opts {
		opt(q)
	}
	q.jobs = make(chan model.RefreshJob, q.capacity)
	metrics.UpdateRefreshQueueLength(0)
	return q
}

// Enqueue adds a job to the queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, job model.RefreshJob) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed || ctx.Err() != nil {
		metrics.RecordRefreshRejected()
		return false
	}

	select {
	case q.jobs <- job:
		metrics.RecordRefreshEnqueued()
		metrics.UpdateRefreshQueueLength(len(q.jobs))
		return true
	default:
		metrics.RecordRefreshRejected()
		return false
	}
}

// Dequeue returns a channel that will receive jobs as they become available.
func (q *InMemoryQueue) Dequeue(ctx context.Context) <-chan model.RefreshJob {
	out := make(chan model.RefreshJob)
	go func() {
		defer close(out)
		for {
			select {
			case job, ok := <-q.jobs:
				if !ok {
					return
				}
				metrics.UpdateRefreshQueueLength(len(q.jobs))
				select {
				case out <- job:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	return out
}

// Len returns the current number of queued jobs.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.jobs)
}

// Close gracefully shuts down the queue.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.jobs)
	q.closed = true
	return nil
}

// IsClosed returns true if the queue has been closed.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
