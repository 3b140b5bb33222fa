// Package worker drains refresh jobs one at a time.
package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

// Refresher rebuilds the leaderboard for a job.
type Refresher interface {
	RunJob(ctx context.Context, job model.RefreshJob) error
}

// Queue defines how the worker receives jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.RefreshJob
}

// Worker processes refresh jobs.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue closes.
	Run(ctx context.Context)

	// Shutdown stops the worker after the current job.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker runs jobs sequentially, so two refreshes never overlap.
type InMemoryWorker struct {
	queue     Queue
	refresher Refresher
	name      string
	onDone    func(model.RefreshJob, error)

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a worker with configuration options.
func NewInMemoryWorker(queue Queue, refresher Refresher, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:     queue,
		refresher: refresher,
		name:      "worker",
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = logger.Named(w.name)
	}
	return w
}

// Run starts the worker loop. The dequeue side is released when Run returns,
// so jobs queued after a shutdown stay in the queue.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	dctx, cancel := context.WithCancel(ctx)
	defer cancel()
	jobs := w.queue.Dequeue(dctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			w.process(ctx, job)
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

func (w *InMemoryWorker) process(ctx context.Context, job model.RefreshJob) {
	start := time.Now()
	w.logger.Info(ctx, "refresh started", logger.String("job_id", job.ID))

	err := w.refresher.RunJob(ctx, job)
	if err != nil {
		metrics.RecordRefreshJob("error")
		w.logger.Error(ctx, "refresh failed",
			logger.String("job_id", job.ID),
			logger.Duration("elapsed", time.Since(start)),
			logger.Error(err),
		)
	} else {
		metrics.RecordRefreshJob("ok")
		w.logger.Info(ctx, "refresh finished",
			logger.String("job_id", job.ID),
			logger.Duration("elapsed", time.Since(start)),
		)
	}
	if w.onDone != nil {
		w.onDone(job, err)
	}
}
