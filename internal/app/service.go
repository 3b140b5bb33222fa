// Package service wires feeds, the scoring pipeline and the leaderboard store
// behind the operations the HTTP API needs.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	refreshqueue "github.com/okian/pitchplus/internal/adapters/mq/queue"
	"github.com/okian/pitchplus/internal/adapters/mq/worker"
	"github.com/okian/pitchplus/internal/adapters/repository"
	"github.com/okian/pitchplus/internal/domain/aggregate"
	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/internal/domain/pipeline"
	"github.com/okian/pitchplus/internal/domain/qualify"
	"github.com/okian/pitchplus/pkg/logger"
)

// PitchFeed supplies raw pitches for a date range.
type PitchFeed interface {
	Fetch(ctx context.Context, start, end time.Time) ([]model.PitchRecord, error)
}

// RosterFeed supplies team, IP and WHIP per player.
type RosterFeed interface {
	Fetch(ctx context.Context) ([]model.RosterEntry, error)
}

// QualifierFeed supplies per-team innings thresholds.
type QualifierFeed interface {
	Fetch(ctx context.Context) (qualify.Thresholds, error)
}

// Persister saves published snapshots and restores the latest one.
type Persister interface {
	Save(ctx context.Context, snap *repository.Snapshot) error
	Latest(ctx context.Context) (*repository.Snapshot, error)
}

// Query selects leaderboard rows.
type Query = model.LeaderboardQuery

// RunStatus describes the last finished refresh.
type RunStatus struct {
	JobID      string        `json:"job_id"`
	FinishedAt time.Time     `json:"finished_at"`
	Duration   time.Duration `json:"duration_ns"`
	Pitches    int           `json:"pitches"`
	Pitchers   int           `json:"pitchers"`
	Unscored   int           `json:"unscored"`
	Unjoined   int           `json:"unjoined"`
	Error      string        `json:"error,omitempty"`
}

// Service implements the API dependencies for the Pitching+ leaderboard.
type Service struct {
	mu sync.RWMutex

	pipeline  *pipeline.Pipeline
	pitches   PitchFeed
	roster    RosterFeed
	qualifier QualifierFeed
	store     repository.Store
	persist   Persister

	queue        *refreshqueue.InMemoryQueue
	worker       *worker.InMemoryWorker
	cancelWorker context.CancelFunc

	queueSize   int
	seasonStart time.Time
	now         func() time.Time

	thresholds qualify.Thresholds
	lastRun    *RunStatus
	started    bool

	logger logger.Logger
}

// New constructs a Service around a pipeline.
func New(p *pipeline.Pipeline, opts ...Option) *Service {
	s := &Service{
		pipeline:  p,
		store:     repository.NewMemoryStore(),
		queueSize: 4,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.seasonStart.IsZero() {
		s.seasonStart = time.Date(s.now().Year(), time.March, 1, 0, 0, 0, 0, time.UTC)
	}
	if s.logger == nil {
		s.logger = logger.Named("service")
	}
	return s
}

// Start warms the store from the persister and starts the refresh worker.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting leaderboard service...")

	if s.persist != nil {
		snap, err := s.persist.Latest(ctx)
		switch {
		case err == nil:
			if err := s.store.Replace(ctx, snap); err != nil {
				return fmt.Errorf("warm store: %w", err)
			}
			s.logger.Info(ctx, "restored leaderboard", logger.String("run_id", snap.RunID), logger.Int("pitchers", len(snap.Entries)))
		case errors.Is(err, repository.ErrNoSnapshot):
		default:
			s.logger.Warn(ctx, "could not restore leaderboard", logger.Error(err))
		}
	}

	s.queue = refreshqueue.NewInMemoryQueue(refreshqueue.WithCapacity(s.queueSize))
	s.worker = worker.NewInMemoryWorker(s.queue, s, worker.WithName("refresh-worker"))
	wctx, cancel := context.WithCancel(ctx)
	s.cancelWorker = cancel
	go s.worker.Run(wctx)

	s.started = true
	s.logger.Info(ctx, "leaderboard service started", logger.Int("queueSize", s.queueSize), logger.Bool("persist", s.persist != nil))
	return nil
}

// Stop closes the refresh queue and waits for the running job.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	s.started = false
	q, w, cancel := s.queue, s.worker, s.cancelWorker
	s.mu.Unlock()

	// The running job may need s.mu, so wait without holding it.
	_ = q.Close()
	err := w.Shutdown(ctx)
	cancel()
	s.logger.Info(ctx, "leaderboard service stopped")
	return err
}

// RequestRefresh queues a refresh of the whole season so far.
func (s *Service) RequestRefresh(ctx context.Context) (model.RefreshJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return model.RefreshJob{}, ErrNotStarted
	}
	job := model.RefreshJob{
		ID:          uuid.NewString(),
		Start:       s.seasonStart,
		End:         s.now(),
		RequestedAt: s.now(),
	}
	if !s.queue.Enqueue(ctx, job) {
		return model.RefreshJob{}, ErrRefreshBusy
	}
	s.logger.Info(ctx, "refresh queued", logger.String("job_id", job.ID))
	return job, nil
}

// Refresh rebuilds the leaderboard synchronously.
func (s *Service) Refresh(ctx context.Context) error {
	now := s.now()
	return s.RunJob(ctx, model.RefreshJob{ID: uuid.NewString(), Start: s.seasonStart, End: now, RequestedAt: now})
}

// RunJob fetches every feed, runs the pipeline and publishes the result. A
// failed run leaves the previous leaderboard in place.
func (s *Service) RunJob(ctx context.Context, job model.RefreshJob) error {
	status := &RunStatus{JobID: job.ID}
	err := s.runJob(ctx, job, status)
	status.FinishedAt = s.now()
	if err != nil {
		status.Error = err.Error()
	}
	s.mu.Lock()
	s.lastRun = status
	s.mu.Unlock()
	return err
}

func (s *Service) runJob(ctx context.Context, job model.RefreshJob, status *RunStatus) error {
	if s.pitches == nil {
		return ErrNoPitchFeed
	}
	pitches, err := s.pitches.Fetch(ctx, job.Start, job.End)
	if err != nil {
		return fmt.Errorf("fetch pitches: %w", err)
	}

	var roster aggregate.Roster
	if s.roster != nil {
		entries, err := s.roster.Fetch(ctx)
		if err != nil {
			s.logger.Warn(ctx, "roster unavailable, pitchers stay unjoined", logger.Error(err))
		}
		roster = aggregate.NewRoster(entries)
	}

	if s.qualifier != nil {
		th, err := s.qualifier.Fetch(ctx)
		if err != nil {
			s.logger.Warn(ctx, "qualifier unavailable, keeping previous thresholds", logger.Error(err))
		} else {
			s.mu.Lock()
			s.thresholds = th
			s.mu.Unlock()
		}
	}

	res, err := s.pipeline.Run(ctx, pipeline.Input{Pitches: pitches, Roster: roster})
	if err != nil {
		return err
	}
	status.Duration = res.Report.Duration
	status.Pitches = len(pitches)
	status.Pitchers = len(res.Leaderboard.Rows)
	status.Unscored = res.Report.Scoring.Unscored
	status.Unjoined = len(res.Report.Aggregate.Unjoined)

	snap := repository.NewSnapshot(job.ID, s.now(), res.Leaderboard)
	if err := s.store.Replace(ctx, snap); err != nil {
		return fmt.Errorf("publish leaderboard: %w", err)
	}
	if s.persist != nil {
		if err := s.persist.Save(ctx, snap); err != nil {
			s.logger.Error(ctx, "persist leaderboard failed", logger.Error(err))
		}
	}
	return nil
}

// Leaderboard returns ranked rows matching q. Limit 0 means all.
func (s *Service) Leaderboard(ctx context.Context, q Query) ([]repository.Entry, error) {
	filter := q.Qualified || q.MinIP.Valid
	if !filter && q.Limit > 0 {
		return s.store.TopN(ctx, q.Limit)
	}
	snap := s.store.Snapshot(ctx)
	if snap == nil {
		return nil, repository.ErrNoSnapshot
	}

	crit := qualify.Criteria{Qualified: q.Qualified, MinIP: q.MinIP}
	if q.Qualified {
		s.mu.RLock()
		crit.Thresholds = s.thresholds
		s.mu.RUnlock()
		if crit.Thresholds == nil {
			return nil, ErrNoThresholds
		}
	}

	out := make([]repository.Entry, 0, len(snap.Entries))
	for i := range snap.Entries {
		if filter && !crit.Keep(&snap.Entries[i].LeaderboardRow) {
			continue
		}
		out = append(out, snap.Entries[i])
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

// Pitcher returns one pitcher's row.
func (s *Service) Pitcher(ctx context.Context, pitcherID string) (repository.Entry, error) {
	return s.store.Get(ctx, pitcherID)
}

// PitchColumns returns the pitch names of the current leaderboard in column order.
func (s *Service) PitchColumns(ctx context.Context) []string {
	if snap := s.store.Snapshot(ctx); snap != nil {
		return snap.PitchColumns
	}
	return nil
}

// LastRun returns the last finished refresh, or nil.
func (s *Service) LastRun() *RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastRun == nil {
		return nil
	}
	cp := *s.lastRun
	return &cp
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":        s.started,
		"queueSize":      s.queueSize,
		"seasonStart":    s.seasonStart.Format("2006-01-02"),
		"totalPitchers":  s.store.Count(ctx),
		"qualifiedTeams": len(s.thresholds),
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
	}
	if snap := s.store.Snapshot(ctx); snap != nil {
		stats["runId"] = snap.RunID
		stats["generatedAt"] = snap.GeneratedAt
		stats["pitchColumns"] = len(snap.PitchColumns)
	}
	if s.lastRun != nil {
		stats["lastRun"] = *s.lastRun
	}
	return stats
}
