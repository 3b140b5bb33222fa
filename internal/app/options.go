package service

import (
	"time"

	"github.com/okian/pitchplus/internal/adapters/repository"
	"github.com/okian/pitchplus/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithPitchFeed sets the raw pitch source.
func WithPitchFeed(f PitchFeed) Option {
	return func(s *Service) { s.pitches = f }
}

// WithRosterFeed sets the roster source. Without one every pitcher is unjoined.
func WithRosterFeed(f RosterFeed) Option {
	return func(s *Service) { s.roster = f }
}

// WithQualifierFeed sets the qualification threshold source.
func WithQualifierFeed(f QualifierFeed) Option {
	return func(s *Service) { s.qualifier = f }
}

// WithStore sets the leaderboard store. Defaults to a MemoryStore.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithPersister sets where published snapshots are saved and warmed from.
func WithPersister(p Persister) Option {
	return func(s *Service) { s.persist = p }
}

// WithQueueSize sets the maximum number of pending refresh jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithSeasonStart sets the first game date refreshed.
func WithSeasonStart(t time.Time) Option {
	return func(s *Service) { s.seasonStart = t }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}
