package repository

import "github.com/okian/pitchplus/pkg/logger"

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// SQLiteOption applies a configuration option to the SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithKeep sets how many snapshots the SQLite store retains. Values below 1 mean 1.
func WithKeep(n int) SQLiteOption {
	return func(s *SQLiteStore) {
		if n > 0 {
			s.keep = n
		}
	}
}

// WithSQLiteLogger sets the logger used for migrations.
func WithSQLiteLogger(l logger.Logger) SQLiteOption {
	return func(s *SQLiteStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSnapshot publishes snap at construction.
func WithSnapshot(snap *Snapshot) Option {
	return func(s *MemoryStore) {
		if snap != nil {
			if snap.byID == nil {
				snap.index()
			}
			s.snapshot.Store(snap)
		}
	}
}
