package repository

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/okian/pitchplus/pkg/metrics"
)

// MemoryStore serves the latest snapshot from memory. Readers never block
// on Replace.
type MemoryStore struct {
	snapshot atomic.Pointer[Snapshot]
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace implements Store.Replace.
func (s *MemoryStore) Replace(_ context.Context, snap *Snapshot) error {
	if snap == nil {
		return ErrNoSnapshot
	}
	if snap.byID == nil {
		snap.index()
	}
	s.snapshot.Store(snap)
	metrics.UpdateLeaderboardPitchers(len(snap.Entries))
	return nil
}

// TopN implements Store.TopN.
func (s *MemoryStore) TopN(_ context.Context, n int) ([]Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(time.Since(start).Seconds()) }()

	if n < 1 {
		return nil, ErrInvalidLimit
	}
	snap := s.snapshot.Load()
	if snap == nil {
		return nil, ErrNoSnapshot
	}
	if n > len(snap.Entries) {
		n = len(snap.Entries)
	}
	out := make([]Entry, n)
	copy(out, snap.Entries[:n])
	return out, nil
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, pitcherID string) (Entry, error) {
	start := time.Now()
	defer func() { metrics.RecordStoreQueryLatency(time.Since(start).Seconds()) }()

	snap := s.snapshot.Load()
	if snap == nil {
		return Entry{}, ErrNoSnapshot
	}
	i, ok := snap.byID[pitcherID]
	if !ok {
		return Entry{}, ErrNotFound
	}
	return snap.Entries[i], nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	snap := s.snapshot.Load()
	if snap == nil {
		return 0
	}
	return len(snap.Entries)
}

// Snapshot implements Store.Snapshot.
func (s *MemoryStore) Snapshot(_ context.Context) *Snapshot {
	return s.snapshot.Load()
}
