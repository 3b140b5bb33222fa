// Package repository holds the published leaderboard and its persistence.
package repository

import (
	"context"
	"time"

	"github.com/okian/pitchplus/internal/domain/model"
)

// Entry is a ranked leaderboard row.
type Entry struct {
	Rank int `json:"rank"`
	model.LeaderboardRow
}

// Snapshot is one published leaderboard. Never mutated after publication.
type Snapshot struct {
	RunID        string    `json:"run_id"`
	GeneratedAt  time.Time `json:"generated_at"`
	PitchColumns []string  `json:"pitch_columns"`
	Entries      []Entry   `json:"entries"`

	byID map[string]int
}

// NewSnapshot ranks lb's rows and indexes them by pitcher id. Rows are taken
// in leaderboard order; equal Pitching+ values share a rank.
func NewSnapshot(runID string, generatedAt time.Time, lb model.Leaderboard) *Snapshot {
	s := &Snapshot{
		RunID:        runID,
		GeneratedAt:  generatedAt,
		PitchColumns: append([]string(nil), lb.PitchColumns...),
		Entries:      make([]Entry, len(lb.Rows)),
	}
	for i, r := range lb.Rows {
		s.Entries[i] = Entry{LeaderboardRow: r}
	}
	assignRanksWithTies(s.Entries)
	s.index()
	return s
}

func (s *Snapshot) index() {
	s.byID = make(map[string]int, len(s.Entries))
	for i := range s.Entries {
		s.byID[s.Entries[i].PitcherID] = i
	}
}

// Leaderboard returns the snapshot as a leaderboard table.
func (s *Snapshot) Leaderboard() model.Leaderboard {
	lb := model.Leaderboard{PitchColumns: s.PitchColumns, Rows: make([]model.LeaderboardRow, len(s.Entries))}
	for i := range s.Entries {
		lb.Rows[i] = s.Entries[i].LeaderboardRow
	}
	return lb
}

// Store provides access to the current leaderboard.
type Store interface {
	// Replace publishes snap as the current leaderboard.
	Replace(ctx context.Context, snap *Snapshot) error

	// TopN returns the first n entries in rank order.
	TopN(ctx context.Context, n int) ([]Entry, error)

	// Get returns a pitcher's entry. Returns ErrNotFound if the pitcher is unknown.
	Get(ctx context.Context, pitcherID string) (Entry, error)

	// Count returns the number of pitchers in the current leaderboard.
	Count(ctx context.Context) int

	// Snapshot returns the current snapshot, or nil before the first Replace.
	Snapshot(ctx context.Context) *Snapshot
}

// assignRanksWithTies gives equal scores the same rank; the next distinct
// score takes the next consecutive rank. entries must be sorted.
func assignRanksWithTies(entries []Entry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].PitchingPlus != entries[i-1].PitchingPlus {
			rank++
		}
		entries[i].Rank = rank
	}
}
