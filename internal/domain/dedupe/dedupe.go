// Package dedupe drops pitches that overlapping feed requests return twice.
package dedupe

import (
	"sync"
	"sync/atomic"

	"github.com/okian/pitchplus/internal/domain/model"
)

// Deduper records seen pitch keys.
type Deduper interface {
	// SeenAndRecord atomically checks if key was seen and records it if not.
	// Returns true if key was already seen.
	SeenAndRecord(key model.Key) bool

	Size() int64
}

type inMemoryDeduper struct {
	mu       sync.Mutex
	seen     map[model.Key]struct{}
	capacity int
	size     atomic.Int64
}

// NewInMemoryDeduper creates an unbounded in-memory deduper. Pitch keys are
// never evicted: a season is small enough to hold in full.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{capacity: 4096}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[model.Key]struct{}, d.capacity)
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(key model.Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.seen[key]; exists {
		return true
	}
	d.seen[key] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// Pitches returns recs without the pitches d has already seen, keeping the
// first occurrence and input order, and the number of dropped duplicates.
func Pitches(d Deduper, recs []model.PitchRecord) ([]model.PitchRecord, int) {
	out := make([]model.PitchRecord, 0, len(recs))
	dropped := 0
	for i := range recs {
		if d.SeenAndRecord(recs[i].Key()) {
			dropped++
			continue
		}
		out = append(out, recs[i])
	}
	return out, dropped
}
