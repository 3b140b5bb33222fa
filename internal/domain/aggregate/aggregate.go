// Package aggregate reduces scored pitches to the per-pitcher leaderboard.
package aggregate

import (
	"context"
	"math"
	"sort"

	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

// RosterLookup resolves roster attributes by pitcher id.
type RosterLookup interface {
	Lookup(pitcherID string) model.Optional[model.RosterEntry]
}

// Roster is a RosterLookup over a fixed map keyed by player id.
type Roster map[string]model.RosterEntry

// NewRoster indexes entries by PlayerID. Later duplicates win.
func NewRoster(entries []model.RosterEntry) Roster {
	r := make(Roster, len(entries))
	for _, e := range entries {
		r[e.PlayerID] = e
	}
	return r
}

// Lookup implements RosterLookup.
func (r Roster) Lookup(pitcherID string) model.Optional[model.RosterEntry] {
	e, ok := r[pitcherID]
	if !ok {
		return model.None[model.RosterEntry]()
	}
	return model.Some(e)
}

// Report summarizes an Aggregate call.
type Report struct {
	Pitchers int
	Unjoined []string // pitcher ids with no roster entry
}

type acc struct {
	sum   float64
	count int
}

func (a acc) mean() float64 { return a.sum / float64(a.count) }

type pitcherAcc struct {
	id      string
	name    string
	overall acc
	byPitch map[string]acc
}

// Aggregate builds the leaderboard. roster may be nil, in which case every
// pitcher is unjoined. The result depends only on the input.
func Aggregate(ctx context.Context, pitches []model.ScoredPitch, roster RosterLookup) (model.Leaderboard, Report) {
	var (
		order   []*pitcherAcc
		byID    = make(map[string]*pitcherAcc)
		columns []string
		seenCol = make(map[string]struct{})
	)

	for i := range pitches {
		p := &pitches[i]
		pa, ok := byID[p.PitcherID]
		if !ok {
			pa = &pitcherAcc{id: p.PitcherID, name: p.PlayerName, byPitch: make(map[string]acc)}
			byID[p.PitcherID] = pa
			order = append(order, pa)
		}
		if _, ok := seenCol[p.PitchName]; !ok {
			seenCol[p.PitchName] = struct{}{}
			columns = append(columns, p.PitchName)
		}
		a := pa.byPitch[p.PitchName]
		a.sum += p.PitchingPlus
		a.count++
		pa.byPitch[p.PitchName] = a
		pa.overall.sum += p.PitchingPlus
		pa.overall.count++
	}

	rep := Report{Pitchers: len(order)}
	rows := make([]model.LeaderboardRow, 0, len(order))
	for _, pa := range order {
		row := model.LeaderboardRow{
			PitcherID:    pa.id,
			Name:         DisplayName(pa.name),
			PitchingPlus: Round(pa.overall.mean()),
			ByPitch:      make(map[string]int, len(pa.byPitch)),
		}
		for name, a := range pa.byPitch {
			row.ByPitch[name] = Round(a.mean())
		}

		var entry model.Optional[model.RosterEntry]
		if roster != nil {
			entry = roster.Lookup(pa.id)
		}
		if e, ok := entry.Get(); ok {
			row.Team = model.Some(e.Team)
			row.IP = present(e.IP)
			row.WHIP = present(e.WHIP)
		} else {
			rep.Unjoined = append(rep.Unjoined, pa.id)
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].PitchingPlus != rows[j].PitchingPlus {
			return rows[i].PitchingPlus > rows[j].PitchingPlus
		}
		return rows[i].PitcherID < rows[j].PitcherID
	})

	if len(rep.Unjoined) > 0 {
		metrics.RecordUnjoinedPitchers(len(rep.Unjoined))
		logger.Named("aggregate").Debug(ctx, "pitchers without roster entry", logger.Int("count", len(rep.Unjoined)))
	}
	return model.Leaderboard{PitchColumns: columns, Rows: rows}, rep
}

// Round rounds half to even, matching the reference tables.
func Round(v float64) int {
	return int(math.RoundToEven(v))
}

func present(v float64) model.Optional[float64] {
	if math.IsNaN(v) {
		return model.None[float64]()
	}
	return model.Some(v)
}
