// Package features turns raw pitch records into the handedness-normalized
// feature rows the whiff classifiers consume.
package features

import (
	"fmt"

	"github.com/okian/pitchplus/internal/domain/model"
)

var (
	defaultFastball = []string{"4-Seam Fastball", "Sinker"}
	defaultExcluded = []string{"Other", "Slow Curve", "Eephus", "Knuckleball", "Pitch Out", "Screwball", "Forkball"}
	defaultWhiff    = []string{"swinging_strike", "swinging_strike_blocked"}
)

// Builder derives feature rows. It holds no per-run state.
type Builder struct {
	fastball map[string]struct{}
	excluded map[string]struct{}
	whiff    map[string]struct{}
}

// NewBuilder creates a builder with the standard pitch lists.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		fastball: toSet(defaultFastball),
		excluded: toSet(defaultExcluded),
		whiff:    toSet(defaultWhiff),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Report counts what a Build call dropped or could not complete.
type Report struct {
	Input            int
	NonRegular       int
	Excluded         int
	Output           int
	MissingBaselines []string // pitcher ids without fastball pitches
}

// Build runs the feature steps over recs and returns one row per kept pitch,
// in input order. recs is not modified.
func (b *Builder) Build(recs []model.PitchRecord) ([]model.FeatureRow, Report, error) {
	rep := Report{Input: len(recs)}

	rows := make([]model.FeatureRow, 0, len(recs))
	for i := range recs {
		rec := &recs[i]
		if rec.GameType != model.RegularSeason {
			rep.NonRegular++
			continue
		}
		row, err := b.normalize(rec)
		if err != nil {
			return nil, rep, fmt.Errorf("pitch %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	baselines := b.Baselines(rows)
	seen := make(map[string]bool)
	for i := range rows {
		r := &rows[i]
		base, ok := baselines[r.PitcherID]
		if !ok {
			if !seen[r.PitcherID] {
				seen[r.PitcherID] = true
				rep.MissingBaselines = append(rep.MissingBaselines, r.PitcherID)
			}
			r.VeloDiff, r.PxDiff, r.PzDiff = model.Missing(), model.Missing(), model.Missing()
			continue
		}
		// The px/pz names follow the training convention; keep the pairing as is.
		r.VeloDiff = base.ReleaseSpeed - r.ReleaseSpeed
		r.PxDiff = base.PfxX - r.PfxX
		r.PzDiff = base.PfxZ - r.PfxZ
	}

	kept := rows[:0]
	for _, r := range rows {
		if _, drop := b.excluded[r.PitchName]; drop {
			rep.Excluded++
			continue
		}
		kept = append(kept, r)
	}
	rep.Output = len(kept)
	return kept, rep, nil
}

// normalize applies the whiff flag, the right-handed frame and stance encoding.
func (b *Builder) normalize(rec *model.PitchRecord) (model.FeatureRow, error) {
	if rec.PitcherID == "" {
		return model.FeatureRow{}, fmt.Errorf("%w: empty pitcher id", ErrMalformedInput)
	}
	var sign float64
	switch rec.PitcherThrow {
	case model.Right:
		sign = 1
	case model.Left:
		sign = -1
	default:
		return model.FeatureRow{}, fmt.Errorf("%w: pitcher %s throwing hand %q", ErrMalformedInput, rec.PitcherID, rec.PitcherThrow)
	}

	_, whiff := b.whiff[rec.Description]
	return model.FeatureRow{
		PitcherID:        rec.PitcherID,
		PlayerName:       rec.PlayerName,
		PitchName:        rec.PitchName,
		Whiff:            whiff,
		ReleaseSpeed:     rec.ReleaseSpeed,
		PfxX:             sign * rec.PfxX,
		PfxZ:             rec.PfxZ,
		ReleasePosX:      sign * rec.ReleasePosX,
		ReleasePosZ:      rec.ReleasePosZ,
		ReleaseSpinRate:  rec.ReleaseSpinRate,
		ReleaseExtension: rec.ReleaseExtension,
		Zone:             rec.Zone,
		Balls:            rec.Balls,
		Strikes:          rec.Strikes,
		PlateX:           sign * rec.PlateX,
		PlateZ:           rec.PlateZ,
		BatterStance:     stance(rec.BatterStance),
	}, nil
}

func stance(h model.Hand) float64 {
	switch h {
	case model.Left:
		return 0
	case model.Right:
		return 1
	}
	return model.Missing()
}

// Baselines computes each pitcher's mean fastball speed and movement over
// normalized rows. Pitchers without fastball pitches are absent. NaN
// measurements are skipped per column; a column with no values stays NaN.
func (b *Builder) Baselines(rows []model.FeatureRow) map[string]model.PitcherBaseline {
	type acc struct {
		speed, px, pz    float64
		nSpeed, nPx, nPz int
	}
	sums := make(map[string]*acc)
	for i := range rows {
		r := &rows[i]
		if _, ok := b.fastball[r.PitchName]; !ok {
			continue
		}
		a := sums[r.PitcherID]
		if a == nil {
			a = &acc{}
			sums[r.PitcherID] = a
		}
		if !model.IsMissing(r.ReleaseSpeed) {
			a.speed += r.ReleaseSpeed
			a.nSpeed++
		}
		if !model.IsMissing(r.PfxX) {
			a.px += r.PfxX
			a.nPx++
		}
		if !model.IsMissing(r.PfxZ) {
			a.pz += r.PfxZ
			a.nPz++
		}
	}

	out := make(map[string]model.PitcherBaseline, len(sums))
	for id, a := range sums {
		out[id] = model.PitcherBaseline{
			PitcherID:    id,
			ReleaseSpeed: mean(a.speed, a.nSpeed),
			PfxX:         mean(a.px, a.nPx),
			PfxZ:         mean(a.pz, a.nPz),
		}
	}
	return out
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return model.Missing()
	}
	return sum / float64(n)
}
