// Package scoring routes feature rows to their family classifier and turns
// whiff probabilities into batch-relative Pitching+ scores.
package scoring

import (
	"context"
	"fmt"
	"math"

	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/internal/domain/registry"
	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

// Default scale constants.
const (
	defaultCenter = 100
	defaultSpread = 15

	// SinkerPitch is scored without the baseline differentials.
	SinkerPitch = "Sinker"
)

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithScale sets the Pitching+ center and spread.
func WithScale(center, spread float64) Option {
	return func(s *Scorer) {
		if spread > 0 {
			s.center = center
			s.spread = spread
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scorer assigns Pitching+ to feature rows.
type Scorer struct {
	models   *registry.Registry
	families *registry.FamilySet
	center   float64
	spread   float64
	logger   logger.Logger
}

// NewScorer creates a scorer over a registry and a pitch-name grouping.
func NewScorer(models *registry.Registry, families *registry.FamilySet, opts ...Option) *Scorer {
	s := &Scorer{
		models:   models,
		families: families,
		center:   defaultCenter,
		spread:   defaultSpread,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Named("scorer")
	}
	return s
}

// Report summarizes a Score call.
type Report struct {
	Scored   map[registry.Family]int
	Unscored int // rows whose pitch name belongs to no family
}

// Score returns one ScoredPitch per row that belongs to a family, grouped by
// family in scoring order and in input order within a family. If a family
// with rows has no classifier the whole call fails with ErrModelUnavailable.
func (s *Scorer) Score(ctx context.Context, rows []model.FeatureRow) ([]model.ScoredPitch, Report, error) {
	rep := Report{Scored: make(map[registry.Family]int)}

	groups := make(map[registry.Family][]int)
	for i := range rows {
		fam, ok := s.families.Lookup(rows[i].PitchName)
		if !ok {
			rep.Unscored++
			continue
		}
		groups[fam] = append(groups[fam], i)
	}

	out := make([]model.ScoredPitch, 0, len(rows)-rep.Unscored)
	for _, fam := range registry.Families {
		idx := groups[fam]
		if len(idx) == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, rep, err
		}
		clf, err := s.models.Get(fam)
		if err != nil {
			s.logger.Error(ctx, "cannot score family", logger.String("family", fam.String()), logger.Int("rows", len(idx)), logger.Error(err))
			return nil, rep, err
		}

		probs, err := s.predict(clf, rows, idx)
		if err != nil {
			return nil, rep, fmt.Errorf("%s: %w", fam, err)
		}
		scores := Standardize(probs, s.center, s.spread)
		for k, i := range idx {
			out = append(out, model.ScoredPitch{
				FeatureRow:       rows[i],
				Family:           fam.String(),
				WhiffProbability: probs[k],
				PitchingPlus:     scores[k],
			})
		}
		rep.Scored[fam] = len(idx)
		metrics.RecordPitchesScored(fam.String(), len(idx))
		s.logger.Debug(ctx, "family scored", logger.String("family", fam.String()), logger.Int("rows", len(idx)))
	}
	if rep.Unscored > 0 {
		metrics.RecordPitchesUnscored(rep.Unscored)
		s.logger.Warn(ctx, "rows left unscored", logger.Int("rows", rep.Unscored))
	}
	return out, rep, nil
}

// predict calls clf once per feature set within the family (sinkers and the
// rest) and returns probabilities aligned with idx.
func (s *Scorer) predict(clf registry.Classifier, rows []model.FeatureRow, idx []int) ([]float64, error) {
	var sinkers, others []int
	for k, i := range idx {
		if rows[i].PitchName == SinkerPitch {
			sinkers = append(sinkers, k)
		} else {
			others = append(others, k)
		}
	}

	probs := make([]float64, len(idx))
	for _, part := range [][]int{others, sinkers} {
		if len(part) == 0 {
			continue
		}
		sub := make([]model.FeatureRow, len(part))
		for j, k := range part {
			sub[j] = rows[idx[k]]
		}
		m := BuildMatrix(sub, ColumnsFor(sub[0].PitchName))
		p, err := clf.PredictProba(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadPrediction, err)
		}
		if len(p) != len(part) {
			return nil, fmt.Errorf("%w: got %d probabilities for %d rows", ErrBadPrediction, len(p), len(part))
		}
		for j, k := range part {
			if math.IsNaN(p[j]) || p[j] < 0 || p[j] > 1 {
				return nil, fmt.Errorf("%w: probability %v", ErrBadPrediction, p[j])
			}
			probs[k] = p[j]
		}
	}
	return probs, nil
}

// ColumnsFor returns the feature columns used for a pitch name: 13 for
// sinkers (no differentials), 16 otherwise.
func ColumnsFor(pitchName string) []string {
	if pitchName != SinkerPitch {
		return append([]string(nil), model.FeatureColumns...)
	}
	cols := make([]string, 0, len(model.FeatureColumns)-len(model.DifferentialColumns))
	for _, c := range model.FeatureColumns {
		switch c {
		case model.ColVeloDiff, model.ColPxDiff, model.ColPzDiff:
			continue
		}
		cols = append(cols, c)
	}
	return cols
}

// BuildMatrix lays rows out over cols.
func BuildMatrix(rows []model.FeatureRow, cols []string) registry.Matrix {
	m := registry.Matrix{Columns: cols, Rows: make([][]float64, len(rows))}
	for i := range rows {
		r := make([]float64, len(cols))
		for j, c := range cols {
			r[j] = rows[i].Value(c)
		}
		m.Rows[i] = r
	}
	return m
}

// Standardize maps values to center + spread * z, where z uses the
// population standard deviation of vals. With zero variance every value
// maps to center.
func Standardize(vals []float64, center, spread float64) []float64 {
	out := make([]float64, len(vals))
	if len(vals) == 0 {
		return out
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mu := sum / float64(len(vals))
	var ss float64
	for _, v := range vals {
		ss += (v - mu) * (v - mu)
	}
	sd := math.Sqrt(ss / float64(len(vals)))
	for i, v := range vals {
		if sd == 0 {
			out[i] = center
			continue
		}
		out[i] = (v-mu)/sd*spread + center
	}
	return out
}
