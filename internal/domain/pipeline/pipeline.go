// Package pipeline composes feature building, scoring and aggregation into
// one leaderboard run.
package pipeline

import (
	"context"
	"time"

	"github.com/okian/pitchplus/internal/domain/aggregate"
	"github.com/okian/pitchplus/internal/domain/features"
	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/internal/domain/scoring"
	"github.com/okian/pitchplus/pkg/logger"
	"github.com/okian/pitchplus/pkg/metrics"
)

// Input is everything a run consumes.
type Input struct {
	Pitches []model.PitchRecord
	Roster  aggregate.RosterLookup
}

// Report collects the per-stage reports of a run.
type Report struct {
	Features  features.Report
	Scoring   scoring.Report
	Aggregate aggregate.Report
	Duration  time.Duration
}

// Result is the output of a successful run.
type Result struct {
	Leaderboard model.Leaderboard
	Report      Report
}

// Pipeline runs the stages in order. It holds no per-run state, so one
// Pipeline may serve concurrent runs over distinct inputs.
type Pipeline struct {
	builder *features.Builder
	scorer  *scoring.Scorer
	logger  logger.Logger
}

// New creates a pipeline.
func New(builder *features.Builder, scorer *scoring.Scorer) *Pipeline {
	return &Pipeline{builder: builder, scorer: scorer, logger: logger.Named("pipeline")}
}

// Run builds features, scores them and aggregates the leaderboard. Any
// stage error aborts the run with no partial table.
func (p *Pipeline) Run(ctx context.Context, in Input) (Result, error) {
	start := time.Now()
	res, err := p.run(ctx, in)
	res.Report.Duration = time.Since(start)

	outcome := "ok"
	if err != nil {
		outcome = "error"
		p.logger.Error(ctx, "pipeline run failed", logger.Error(err), logger.Duration("elapsed", res.Report.Duration))
	} else {
		p.logger.Info(ctx, "pipeline run complete",
			logger.Int("pitches", len(in.Pitches)),
			logger.Int("pitchers", len(res.Leaderboard.Rows)),
			logger.Duration("elapsed", res.Report.Duration),
		)
	}
	metrics.RecordPipelineRun(outcome, res.Report.Duration.Seconds())
	return res, err
}

func (p *Pipeline) run(ctx context.Context, in Input) (Result, error) {
	var res Result
	metrics.RecordPitchesIngested(len(in.Pitches))

	rows, frep, err := p.builder.Build(in.Pitches)
	res.Report.Features = frep
	if err != nil {
		return res, err
	}
	metrics.RecordPitchesFiltered("non_regular", frep.NonRegular)
	metrics.RecordPitchesFiltered("excluded", frep.Excluded)
	if n := len(frep.MissingBaselines); n > 0 {
		metrics.RecordMissingBaselines(n)
		p.logger.Warn(ctx, "pitchers without fastball baseline", logger.Int("count", n), logger.Strings("pitchers", frep.MissingBaselines))
	}

	scored, srep, err := p.scorer.Score(ctx, rows)
	res.Report.Scoring = srep
	if err != nil {
		return res, err
	}

	lb, arep := aggregate.Aggregate(ctx, scored, in.Roster)
	res.Report.Aggregate = arep
	res.Leaderboard = lb
	return res, nil
}
