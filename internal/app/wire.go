package service

import (
	"context"
	"fmt"
	"time"

	"github.com/okian/pitchplus/internal/adapters/feeds"
	"github.com/okian/pitchplus/internal/config"
	"github.com/okian/pitchplus/internal/domain/features"
	"github.com/okian/pitchplus/internal/domain/pipeline"
	"github.com/okian/pitchplus/internal/domain/registry"
	"github.com/okian/pitchplus/internal/domain/scoring"
)

// NewPipeline loads the classifiers from cfg.ModelDir and assembles the
// feature builder, scorer and aggregator.
func NewPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	families, err := registry.NewFamilySet(cfg.FastballPitches, cfg.BreakingPitches, cfg.OffspeedPitches)
	if err != nil {
		return nil, fmt.Errorf("pitch families: %w", err)
	}
	models := registry.Load(ctx, cfg.ModelDir)
	builder := features.NewBuilder(
		features.WithFastballPitches(cfg.FastballPitches),
		features.WithExcludedPitches(cfg.ExcludedPitches),
		features.WithWhiffDescriptions(cfg.WhiffDescriptions),
	)
	return pipeline.New(builder, scoring.NewScorer(models, families)), nil
}

// ConfigOptions returns the Service options derived from cfg: the three
// HTTP feeds, the queue size and the season start.
func ConfigOptions(cfg *config.Config) ([]Option, error) {
	start, err := time.Parse(time.DateOnly, cfg.SeasonStart)
	if err != nil {
		return nil, fmt.Errorf("season_start: %w", err)
	}
	fopts := []feeds.Option{feeds.WithTimeout(cfg.FetchTimeout())}
	return []Option{
		WithPitchFeed(feeds.NewSavant(cfg.SavantURL, cfg.ChunkDays, fopts...)),
		WithRosterFeed(feeds.NewRoster(cfg.RosterURL, cfg.RosterPages, fopts...)),
		WithQualifierFeed(feeds.NewQualifier(cfg.QualifierURL, cfg.SeasonYear, fopts...)),
		WithQueueSize(cfg.RefreshQueueSize),
		WithSeasonStart(start),
	}, nil
}
