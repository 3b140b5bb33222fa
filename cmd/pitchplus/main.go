// Command pitchplus builds the Pitching+ leaderboard once and prints it as CSV.
package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"github.com/okian/pitchplus/internal/adapters/feeds"
	app "github.com/okian/pitchplus/internal/app"
	"github.com/okian/pitchplus/internal/config"
	"github.com/okian/pitchplus/internal/domain/aggregate"
	"github.com/okian/pitchplus/internal/domain/dedupe"
	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/internal/domain/pipeline"
	"github.com/okian/pitchplus/internal/domain/qualify"
	"github.com/okian/pitchplus/pkg/logger"
)

// CLI holds the command line. Everything else comes from config.Load.
type CLI struct {
	Config    string   `help:"YAML config file (same keys as the server)." type:"path"`
	Start     string   `help:"First game date, YYYY-MM-DD. Defaults to season_start."`
	End       string   `help:"Last game date, YYYY-MM-DD. Defaults to today."`
	Input     string   `help:"Read pitches from a Savant CSV export instead of the network." type:"existingfile"`
	Output    string   `short:"o" help:"Write the CSV here instead of stdout." type:"path"`
	NoRoster  bool     `help:"Skip the roster feed; team, IP and WHIP stay empty."`
	Qualified bool     `help:"Keep pitchers with at least one inning per team game."`
	MinIP     *float64 `name:"min-ip" help:"Keep pitchers with at least this many innings; 0 drops pitchers without innings."`
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("pitchplus"),
		kong.Description("Score pitches with the Pitching+ models and print the leaderboard."),
	)

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		kctx.FatalIfErrorf(err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.Run(ctx)
	stop()
	kctx.FatalIfErrorf(err)
}

// Run executes one scoring pass.
func (c *CLI) Run(ctx context.Context) error {
	if c.Config != "" {
		if err := os.Setenv("PITCHPLUS_CONFIG", c.Config); err != nil {
			return err
		}
	}
	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		return err
	}
	log := logger.Named("pitchplus")

	start, end, err := c.window(cfg)
	if err != nil {
		return err
	}
	p, err := app.NewPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	pitches, err := c.pitches(ctx, cfg, start, end)
	if err != nil {
		return err
	}
	log.Info(ctx, "pitches loaded", logger.Int("pitches", len(pitches)))

	var roster aggregate.Roster
	if !c.NoRoster {
		entries, err := feeds.NewRoster(cfg.RosterURL, cfg.RosterPages, feeds.WithTimeout(cfg.FetchTimeout())).Fetch(ctx)
		if err != nil {
			log.Warn(ctx, "roster unavailable, pitchers stay unjoined", logger.Error(err))
		}
		roster = aggregate.NewRoster(entries)
	}

	res, err := p.Run(ctx, pipeline.Input{Pitches: pitches, Roster: roster})
	if err != nil {
		return err
	}
	lb := res.Leaderboard

	if crit, ok := c.criteria(); ok {
		if c.Qualified {
			crit.Thresholds, err = feeds.NewQualifier(cfg.QualifierURL, cfg.SeasonYear, feeds.WithTimeout(cfg.FetchTimeout())).Fetch(ctx)
			if err != nil {
				return fmt.Errorf("qualification thresholds: %w", err)
			}
		}
		lb.Rows = qualify.Filter(lb.Rows, crit)
	}

	out := io.Writer(os.Stdout)
	if c.Output != "" {
		f, err := os.Create(c.Output)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	if err := WriteCSV(out, lb); err != nil {
		return err
	}
	log.Info(ctx, "leaderboard written",
		logger.Int("pitchers", len(lb.Rows)),
		logger.Int("unscored", res.Report.Scoring.Unscored),
		logger.Duration("elapsed", res.Report.Duration),
	)
	return nil
}

// criteria reports the innings filter asked for on the command line, if any.
func (c *CLI) criteria() (qualify.Criteria, bool) {
	crit := qualify.Criteria{Qualified: c.Qualified}
	if c.MinIP != nil {
		crit.MinIP = model.Some(*c.MinIP)
	}
	return crit, c.Qualified || crit.MinIP.Valid
}

func (c *CLI) window(cfg *config.Config) (time.Time, time.Time, error) {
	startStr := cfg.SeasonStart
	if c.Start != "" {
		startStr = c.Start
	}
	start, err := time.Parse(time.DateOnly, startStr)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("start: %w", err)
	}
	end := time.Now().UTC()
	if c.End != "" {
		if end, err = time.Parse(time.DateOnly, c.End); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("end: %w", err)
		}
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is before start %s", end.Format(time.DateOnly), start.Format(time.DateOnly))
	}
	return start, end, nil
}

func (c *CLI) pitches(ctx context.Context, cfg *config.Config, start, end time.Time) ([]model.PitchRecord, error) {
	if c.Input == "" {
		return feeds.NewSavant(cfg.SavantURL, cfg.ChunkDays, feeds.WithTimeout(cfg.FetchTimeout())).Fetch(ctx, start, end)
	}
	f, err := os.Open(c.Input)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	recs, err := feeds.ParseSavantCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", c.Input, err)
	}
	recs, _ = dedupe.Pitches(dedupe.NewInMemoryDeduper(), recs)
	return recs, nil
}

// WriteCSV writes lb with its header row. Missing cells are empty.
func WriteCSV(w io.Writer, lb model.Leaderboard) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(lb.Columns()); err != nil {
		return err
	}
	for i := range lb.Rows {
		r := &lb.Rows[i]
		rec := []string{
			r.PitcherID,
			r.Name,
			r.Team.Value,
			formatOptional(r.IP),
			formatOptional(r.WHIP),
			strconv.Itoa(r.PitchingPlus),
		}
		for _, name := range lb.PitchColumns {
			cell := ""
			if v, ok := r.Pitch(name).Get(); ok {
				cell = strconv.Itoa(v)
			}
			rec = append(rec, cell)
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatOptional(o model.Optional[float64]) string {
	v, ok := o.Get()
	if !ok {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
