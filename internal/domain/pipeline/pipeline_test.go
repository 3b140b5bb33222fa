package pipeline_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/pitchplus/internal/domain/aggregate"
	"github.com/okian/pitchplus/internal/domain/features"
	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/internal/domain/pipeline"
	"github.com/okian/pitchplus/internal/domain/registry"
	"github.com/okian/pitchplus/internal/domain/scoring"
	"github.com/okian/pitchplus/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

// stub maps release speed to a fixed whiff probability.
func stub(bySpeed map[float64]float64) registry.ClassifierFunc {
	return func(m registry.Matrix) ([]float64, error) {
		col := 0
		for j, c := range m.Columns {
			if c == model.ColReleaseSpeed {
				col = j
			}
		}
		out := make([]float64, len(m.Rows))
		for i, r := range m.Rows {
			out[i] = bySpeed[r[col]]
		}
		return out, nil
	}
}

func pitch(pitcher, name, pitchName string, speed float64) model.PitchRecord {
	return model.PitchRecord{
		PitcherID:    pitcher,
		PlayerName:   name,
		PitcherThrow: model.Right,
		BatterStance: model.Right,
		PitchName:    pitchName,
		GameType:     model.RegularSeason,
		Description:  "called_strike",
		ReleaseSpeed: speed,
	}
}

func TestRun(t *testing.T) {
	ctx := context.Background()
	clf := stub(map[float64]float64{95: 0.3, 92: 0.2, 85: 0.5, 83: 0.4, 86: 0.6})

	Convey("Given a pipeline with stubbed classifiers", t, func() {
		reg := registry.New(map[registry.Family]registry.Classifier{
			registry.Fastball: clf,
			registry.Breaking: clf,
			registry.Offspeed: clf,
		})
		p := pipeline.New(features.NewBuilder(), scoring.NewScorer(reg, registry.DefaultFamilySet()))

		Convey("When pitcher X throws a fastball and a slider in a batch of two pitchers", func() {
			res, err := p.Run(ctx, pipeline.Input{
				Pitches: []model.PitchRecord{
					pitch("X", "Ex, Pitcher", "4-Seam Fastball", 95),
					pitch("X", "Ex, Pitcher", "Slider", 85),
					pitch("Y", "Why, Pitcher", "4-Seam Fastball", 92),
					pitch("Y", "Why, Pitcher", "Slider", 83),
				},
				Roster: aggregate.NewRoster([]model.RosterEntry{{PlayerID: "X", Team: "SEA", IP: 100, WHIP: 1.05}}),
			})

			Convey("Then X has both pitch columns and the mean overall score", func() {
				So(err, ShouldBeNil)
				lb := res.Leaderboard
				So(lb.PitchColumns, ShouldResemble, []string{"4-Seam Fastball", "Slider"})
				x := lb.Rows[0]
				So(x.PitcherID, ShouldEqual, "X")
				So(x.Name, ShouldEqual, "Pitcher Ex")
				ff, slider := x.Pitch("4-Seam Fastball"), x.Pitch("Slider")
				So(ff.Valid, ShouldBeTrue)
				So(slider.Valid, ShouldBeTrue)
				So(ff.Value, ShouldEqual, 115)
				So(slider.Value, ShouldEqual, 115)
				So(x.PitchingPlus, ShouldEqual, (ff.Value+slider.Value)/2)
				So(x.Team, ShouldResemble, model.Some("SEA"))
			})

			Convey("Then the report carries each stage", func() {
				So(res.Report.Features.Output, ShouldEqual, 4)
				So(res.Report.Scoring.Scored[registry.Fastball], ShouldEqual, 2)
				So(res.Report.Aggregate.Unjoined, ShouldResemble, []string{"Y"})
			})
		})

		Convey("When the same input runs twice", func() {
			in := pipeline.Input{Pitches: []model.PitchRecord{
				pitch("X", "Ex, Pitcher", "4-Seam Fastball", 95),
				pitch("Y", "Why, Pitcher", "Slider", 86),
				pitch("Y", "Why, Pitcher", "Slider", 83),
			}}
			a, errA := p.Run(ctx, in)
			b, errB := p.Run(ctx, in)

			Convey("Then the leaderboards are identical", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Leaderboard, ShouldResemble, b.Leaderboard)
			})
		})
	})

	Convey("Given a registry without a breaking classifier", t, func() {
		reg := registry.New(map[registry.Family]registry.Classifier{registry.Fastball: clf})
		p := pipeline.New(features.NewBuilder(), scoring.NewScorer(reg, registry.DefaultFamilySet()))

		Convey("Then a run with sliders aborts", func() {
			res, err := p.Run(ctx, pipeline.Input{Pitches: []model.PitchRecord{pitch("X", "Ex, P", "Slider", 85)}})
			So(errors.Is(err, registry.ErrModelUnavailable), ShouldBeTrue)
			So(res.Leaderboard.Rows, ShouldBeEmpty)
		})
	})

	Convey("Given a malformed pitch", t, func() {
		p := pipeline.New(features.NewBuilder(), scoring.NewScorer(registry.New(nil), registry.DefaultFamilySet()))
		bad := pitch("", "Nobody", "Slider", 85)

		Convey("Then the run fails with ErrMalformedInput", func() {
			_, err := p.Run(ctx, pipeline.Input{Pitches: []model.PitchRecord{bad}})
			So(errors.Is(err, features.ErrMalformedInput), ShouldBeTrue)
		})
	})
}
