package scoring_test

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/okian/pitchplus/internal/domain/model"
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

// bySpeed returns release_speed/100 for each row and records the column sets it saw.
func bySpeed(seen *[][]string) registry.ClassifierFunc {
	return func(m registry.Matrix) ([]float64, error) {
		*seen = append(*seen, m.Columns)
		out := make([]float64, len(m.Rows))
		col := -1
		for j, c := range m.Columns {
			if c == model.ColReleaseSpeed {
				col = j
			}
		}
		for i, r := range m.Rows {
			out[i] = r[col] / 100
		}
		return out, nil
	}
}

func row(pitcher string, pitch string, speed float64) model.FeatureRow {
	return model.FeatureRow{PitcherID: pitcher, PitchName: pitch, ReleaseSpeed: speed}
}

func meanStd(vals []float64) (float64, float64) {
	var sum float64
	for _, v := range vals {
		sum += v
	}
	mu := sum / float64(len(vals))
	var ss float64
	for _, v := range vals {
		ss += (v - mu) * (v - mu)
	}
	return mu, math.Sqrt(ss / float64(len(vals)))
}

func TestScorer_Score(t *testing.T) {
	Convey("Given a scorer with all three families", t, func() {
		var seen [][]string
		clf := bySpeed(&seen)
		reg := registry.New(map[registry.Family]registry.Classifier{
			registry.Fastball: clf,
			registry.Breaking: clf,
			registry.Offspeed: clf,
		})
		s := scoring.NewScorer(reg, registry.DefaultFamilySet())

		Convey("When scoring a mixed fastball group", func() {
			rows := []model.FeatureRow{
				row("1", "4-Seam Fastball", 95),
				row("1", "Sinker", 93),
				row("2", "Cutter", 90),
				row("2", "4-Seam Fastball", 97),
			}
			out, rep, err := s.Score(context.Background(), rows)

			Convey("Then the group is standardized to 100 and 15", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 4)
				So(rep.Scored[registry.Fastball], ShouldEqual, 4)
				vals := make([]float64, len(out))
				for i, p := range out {
					vals[i] = p.PitchingPlus
					So(p.Family, ShouldEqual, "fastball")
				}
				mu, sd := meanStd(vals)
				So(mu, ShouldAlmostEqual, 100, 1e-9)
				So(sd, ShouldAlmostEqual, 15, 1e-9)
			})

			Convey("Then sinkers get 13 columns and the rest 16", func() {
				So(err, ShouldBeNil)
				So(seen, ShouldHaveLength, 2)
				So(seen[0], ShouldHaveLength, 16)
				So(seen[1], ShouldHaveLength, 13)
				So(seen[1], ShouldNotContain, model.ColVeloDiff)
			})

			Convey("Then rows keep their input order within the family", func() {
				So(out[0].ReleaseSpeed, ShouldEqual, 95)
				So(out[1].PitchName, ShouldEqual, "Sinker")
				So(out[1].WhiffProbability, ShouldAlmostEqual, 0.93, 1e-12)
				So(out[3].PitchingPlus, ShouldBeGreaterThan, out[2].PitchingPlus)
			})
		})

		Convey("When a family has a single row", func() {
			out, _, err := s.Score(context.Background(), []model.FeatureRow{row("1", "Changeup", 85)})

			Convey("Then it scores exactly 100", func() {
				So(err, ShouldBeNil)
				So(out[0].PitchingPlus, ShouldEqual, 100)
			})
		})

		Convey("When a row belongs to no family", func() {
			out, rep, err := s.Score(context.Background(), []model.FeatureRow{
				row("1", "Eephus", 60),
				row("1", "Curveball", 80),
			})

			Convey("Then it is skipped and counted", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 1)
				So(rep.Unscored, ShouldEqual, 1)
			})
		})
	})

	Convey("Given a registry missing the offspeed classifier", t, func() {
		var seen [][]string
		reg := registry.New(map[registry.Family]registry.Classifier{
			registry.Fastball: bySpeed(&seen),
			registry.Breaking: bySpeed(&seen),
		})
		s := scoring.NewScorer(reg, registry.DefaultFamilySet())

		Convey("When there are offspeed rows", func() {
			_, _, err := s.Score(context.Background(), []model.FeatureRow{
				row("1", "Slider", 85),
				row("1", "Changeup", 84),
			})

			Convey("Then the run fails with ErrModelUnavailable", func() {
				So(errors.Is(err, registry.ErrModelUnavailable), ShouldBeTrue)
			})
		})

		Convey("When there are no offspeed rows", func() {
			out, _, err := s.Score(context.Background(), []model.FeatureRow{row("1", "Slider", 85)})

			Convey("Then the missing model is never consulted", func() {
				So(err, ShouldBeNil)
				So(out, ShouldHaveLength, 1)
			})
		})
	})

	Convey("Given a classifier that misbehaves", t, func() {
		bad := registry.ClassifierFunc(func(m registry.Matrix) ([]float64, error) {
			return []float64{1.5}, nil
		})
		reg := registry.New(map[registry.Family]registry.Classifier{
			registry.Fastball: bad, registry.Breaking: bad, registry.Offspeed: bad,
		})
		s := scoring.NewScorer(reg, registry.DefaultFamilySet())

		Convey("Then out of range and short outputs are rejected", func() {
			_, _, err := s.Score(context.Background(), []model.FeatureRow{row("1", "Slider", 85)})
			So(errors.Is(err, scoring.ErrBadPrediction), ShouldBeTrue)
			_, _, err = s.Score(context.Background(), []model.FeatureRow{row("1", "Slider", 85), row("2", "Slider", 86)})
			So(errors.Is(err, scoring.ErrBadPrediction), ShouldBeTrue)
		})
	})
}

func TestStandardize(t *testing.T) {
	Convey("Given constant values", t, func() {
		So(scoring.Standardize([]float64{0.3, 0.3, 0.3}, 100, 15), ShouldResemble, []float64{100, 100, 100})
	})

	Convey("Given two values", t, func() {
		out := scoring.Standardize([]float64{0.2, 0.4}, 100, 15)
		So(out[0], ShouldAlmostEqual, 85, 1e-9)
		So(out[1], ShouldAlmostEqual, 115, 1e-9)
	})

	Convey("Given a custom scale", t, func() {
		out := scoring.Standardize([]float64{1, 3}, 50, 10)
		So(out, ShouldResemble, []float64{40, 60})
	})
}

func TestColumnsFor(t *testing.T) {
	Convey("Sinkers drop the differentials", t, func() {
		So(scoring.ColumnsFor("Sinker"), ShouldHaveLength, 13)
		So(scoring.ColumnsFor("Slider"), ShouldResemble, model.FeatureColumns)
	})
}
