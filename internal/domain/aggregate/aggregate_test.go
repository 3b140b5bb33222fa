package aggregate_test

import (
	"context"
	"testing"

	"github.com/okian/pitchplus/internal/domain/aggregate"
	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

func scored(pitcher, name, pitch string, plus float64) model.ScoredPitch {
	return model.ScoredPitch{
		FeatureRow:   model.FeatureRow{PitcherID: pitcher, PlayerName: name, PitchName: pitch},
		PitchingPlus: plus,
	}
}

func TestAggregate(t *testing.T) {
	ctx := context.Background()

	Convey("Given scored pitches for two pitchers", t, func() {
		pitches := []model.ScoredPitch{
			scored("100", "Smith, José", "4-Seam Fastball", 110),
			scored("200", "Doe, John", "Slider", 90),
			scored("100", "Smith, Jose", "Slider", 120),
			scored("100", "Smith, José", "4-Seam Fastball", 101),
			scored("200", "Doe, John", "Changeup", 96),
		}
		roster := aggregate.NewRoster([]model.RosterEntry{
			{PlayerID: "100", Name: "Jose Smith", Team: "NYY", IP: 150.1, WHIP: 1.1},
		})

		Convey("When aggregating", func() {
			lb, rep := aggregate.Aggregate(ctx, pitches, roster)

			Convey("Then pitch columns are in encounter order", func() {
				So(lb.PitchColumns, ShouldResemble, []string{"4-Seam Fastball", "Slider", "Changeup"})
				So(lb.Columns()[:6], ShouldResemble, []string{"pitcher", "player_name", "team", "IP", "whip", "Pitching+"})
			})

			Convey("Then per-pitch means are rounded half to even", func() {
				top := lb.Rows[0]
				So(top.PitcherID, ShouldEqual, "100")
				So(top.ByPitch["4-Seam Fastball"], ShouldEqual, 106) // 105.5
				So(top.ByPitch["Slider"], ShouldEqual, 120)
			})

			Convey("Then the overall score is the mean of individual pitches", func() {
				So(lb.Rows[0].PitchingPlus, ShouldEqual, 110) // (110+120+101)/3 = 110.33
				So(lb.Rows[1].PitchingPlus, ShouldEqual, 93)
			})

			Convey("Then the first-seen name is kept and normalized", func() {
				So(lb.Rows[0].Name, ShouldEqual, "Jose Smith")
				So(lb.Rows[1].Name, ShouldEqual, "John Doe")
			})

			Convey("Then every thrown pair has a cell and the rest are missing", func() {
				So(lb.Rows[1].Pitch("Slider").Valid, ShouldBeTrue)
				So(lb.Rows[1].Pitch("4-Seam Fastball").Valid, ShouldBeFalse)
				So(lb.Rows[0].Pitch("Changeup").Valid, ShouldBeFalse)
			})

			Convey("Then unmatched pitchers are kept with missing roster fields", func() {
				So(lb.Rows[0].Team, ShouldResemble, model.Some("NYY"))
				So(lb.Rows[0].IP, ShouldResemble, model.Some(150.1))
				So(lb.Rows[1].Team.Valid, ShouldBeFalse)
				So(lb.Rows[1].WHIP.Valid, ShouldBeFalse)
				So(rep.Unjoined, ShouldResemble, []string{"200"})
				So(rep.Pitchers, ShouldEqual, 2)
			})
		})

		Convey("When aggregating twice", func() {
			a, _ := aggregate.Aggregate(ctx, pitches, roster)
			b, _ := aggregate.Aggregate(ctx, pitches, roster)

			Convey("Then the tables are identical", func() {
				So(a, ShouldResemble, b)
			})
		})
	})

	Convey("Given pitchers tied on overall score", t, func() {
		lb, _ := aggregate.Aggregate(ctx, []model.ScoredPitch{
			scored("9", "B, B", "Slider", 100),
			scored("10", "A, A", "Slider", 100),
		}, nil)

		Convey("Then ties are broken by pitcher id", func() {
			So(lb.Rows[0].PitcherID, ShouldEqual, "10")
			So(lb.Rows[1].PitcherID, ShouldEqual, "9")
		})
	})

	Convey("Given no pitches", t, func() {
		lb, rep := aggregate.Aggregate(ctx, nil, nil)
		So(lb.Rows, ShouldBeEmpty)
		So(rep.Pitchers, ShouldEqual, 0)
	})
}

func TestRound(t *testing.T) {
	Convey("Halves round to the even neighbour", t, func() {
		So(aggregate.Round(100.5), ShouldEqual, 100)
		So(aggregate.Round(101.5), ShouldEqual, 102)
		So(aggregate.Round(99.4), ShouldEqual, 99)
	})
}

func TestDisplayName(t *testing.T) {
	Convey("Given roster style names", t, func() {
		So(aggregate.DisplayName("Smith, José"), ShouldEqual, "Jose Smith")
		So(aggregate.DisplayName("Ohtani, Shohei"), ShouldEqual, "Shohei Ohtani")
		So(aggregate.DisplayName("Acuña Jr., Ronald"), ShouldEqual, "Ronald Acuna Jr.")
	})

	Convey("Given names without a comma", t, func() {
		So(aggregate.DisplayName(" Ichiro "), ShouldEqual, "Ichiro")
	})

	Convey("Given letters without a decomposition", t, func() {
		So(aggregate.ToASCII("Søren Łukasz Straße"), ShouldEqual, "Soren Lukasz Strasse")
	})
}
