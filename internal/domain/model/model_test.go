package model_test

import (
	"encoding/json"
	"math"
	"testing"

	model "github.com/okian/pitchplus/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestOptional(t *testing.T) {
	convey.Convey("Given optional values", t, func() {
		convey.Convey("When a value is present", func() {
			o := model.Some("NYY")
			v, ok := o.Get()

			convey.Convey("Then Get reports it and JSON carries it", func() {
				convey.So(ok, convey.ShouldBeTrue)
				convey.So(v, convey.ShouldEqual, "NYY")
				b, err := json.Marshal(o)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldEqual, `"NYY"`)
			})
		})

		convey.Convey("When a value is absent", func() {
			o := model.None[float64]()

			convey.Convey("Then JSON encodes null and decodes back to absent", func() {
				b, err := json.Marshal(o)
				convey.So(err, convey.ShouldBeNil)
				convey.So(string(b), convey.ShouldEqual, "null")

				var back model.Optional[float64]
				convey.So(json.Unmarshal([]byte("null"), &back), convey.ShouldBeNil)
				convey.So(back.Valid, convey.ShouldBeFalse)
				convey.So(json.Unmarshal([]byte("1.5"), &back), convey.ShouldBeNil)
				convey.So(back, convey.ShouldResemble, model.Some(1.5))
			})
		})
	})
}

func TestFeatureRowValue(t *testing.T) {
	convey.Convey("Given a feature row", t, func() {
		row := model.FeatureRow{ReleaseSpeed: 95, VeloDiff: 2, BatterStance: 1, PlateZ: 2.5}

		convey.Convey("Then every canonical column is addressable", func() {
			convey.So(len(model.FeatureColumns), convey.ShouldEqual, 16)
			for _, c := range model.FeatureColumns {
				convey.So(model.IsFeatureColumn(c), convey.ShouldBeTrue)
				convey.So(math.IsNaN(row.Value(c)), convey.ShouldBeFalse)
			}
			convey.So(row.Value(model.ColReleaseSpeed), convey.ShouldEqual, 95)
			convey.So(row.Value(model.ColVeloDiff), convey.ShouldEqual, 2)
			convey.So(row.Value(model.ColPlateZ), convey.ShouldEqual, 2.5)
		})

		convey.Convey("Then unknown columns are missing", func() {
			convey.So(model.IsFeatureColumn("spin_axis"), convey.ShouldBeFalse)
			convey.So(model.IsMissing(row.Value("spin_axis")), convey.ShouldBeTrue)
		})
	})
}

func TestLeaderboardShape(t *testing.T) {
	convey.Convey("Given a leaderboard with two pitch columns", t, func() {
		lb := model.Leaderboard{PitchColumns: []string{"Slider", "Sinker"}}
		row := model.LeaderboardRow{ByPitch: map[string]int{"Slider": 110}}

		convey.So(lb.Columns(), convey.ShouldResemble, []string{"pitcher", "player_name", "team", "IP", "whip", "Pitching+", "Slider", "Sinker"})
		convey.So(row.Pitch("Slider"), convey.ShouldResemble, model.Some(110))
		convey.So(row.Pitch("Sinker").Valid, convey.ShouldBeFalse)
	})
}
