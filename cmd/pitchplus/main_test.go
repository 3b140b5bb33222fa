package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/logger"
)

func init() {
	_ = logger.Init()
}

const savantHeader = "game_pk,at_bat_number,pitch_number,game_date,game_type,pitcher,player_name,stand,p_throws,pitch_name,description,release_speed,pfx_x,pfx_z,release_pos_x,release_pos_z,release_spin_rate,release_extension,plate_x,plate_z,balls,strikes,zone\n"

func savantRow(ab int, pitcher, name, pitch string, speed float64) string {
	return fmt.Sprintf("1,%d,1,2024-04-01,R,%s,%q,R,R,%s,ball,%.1f,0.5,1.2,-1.8,5.9,2300,6.4,0.1,2.5,0,0,5\n", ab, pitcher, name, pitch, speed)
}

func writeModels(t *testing.T) string {
	dir := t.TempDir()
	artifact := []byte(`{"kind":"logistic","features":["release_speed"],"coefficients":[0.1],"intercept":-9}`)
	for _, name := range []string{"fastball.json", "breaking.json", "offspeed.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), artifact, 0o600); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func TestRun(t *testing.T) {
	Convey("Given models and a Savant export", t, func() {
		dir := t.TempDir()
		t.Setenv("PITCHPLUS_MODEL_DIR", writeModels(t))

		input := filepath.Join(dir, "pitches.csv")
		body := savantHeader +
			savantRow(1, "500", "Smith, José", "4-Seam Fastball", 95) +
			savantRow(2, "500", "Smith, José", "Slider", 85) +
			savantRow(3, "600", "Doe, Jane", "4-Seam Fastball", 92) +
			savantRow(4, "600", "Doe, Jane", "Slider", 83) +
			savantRow(4, "600", "Doe, Jane", "Slider", 83)
		So(os.WriteFile(input, []byte(body), 0o600), ShouldBeNil)

		out := filepath.Join(dir, "board.csv")
		cli := CLI{Input: input, Output: out, NoRoster: true, Start: "2024-03-28", End: "2024-04-30"}

		Convey("When the command runs", func() {
			So(cli.Run(context.Background()), ShouldBeNil)

			Convey("Then the leaderboard is written as CSV", func() {
				got, err := os.ReadFile(out)
				So(err, ShouldBeNil)
				lines := strings.Split(strings.TrimSpace(string(got)), "\n")
				So(lines, ShouldResemble, []string{
					"pitcher,player_name,team,IP,whip,Pitching+,4-Seam Fastball,Slider",
					"500,Jose Smith,,,,115,115,115",
					"600,Jane Doe,,,,85,85,85",
				})
			})
		})

		Convey("When the window is reversed", func() {
			cli.Start, cli.End = "2024-05-01", "2024-04-01"
			So(cli.Run(context.Background()), ShouldNotBeNil)
		})
	})
}

func TestCriteria(t *testing.T) {
	Convey("Given the innings flags", t, func() {
		Convey("When none are set", func() {
			_, ok := (&CLI{}).criteria()
			So(ok, ShouldBeFalse)
		})

		Convey("When --min-ip=0 is set", func() {
			zero := 0.0
			crit, ok := (&CLI{MinIP: &zero}).criteria()

			Convey("Then pitchers without innings are filtered", func() {
				So(ok, ShouldBeTrue)
				So(crit.MinIP, ShouldResemble, model.Some(0.0))
				So(crit.Keep(&model.LeaderboardRow{PitcherID: "1"}), ShouldBeFalse)
				So(crit.Keep(&model.LeaderboardRow{PitcherID: "2", IP: model.Some(0.1)}), ShouldBeTrue)
			})
		})

		Convey("When --qualified is set", func() {
			crit, ok := (&CLI{Qualified: true}).criteria()
			So(ok, ShouldBeTrue)
			So(crit.Qualified, ShouldBeTrue)
		})
	})
}

func TestWriteCSV(t *testing.T) {
	Convey("Given a leaderboard with a missing cell and roster data", t, func() {
		lb := model.Leaderboard{
			PitchColumns: []string{"Sinker", "Changeup"},
			Rows: []model.LeaderboardRow{{
				PitcherID: "7", Name: "A B", Team: model.Some("SEA"),
				IP: model.Some(45.1), WHIP: model.Some(1.05), PitchingPlus: 104,
				ByPitch: map[string]int{"Changeup": 104},
			}},
		}
		var buf bytes.Buffer
		So(WriteCSV(&buf, lb), ShouldBeNil)
		So(buf.String(), ShouldEqual,
			"pitcher,player_name,team,IP,whip,Pitching+,Sinker,Changeup\n"+
				"7,A B,SEA,45.1,1.05,104,,104\n")
	})
}
