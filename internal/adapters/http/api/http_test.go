package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchplus/internal/adapters/http/api"
	"github.com/okian/pitchplus/internal/adapters/repository"
	"github.com/okian/pitchplus/internal/domain/model"
	"github.com/okian/pitchplus/pkg/logger"
)

func init() {
	logger.Init()
}

type mockDependencies struct {
	entries    []api.Entry
	columns    []string
	boardErr   error
	lastQuery  api.Query
	refreshErr error
	refreshes  int
	stats      map[string]interface{}
}

func (m *mockDependencies) Leaderboard(_ context.Context, q api.Query) ([]api.Entry, error) {
	m.lastQuery = q
	if m.boardErr != nil {
		return nil, m.boardErr
	}
	if q.Limit > 0 && q.Limit < len(m.entries) {
		return m.entries[:q.Limit], nil
	}
	return m.entries, nil
}

func (m *mockDependencies) PitchColumns(context.Context) []string { return m.columns }

func (m *mockDependencies) Pitcher(_ context.Context, id string) (api.Entry, error) {
	for _, e := range m.entries {
		if e.PitcherID == id {
			return e, nil
		}
	}
	return api.Entry{}, repository.ErrNotFound
}

func (m *mockDependencies) RequestRefresh(context.Context) (model.RefreshJob, error) {
	if m.refreshErr != nil {
		return model.RefreshJob{}, m.refreshErr
	}
	m.refreshes++
	return model.RefreshJob{ID: "job-1"}, nil
}

func (m *mockDependencies) GetStats() map[string]interface{} { return m.stats }

func newDeps() *mockDependencies {
	return &mockDependencies{
		columns: []string{"4-Seam Fastball", "Slider"},
		entries: []api.Entry{
			{Rank: 1, LeaderboardRow: model.LeaderboardRow{
				PitcherID: "1", Name: "Alpha One", Team: model.Some("NYY"), IP: model.Some(60.0),
				PitchingPlus: 112, ByPitch: map[string]int{"4-Seam Fastball": 110, "Slider": 114},
			}},
			{Rank: 2, LeaderboardRow: model.LeaderboardRow{
				PitcherID: "2", Name: "Bravo Two", PitchingPlus: 95, ByPitch: map[string]int{"Slider": 95},
			}},
		},
		stats: map[string]interface{}{"totalPitchers": 2},
	}
}

func serve(mux *http.ServeMux, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, http.NoBody)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, 10).Register(context.Background(), mux)

		Convey("Then health serves metrics", func() {
			So(serve(mux, "GET", "/healthz").Code, ShouldEqual, http.StatusOK)
		})

		Convey("Then stats serves the provider's map", func() {
			w := serve(mux, "GET", "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]interface{}
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body["totalPitchers"], ShouldEqual, 2.0)
		})

		Convey("Then unknown paths are not found", func() {
			So(serve(mux, "GET", "/unknown").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given a leaderboard endpoint", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, 10).Register(context.Background(), mux)

		Convey("When asking without parameters", func() {
			w := serve(mux, "GET", "/leaderboard")

			Convey("Then every row comes back with the pitch columns", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var body struct {
					PitchColumns []string                 `json:"pitch_columns"`
					Rows         []map[string]interface{} `json:"rows"`
				}
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body.PitchColumns, ShouldResemble, []string{"4-Seam Fastball", "Slider"})
				So(len(body.Rows), ShouldEqual, 2)
				So(body.Rows[0]["pitcher_id"], ShouldEqual, "1")
				So(body.Rows[0]["team"], ShouldEqual, "NYY")
				So(body.Rows[1]["team"], ShouldBeNil)
				So(body.Rows[1]["ip"], ShouldBeNil)
				So(deps.lastQuery, ShouldResemble, api.Query{})
			})
		})

		Convey("When filters are given", func() {
			w := serve(mux, "GET", "/leaderboard?limit=1&min_ip=20.5&qualified=true")

			Convey("Then they reach the query", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldResemble, api.Query{Limit: 1, MinIP: model.Some(20.5), Qualified: true})
			})
		})

		Convey("When min_ip is zero", func() {
			w := serve(mux, "GET", "/leaderboard?min_ip=0")

			Convey("Then the innings filter is still set", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(deps.lastQuery, ShouldResemble, api.Query{MinIP: model.Some(0.0)})
			})
		})

		Convey("When parameters are invalid", func() {
			for _, target := range []string{
				"/leaderboard?limit=0",
				"/leaderboard?limit=abc",
				"/leaderboard?limit=11",
				"/leaderboard?min_ip=-1",
				"/leaderboard?qualified=maybe",
			} {
				So(serve(mux, "GET", target).Code, ShouldEqual, http.StatusBadRequest)
			}
		})

		Convey("When no leaderboard has been built yet", func() {
			deps.boardErr = repository.ErrNoSnapshot
			So(serve(mux, "GET", "/leaderboard").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When thresholds are missing for a qualified query", func() {
			deps.boardErr = model.ErrNoThresholds
			w := serve(mux, "GET", "/leaderboard?qualified=true")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
			So(w.Body.String(), ShouldContainSubstring, "no_thresholds")
		})

		Convey("When the service fails", func() {
			deps.boardErr = errors.New("boom")
			So(serve(mux, "GET", "/leaderboard").Code, ShouldEqual, http.StatusInternalServerError)
		})

		Convey("When the method is not GET", func() {
			So(serve(mux, "POST", "/leaderboard").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestPitcherHandler(t *testing.T) {
	Convey("Given a pitcher endpoint", t, func() {
		mux := http.NewServeMux()
		api.NewServer(newDeps(), 10).Register(context.Background(), mux)

		Convey("Then a known pitcher is returned with rank", func() {
			w := serve(mux, "GET", "/pitchers/2")
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]interface{}
			So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
			So(body["rank"], ShouldEqual, 2.0)
			So(body["player_name"], ShouldEqual, "Bravo Two")
		})

		Convey("Then an unknown pitcher is not found", func() {
			So(serve(mux, "GET", "/pitchers/404").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("Then a malformed path is a bad request", func() {
			So(serve(mux, "GET", "/pitchers/").Code, ShouldEqual, http.StatusBadRequest)
			So(serve(mux, "GET", "/pitchers/1/x").Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRefreshHandler(t *testing.T) {
	Convey("Given a refresh endpoint", t, func() {
		deps := newDeps()
		mux := http.NewServeMux()
		api.NewServer(deps, 10).Register(context.Background(), mux)

		Convey("When a refresh is accepted", func() {
			w := serve(mux, "POST", "/refresh")

			Convey("Then the job id is returned", func() {
				So(w.Code, ShouldEqual, http.StatusAccepted)
				var body map[string]string
				So(json.NewDecoder(w.Body).Decode(&body), ShouldBeNil)
				So(body["job_id"], ShouldEqual, "job-1")
				So(body["status"], ShouldEqual, "accepted")
				So(deps.refreshes, ShouldEqual, 1)
			})
		})

		Convey("When the refresh queue is full", func() {
			deps.refreshErr = model.ErrRefreshBusy
			So(serve(mux, "POST", "/refresh").Code, ShouldEqual, http.StatusTooManyRequests)
		})

		Convey("When the service is not started", func() {
			deps.refreshErr = model.ErrNotStarted
			So(serve(mux, "POST", "/refresh").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("When the method is GET", func() {
			So(serve(mux, "GET", "/refresh").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestErrors(t *testing.T) {
	Convey("Given API errors", t, func() {
		cause := errors.New("cause")

		Convey("Then kind and cause are both visible to errors.Is", func() {
			err := api.WrapKind("api.op", api.ErrBadRequest, cause)
			So(errors.Is(err, api.ErrBadRequest), ShouldBeTrue)
			So(errors.Is(err, cause), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: bad request: cause")
		})

		Convey("Then NewKind carries only the kind", func() {
			err := api.NewKind("api.op", api.ErrBackpressure)
			So(errors.Is(err, api.ErrBackpressure), ShouldBeTrue)
			So(err.Error(), ShouldEqual, "api.op: backpressure")
		})

		Convey("Then Wrap of nil is nil", func() {
			So(api.Wrap("api.op", nil), ShouldBeNil)
		})
	})
}
