package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/pitchplus/internal/config"
	"github.com/okian/pitchplus/pkg/logger"
)

func init() {
	_ = logger.Init()
}

func testConfig(t *testing.T) *config.Config {
	cfg := config.New()
	dir := t.TempDir()
	cfg.ModelDir = filepath.Join(dir, "models")
	cfg.DBPath = filepath.Join(dir, "data", "pitchplus.db")
	cfg.RefreshOnStart = false
	return cfg
}

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When configuration comes from the environment", func() {
			t.Setenv("PITCHPLUS_ADDR", ":8080")
			t.Setenv("PITCHPLUS_CHUNK_DAYS", "3")
			t.Setenv("PITCHPLUS_FASTBALL_PITCHES", "4-Seam Fastball, Sinker, Cutter")

			convey.Convey("Then it is loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.ChunkDays, convey.ShouldEqual, 3)
				convey.So(cfg.FastballPitches, convey.ShouldResemble, []string{"4-Seam Fastball", "Sinker", "Cutter"})
			})
		})

		convey.Convey("When the log settings are applied", func() {
			cfg := config.New()
			cfg.LogFormat = "json"
			cfg.LogLevel = "loud"

			convey.Convey("Then an unknown level falls back without failing", func() {
				convey.So(setupLogging(context.Background(), cfg), convey.ShouldBeNil)
			})

			convey.Convey("Then an unknown format fails", func() {
				cfg.LogFormat = "xml"
				convey.So(setupLogging(context.Background(), cfg), convey.ShouldNotBeNil)
				_ = logger.Init()
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a service wired from config without models", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		cfg := testConfig(t)
		svc, closeStore, err := newService(ctx, cfg)
		convey.So(err, convey.ShouldBeNil)
		defer closeStore()

		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer func() { _ = svc.Stop(ctx) }()

		mux := newMux(ctx, svc, cfg.MaxLeaderboardLimit)
		get := func(target string) *httptest.ResponseRecorder {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest("GET", target, http.NoBody))
			return w
		}

		convey.Convey("Then metrics and docs are served", func() {
			convey.So(get("/healthz").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/openapi.yaml").Code, convey.ShouldEqual, http.StatusOK)
			convey.So(get("/stats").Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then the leaderboard is not ready before the first refresh", func() {
			convey.So(get("/leaderboard").Code, convey.ShouldEqual, http.StatusServiceUnavailable)
			convey.So(get("/pitchers/1").Code, convey.ShouldEqual, http.StatusServiceUnavailable)
		})

		convey.Convey("Then the snapshot database was created", func() {
			_, err := os.Stat(cfg.DBPath)
			convey.So(err, convey.ShouldBeNil)
		})
	})

	convey.Convey("Given an invalid season start", t, func() {
		cfg := testConfig(t)
		cfg.SeasonStart = "March"
		_, _, err := newService(context.Background(), cfg)
		convey.So(err, convey.ShouldNotBeNil)
	})
}

func TestSystemMetrics(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.So(updateSystemMetrics, convey.ShouldNotPanic)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()
		convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
	})
}
