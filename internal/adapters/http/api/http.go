// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/pitchplus/internal/adapters/repository"
	"github.com/okian/pitchplus/internal/domain/model"
)

// DefaultMaxLimit bounds ?limit= when the server is built without one.
const DefaultMaxLimit = 1000

// Dependencies required by HTTP handlers.
type Dependencies interface {
	LeaderboardDependencies
	PitcherDependencies
	RefreshDependencies
	StatsProvider
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = repository.Entry

// Query selects leaderboard rows.
type Query = model.LeaderboardQuery

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	refreshHandler     *RefreshHandler
	leaderboardHandler *LeaderboardHandler
	pitcherHandler     *PitcherHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLimit int) *Server {
	if maxLimit <= 0 {
		maxLimit = DefaultMaxLimit
	}
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(deps),
		refreshHandler:     NewRefreshHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLimit),
		pitcherHandler:     NewPitcherHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/refresh", MetricsMiddleware(s.refreshHandler.HandlePostRefresh, "refresh"))
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/pitchers/", MetricsMiddleware(s.pitcherHandler.HandleGetPitcher, "pitchers"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps service and store errors to a status.
func writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, repository.ErrNoSnapshot):
		writeError(w, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err))
	case errors.Is(err, repository.ErrInvalidLimit):
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
	case errors.Is(err, model.ErrNoThresholds):
		writeError(w, http.StatusServiceUnavailable, "no_thresholds", WrapKind(op, ErrNotReady, err))
	case errors.Is(err, model.ErrRefreshBusy):
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
	case errors.Is(err, model.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "not_started", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}

// leaderboardResponse is the GET /leaderboard body.
type leaderboardResponse struct {
	PitchColumns []string `json:"pitch_columns"`
	Rows         []Entry  `json:"rows"`
}

// refreshResponse is the POST /refresh body.
type refreshResponse struct {
	Status string `json:"status"`
	JobID  string `json:"job_id"`
}

func newRefreshResponse(job model.RefreshJob) refreshResponse {
	return refreshResponse{Status: "accepted", JobID: job.ID}
}
