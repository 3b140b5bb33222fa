package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/pitchplus/internal/domain/model"
)

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, q Query) ([]Entry, error)
	PitchColumns(ctx context.Context) []string
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /leaderboard?limit=N&min_ip=X&qualified=true requests.
// Without limit every matching row is returned.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	q, err := h.parseQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	entries, err := h.deps.Leaderboard(r.Context(), q)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	writeJSON(w, http.StatusOK, leaderboardResponse{
		PitchColumns: h.deps.PitchColumns(r.Context()),
		Rows:         entries,
	})
}

func (h *LeaderboardHandler) parseQuery(r *http.Request) (Query, error) {
	var q Query
	v := r.URL.Query()

	if s := v.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return q, errInvalidParam("limit")
		}
		if n > h.maxLimit {
			return q, errLimitExceeded(h.maxLimit)
		}
		q.Limit = n
	}
	if s := v.Get("min_ip"); s != "" {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f < 0 {
			return q, errInvalidParam("min_ip")
		}
		q.MinIP = model.Some(f)
	}
	if s := v.Get("qualified"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return q, errInvalidParam("qualified")
		}
		q.Qualified = b
	}
	return q, nil
}

func errInvalidParam(name string) error { return fmt.Errorf("invalid %s", name) }

func errLimitExceeded(maxLimit int) error { return fmt.Errorf("limit exceeds %d", maxLimit) }
