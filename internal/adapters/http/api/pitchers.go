package api

import (
	"context"
	"net/http"
	"strings"
)

// PitcherDependencies defines the interface for single-pitcher reads.
type PitcherDependencies interface {
	Pitcher(ctx context.Context, pitcherID string) (Entry, error)
}

// PitcherHandler handles pitcher requests.
type PitcherHandler struct {
	deps PitcherDependencies
}

// NewPitcherHandler creates a new pitcher handler.
func NewPitcherHandler(deps PitcherDependencies) *PitcherHandler {
	return &PitcherHandler{deps: deps}
}

// HandleGetPitcher handles GET /pitchers/{pitcher_id} requests.
func (h *PitcherHandler) HandleGetPitcher(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_pitcher"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/pitchers/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	entry, err := h.deps.Pitcher(r.Context(), id)
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
