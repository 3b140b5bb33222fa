package api

import (
	"context"
	"net/http"

	"github.com/okian/pitchplus/internal/domain/model"
)

// RefreshDependencies queues leaderboard rebuilds.
type RefreshDependencies interface {
	RequestRefresh(ctx context.Context) (model.RefreshJob, error)
}

// RefreshHandler handles refresh requests
type RefreshHandler struct {
	deps RefreshDependencies
}

// NewRefreshHandler creates a new refresh handler
func NewRefreshHandler(deps RefreshDependencies) *RefreshHandler {
	return &RefreshHandler{deps: deps}
}

// HandlePostRefresh handles POST /refresh requests. The rebuild runs
// asynchronously; the response carries the job id.
func (h *RefreshHandler) HandlePostRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_refresh"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	job, err := h.deps.RequestRefresh(r.Context())
	if err != nil {
		writeDomainError(w, op, err)
		return
	}
	writeJSON(w, http.StatusAccepted, newRefreshResponse(job))
}
