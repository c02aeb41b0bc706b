package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/okian/heataoi/internal/domain/model"
	"github.com/okian/heataoi/internal/domain/types"
)

// JobsDependencies defines the interface for asynchronous identification.
type JobsDependencies interface {
	Submit(ctx context.Context, req types.IdentifyRequest) (types.JobAccepted, error)
	Run(ctx context.Context, jobID string) (model.Run, error)
}

// JobsHandler handles job submission and lookup.
type JobsHandler struct {
	deps   JobsDependencies
	limits Limits
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(deps JobsDependencies, limits Limits) *JobsHandler {
	return &JobsHandler{deps: deps, limits: limits}
}

// HandleSubmit handles POST /jobs requests.
func (h *JobsHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := readIdentifyRequest(w, r, h.limits)
	if err != nil {
		writeFailure(w, err)
		return
	}
	req.RequestID = strings.TrimSpace(req.RequestID)

	acc, err := h.deps.Submit(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	if acc.Duplicate {
		writeJSON(w, http.StatusOK, acc)
		return
	}
	writeJSON(w, http.StatusAccepted, acc)
}

// HandleGetJob handles GET /jobs/{id} requests.
func (h *JobsHandler) HandleGetJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	run, err := h.deps.Run(r.Context(), id)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
