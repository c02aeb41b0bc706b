package api

import (
	"context"
	"net/http"

	"github.com/okian/heataoi/internal/domain/align"
	"github.com/okian/heataoi/internal/domain/types"
)

// maxPlanBody bounds a plan request, which carries only layer metadata.
const maxPlanBody = 64 << 10

// AlignDependencies defines the interface for alignment planning.
type AlignDependencies interface {
	Plan(ctx context.Context, req types.PlanRequest) (align.Plan, error)
}

// AlignHandler handles alignment planning requests.
type AlignHandler struct {
	deps AlignDependencies
}

// NewAlignHandler creates a new align handler.
func NewAlignHandler(deps AlignDependencies) *AlignHandler {
	return &AlignHandler{deps: deps}
}

// HandlePlan handles POST /align/plan requests.
func (h *AlignHandler) HandlePlan(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.PlanRequest
	if err := decodeJSON(w, r, maxPlanBody, &req); err != nil {
		writeFailure(w, err)
		return
	}
	plan, err := h.deps.Plan(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
