package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/okian/heataoi/internal/domain/types"
	"github.com/okian/heataoi/internal/domain/validation"
)

// ValidateDependencies defines the interface for height validation.
type ValidateDependencies interface {
	Validate(ctx context.Context, req types.ValidateRequest) (validation.Summary, error)
}

// ValidateHandler handles height validation requests.
type ValidateHandler struct {
	deps   ValidateDependencies
	limits Limits
}

// NewValidateHandler creates a new validate handler.
func NewValidateHandler(deps ValidateDependencies, limits Limits) *ValidateHandler {
	return &ValidateHandler{deps: deps, limits: limits}
}

// HandleValidate handles POST /validate requests.
func (h *ValidateHandler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req types.ValidateRequest
	if err := decodeJSON(w, r, h.limits.maxBodyBytes(), &req); err != nil {
		writeFailure(w, err)
		return
	}
	if req.Height == nil {
		writeFailure(w, fmt.Errorf("%w: missing height", ErrBadRequest))
		return
	}
	if n := req.Height.Len(); n > h.limits.MaxGridCells {
		writeFailure(w, fmt.Errorf("%w: %d cells exceed the limit of %d", ErrTooLarge, n, h.limits.MaxGridCells))
		return
	}
	sum, err := h.deps.Validate(r.Context(), req)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}
