package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/types"
)

// AOIDependencies defines the interface for synchronous identification.
type AOIDependencies interface {
	Identify(ctx context.Context, req types.IdentifyRequest) (aoi.Report, error)
}

// AOIHandler handles synchronous identification requests.
type AOIHandler struct {
	deps   AOIDependencies
	limits Limits
}

// NewAOIHandler creates a new AOI handler.
func NewAOIHandler(deps AOIDependencies, limits Limits) *AOIHandler {
	return &AOIHandler{deps: deps, limits: limits}
}

// HandleIdentify handles POST /aoi requests.
func (h *AOIHandler) HandleIdentify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	req, err := readIdentifyRequest(w, r, h.limits)
	if err != nil {
		writeFailure(w, err)
		return
	}

	rep, err := h.deps.Identify(r.Context(), req)
	var exhausted *aoi.ExhaustedError
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, types.IdentifyResponse{Report: rep})
	case errors.As(err, &exhausted):
		writeJSON(w, http.StatusUnprocessableEntity, types.IdentifyResponse{
			Report:    rep,
			Exhausted: &types.Exhausted{Requested: exhausted.Requested, Found: exhausted.Found},
		})
	default:
		writeFailure(w, err)
	}
}

// readIdentifyRequest decodes and checks the body shared by POST /aoi and
// POST /jobs.
func readIdentifyRequest(w http.ResponseWriter, r *http.Request, limits Limits) (types.IdentifyRequest, error) {
	var req types.IdentifyRequest
	if err := decodeJSON(w, r, limits.maxBodyBytes(), &req); err != nil {
		return req, err
	}
	switch {
	case req.Temperature == nil:
		return req, fmt.Errorf("%w: missing temperature", ErrBadRequest)
	case req.Vegetation == nil:
		return req, fmt.Errorf("%w: missing vegetation", ErrBadRequest)
	case req.Height == nil:
		return req, fmt.Errorf("%w: missing height", ErrBadRequest)
	case req.TopN < 0:
		return req, fmt.Errorf("%w: top_n must not be negative", ErrBadRequest)
	case req.TargetKM < 0:
		return req, fmt.Errorf("%w: target_km must not be negative", ErrBadRequest)
	}
	if n := req.Cells(); n > limits.MaxGridCells {
		return req, fmt.Errorf("%w: %d cells exceed the limit of %d", ErrTooLarge, n, limits.MaxGridCells)
	}
	return req, nil
}
