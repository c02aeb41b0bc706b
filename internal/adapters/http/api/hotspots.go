package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/heataoi/internal/domain/types"
)

// HotspotsDependencies defines the interface for the cross-run ranking.
type HotspotsDependencies interface {
	TopN(ctx context.Context, n int) ([]types.Hotspot, error)
}

// HotspotsHandler handles hotspot ranking requests.
type HotspotsHandler struct {
	deps     HotspotsDependencies
	maxLimit int
}

// NewHotspotsHandler creates a new hotspots handler.
func NewHotspotsHandler(deps HotspotsDependencies, maxLimit int) *HotspotsHandler {
	return &HotspotsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleGetHotspots handles GET /hotspots?limit=N requests.
func (h *HotspotsHandler) HandleGetHotspots(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || n < 1 {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest))
		return
	}
	if n > h.maxLimit {
		writeError(w, http.StatusBadRequest, "limit_exceeded", fmt.Errorf("%w: limit exceeds %d", ErrBadRequest, h.maxLimit))
		return
	}
	hotspots, err := h.deps.TopN(r.Context(), n)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hotspots)
}
