// Package types contains wire types shared by the API and the CLI.
package types

import (
	"github.com/okian/heataoi/internal/domain/align"
	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/raster"
	"github.com/okian/heataoi/internal/domain/validation"
)

// Hotspot is one AOI in the cross-run ranking.
type Hotspot struct {
	Rank        int          `json:"rank"`
	JobID       string       `json:"job_id"`
	Score       float64      `json:"score"`
	Window      aoi.Window   `json:"window"`
	TopLeft     raster.Point `json:"top_left"`
	BottomRight raster.Point `json:"bottom_right"`
}

// IdentifyRequest is the body of POST /aoi and POST /jobs and the layout of
// an identify bundle on disk.
type IdentifyRequest struct {
	RequestID   string           `json:"request_id,omitempty"`
	Temperature *raster.Grid     `json:"temperature"`
	Vegetation  *raster.Grid     `json:"vegetation"`
	Height      *raster.Grid     `json:"height"`
	Transform   raster.Transform `json:"transform"`
	TopN        int              `json:"top_n,omitempty"`
	TargetKM    float64          `json:"target_km,omitempty"`
}

// Cells is the largest layer size in the request.
func (r IdentifyRequest) Cells() int {
	n := 0
	for _, g := range []*raster.Grid{r.Temperature, r.Vegetation, r.Height} {
		if g != nil && g.Len() > n {
			n = g.Len()
		}
	}
	return n
}

// Exhausted describes a selection that ran out of candidates.
type Exhausted struct {
	Requested int `json:"requested"`
	Found     int `json:"found"`
}

// IdentifyResponse wraps an aoi.Report for the wire.
type IdentifyResponse struct {
	aoi.Report
	Exhausted *Exhausted `json:"exhausted,omitempty"`
}

// JobAccepted is returned by POST /jobs.
type JobAccepted struct {
	JobID     string `json:"job_id"`
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate,omitempty"`
}

// PlanRequest is the body of POST /align/plan. A zero Resolution uses the
// configured default.
type PlanRequest struct {
	Resolution float64       `json:"resolution,omitempty"`
	Layers     []align.Layer `json:"layers"`
}

// ValidateRequest is the body of POST /validate. The study box is the square
// of half side HalfSize around Center; zero uses the configured default.
type ValidateRequest struct {
	Height    *raster.Grid          `json:"height"`
	Transform raster.Transform      `json:"transform"`
	Center    raster.Point          `json:"center"`
	HalfSize  float64               `json:"half_size,omitempty"`
	Buildings []validation.Building `json:"buildings"`
}
