// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/heataoi/internal/adapters/mq/queue"
	"github.com/okian/heataoi/internal/adapters/repository"
	"github.com/okian/heataoi/internal/domain/align"
	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/model"
	"github.com/okian/heataoi/internal/domain/raster"
	"github.com/okian/heataoi/internal/domain/types"
	"github.com/okian/heataoi/internal/domain/validation"
)

// Default request limits.
const (
	DefaultMaxGridCells    = 16_000_000
	DefaultMaxHotspotLimit = 100

	// bytesPerCell bounds the JSON encoding of one float64 including the
	// separator; three layers share a request.
	bytesPerCell = 26
	bodySlack    = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Identify runs the pipeline synchronously.
	Identify(ctx context.Context, req types.IdentifyRequest) (aoi.Report, error)

	// Submit queues an identification job.
	Submit(ctx context.Context, req types.IdentifyRequest) (types.JobAccepted, error)

	// Run returns the run record of a job.
	Run(ctx context.Context, jobID string) (model.Run, error)

	// TopN returns the best AOIs across completed runs.
	TopN(ctx context.Context, n int) ([]types.Hotspot, error)

	Plan(ctx context.Context, req types.PlanRequest) (align.Plan, error)
	Validate(ctx context.Context, req types.ValidateRequest) (validation.Summary, error)
}

// Limits bounds what a single request may ask for.
type Limits struct {
	MaxGridCells    int
	MaxHotspotLimit int
}

func (l Limits) maxBodyBytes() int64 {
	return int64(l.MaxGridCells)*3*bytesPerCell + bodySlack
}

// Option configures a Server.
type Option func(*Server)

// WithLimits overrides the default request limits. Non-positive fields keep
// their defaults.
func WithLimits(l Limits) Option {
	return func(s *Server) {
		if l.MaxGridCells > 0 {
			s.limits.MaxGridCells = l.MaxGridCells
		}
		if l.MaxHotspotLimit > 0 {
			s.limits.MaxHotspotLimit = l.MaxHotspotLimit
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	limits Limits

	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	aoiHandler      *AOIHandler
	jobsHandler     *JobsHandler
	hotspotsHandler *HotspotsHandler
	alignHandler    *AlignHandler
	validateHandler *ValidateHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{limits: Limits{
		MaxGridCells:    DefaultMaxGridCells,
		MaxHotspotLimit: DefaultMaxHotspotLimit,
	}}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.aoiHandler = NewAOIHandler(deps, s.limits)
	s.jobsHandler = NewJobsHandler(deps, s.limits)
	s.hotspotsHandler = NewHotspotsHandler(deps, s.limits.MaxHotspotLimit)
	s.alignHandler = NewAlignHandler(deps)
	s.validateHandler = NewValidateHandler(deps, s.limits)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/aoi", MetricsMiddleware(s.aoiHandler.HandleIdentify, "aoi"))
	mux.HandleFunc("/jobs", MetricsMiddleware(s.jobsHandler.HandleSubmit, "jobs"))
	mux.HandleFunc("/jobs/", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job"))
	mux.HandleFunc("/hotspots", MetricsMiddleware(s.hotspotsHandler.HandleGetHotspots, "hotspots"))
	mux.HandleFunc("/align/plan", MetricsMiddleware(s.alignHandler.HandlePlan, "align_plan"))
	mux.HandleFunc("/validate", MetricsMiddleware(s.validateHandler.HandleValidate, "validate"))
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

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("%w: body exceeds %d bytes", ErrTooLarge, tooLarge.Limit)
		}
		return fmt.Errorf("%w: %w", ErrBadRequest, err)
	}
	return nil
}

// writeFailure translates an error from the dependencies or the request
// decoding into a status code.
func writeFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
	case errors.Is(err, ErrBackpressure), errors.Is(err, queue.ErrFull), errors.Is(err, queue.ErrClosed):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case isInvalid(err):
		writeError(w, http.StatusBadRequest, "bad_request", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
	}
}

func isInvalid(err error) bool {
	for _, target := range []error{
		ErrBadRequest,
		aoi.ErrInvalidInput,
		align.ErrEmptyIntersection,
		align.ErrInvalidResolution,
		validation.ErrInvalidInput,
		raster.ErrShape,
		raster.ErrTransform,
		repository.ErrInvalidLimit,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
