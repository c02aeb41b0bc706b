// Package service wires the identification pipeline, the job queue, the
// worker pool and the run store behind the operations the HTTP API and the
// CLI need.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/heataoi/internal/adapters/mq/queue"
	"github.com/okian/heataoi/internal/adapters/mq/worker"
	"github.com/okian/heataoi/internal/adapters/repository"
	"github.com/okian/heataoi/internal/domain/align"
	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/dedupe"
	"github.com/okian/heataoi/internal/domain/model"
	"github.com/okian/heataoi/internal/domain/raster"
	"github.com/okian/heataoi/internal/domain/scoring"
	"github.com/okian/heataoi/internal/domain/types"
	"github.com/okian/heataoi/internal/domain/validation"
	"github.com/okian/heataoi/pkg/logger"
	"github.com/okian/heataoi/pkg/metrics"
)

// Service implements the API dependencies of the AOI service.
type Service struct {
	mu sync.RWMutex

	store   repository.Store
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *worker.Pool

	workerCount     int
	queueSize       int
	dedupeSize      int
	runRetention    int
	defaults        aoi.Params
	alignResolution float64
	halfSize        float64

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of identification workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the job queue capacity.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets how many request IDs are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size >= 0 {
			s.dedupeSize = size
		}
	}
}

// WithRunRetention bounds the run store.
func WithRunRetention(runs int) Option {
	return func(s *Service) {
		if runs >= 0 {
			s.runRetention = runs
		}
	}
}

// WithDefaults sets the parameters used when a request leaves them unset.
func WithDefaults(p aoi.Params) Option {
	return func(s *Service) {
		if p.TopN > 0 {
			s.defaults.TopN = p.TopN
		}
		if p.TargetKM > 0 {
			s.defaults.TargetKM = p.TargetKM
		}
	}
}

// WithAlignResolution sets the default alignment resolution.
func WithAlignResolution(res float64) Option {
	return func(s *Service) {
		if res > 0 {
			s.alignResolution = res
		}
	}
}

// WithValidationHalfSize sets the default half side of the validation box.
func WithValidationHalfSize(half float64) Option {
	return func(s *Service) {
		if half > 0 {
			s.halfSize = half
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service. Start must be called before jobs are accepted;
// the synchronous operations work without it.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:     runtime.NumCPU(),
		queueSize:       256,
		dedupeSize:      dedupe.DefaultMaxSize,
		runRetention:    repository.DefaultRetention,
		defaults:        aoi.DefaultParams(),
		alignResolution: align.DefaultResolution,
		halfSize:        validation.DefaultHalfSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start creates the queue, store and worker pool and launches the workers.
// The workers do not stop with ctx; Stop drains the queue and ends them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting heat AOI service...")

	s.store = repository.NewMemoryStore(repository.WithRetention(s.runRetention))
	s.deduper = dedupe.New(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.queueSize))
	s.pool = worker.NewPool(s.workerCount, s.queue, worker.IdentifyFunc(s.identifyJob), s.store,
		worker.WithLogger(s.logger.Named("workers")))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.logger.Info(ctx, "heat AOI service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("run_retention", s.runRetention),
	)
	return nil
}

// Stop closes the queue and waits for queued jobs until ctx expires.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.logger.Info(ctx, "stopping heat AOI service...")
	err := s.pool.Shutdown(ctx)
	s.started = false
	if err != nil {
		return fmt.Errorf("stop service: %w", err)
	}
	s.logger.Info(ctx, "heat AOI service stopped")
	return nil
}

func (s *Service) params(topN int, targetKM float64) aoi.Params {
	p := s.defaults
	if topN != 0 {
		p.TopN = topN
	}
	if targetKM != 0 {
		p.TargetKM = targetKM
	}
	return p
}

func layersOf(req types.IdentifyRequest) scoring.Layers {
	return scoring.Layers{
		Temperature: req.Temperature,
		Vegetation:  req.Vegetation,
		Height:      req.Height,
	}
}

// Identify runs the pipeline synchronously. On exhaustion the partial
// report is returned together with an error matching
// aoi.ErrExhaustedCandidates.
func (s *Service) Identify(ctx context.Context, req types.IdentifyRequest) (aoi.Report, error) {
	return s.identify(ctx, layersOf(req), req.Transform, s.params(req.TopN, req.TargetKM))
}

func (s *Service) identifyJob(ctx context.Context, j model.Job) (aoi.Report, error) {
	return s.identify(ctx, j.Layers, j.Transform, j.Params)
}

func (s *Service) identify(ctx context.Context, layers scoring.Layers, t raster.Transform, p aoi.Params) (aoi.Report, error) {
	start := time.Now()
	rep, err := aoi.Identify(layers, t, p)
	metrics.RecordIdentifyLatency(float64(time.Since(start).Milliseconds()))

	if err != nil && !errors.Is(err, aoi.ErrExhaustedCandidates) {
		metrics.RecordErrorByComponent("identify", "invalid_input")
		return rep, err
	}
	metrics.UpdateWindowSize(rep.WindowSize)
	metrics.RecordAOIsSelected(len(rep.AOIs))
	for _, layer := range rep.Degenerate {
		metrics.RecordDegenerateLayer(layer)
		s.logger.Warn(ctx, "layer has no dynamic range", logger.String("layer", layer))
	}
	if err != nil {
		metrics.RecordExhaustedSelection()
		s.logger.Info(ctx, "fewer AOIs than requested",
			logger.Int("requested", rep.Requested),
			logger.Int("found", len(rep.AOIs)),
		)
	}
	return rep, err
}

// Submit queues an identification job. A request ID that was already
// submitted returns the original job with Duplicate set.
func (s *Service) Submit(ctx context.Context, req types.IdentifyRequest) (types.JobAccepted, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.JobAccepted{}, ErrNotStarted
	}

	job := model.Job{
		ID:          uuid.NewString(),
		RequestID:   req.RequestID,
		Layers:      layersOf(req),
		Transform:   req.Transform,
		Params:      s.params(req.TopN, req.TargetKM),
		SubmittedAt: time.Now(),
	}

	if job.RequestID != "" {
		if owner, dup := s.deduper.Claim(ctx, job.RequestID, job.ID); dup {
			metrics.RecordJobDuplicate()
			s.logger.Debug(ctx, "duplicate request", logger.String("request_id", job.RequestID), logger.String("job_id", owner))
			return types.JobAccepted{JobID: owner, Status: "duplicate", Duplicate: true}, nil
		}
	}

	if err := s.store.Put(ctx, model.NewRun(job)); err != nil {
		s.release(ctx, job)
		return types.JobAccepted{}, fmt.Errorf("store run: %w", err)
	}
	if err := s.queue.Enqueue(ctx, job); err != nil {
		s.release(ctx, job)
		_ = s.store.Delete(ctx, job.ID)
		if errors.Is(err, queue.ErrFull) || errors.Is(err, queue.ErrClosed) {
			return types.JobAccepted{}, fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return types.JobAccepted{}, err
	}

	metrics.RecordJobSubmitted()
	return types.JobAccepted{JobID: job.ID, Status: string(model.StatusQueued)}, nil
}

func (s *Service) release(ctx context.Context, j model.Job) {
	if j.RequestID != "" {
		s.deduper.Release(ctx, j.RequestID)
	}
}

// Run returns the run of a job.
func (s *Service) Run(ctx context.Context, jobID string) (model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return model.Run{}, ErrNotStarted
	}
	return s.store.Get(ctx, jobID)
}

// TopN returns the best AOIs across completed runs.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Hotspot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store.TopN(ctx, n)
}

// Plan computes the alignment plan for the layers.
func (s *Service) Plan(_ context.Context, req types.PlanRequest) (align.Plan, error) {
	res := req.Resolution
	if res == 0 {
		res = s.alignResolution
	}
	return align.NewPlan(res, req.Layers...)
}

// Validate compares a height grid with building heights.
func (s *Service) Validate(ctx context.Context, req types.ValidateRequest) (validation.Summary, error) {
	half := req.HalfSize
	if half == 0 {
		half = s.halfSize
	}
	box := validation.BBoxAround(req.Center.X, req.Center.Y, half)
	sum, err := validation.Validate(req.Height, req.Transform, req.Buildings, box)
	if err != nil {
		metrics.RecordErrorByComponent("validation", "invalid_input")
		return validation.Summary{}, err
	}
	metrics.RecordValidationBuildings(sum.Evaluated)
	s.logger.Debug(ctx, "validation finished",
		logger.Int("buildings", len(req.Buildings)),
		logger.Int("evaluated", sum.Evaluated),
		logger.Float64("mean_difference", sum.MeanDifference),
	)
	return sum, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
		"dedupeSize":   s.dedupeSize,
		"runRetention": s.runRetention,
		"topN":         s.defaults.TopN,
		"targetKM":     s.defaults.TargetKM,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len()
		stats["activeWorkers"] = s.pool.Active()
		stats["runs"] = s.store.Count(ctx)
		stats["requestIDs"] = s.deduper.Size()
		metrics.UpdateQueueSize(s.queue.Len())
	}
	return stats
}
