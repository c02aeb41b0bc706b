// Package worker runs queued identification jobs and records their runs.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/model"
	"github.com/okian/heataoi/pkg/logger"
	"github.com/okian/heataoi/pkg/metrics"
)

// Identifier computes the AOI report of a job.
type Identifier interface {
	Identify(ctx context.Context, j model.Job) (aoi.Report, error)
}

// IdentifyFunc adapts a function to Identifier.
type IdentifyFunc func(ctx context.Context, j model.Job) (aoi.Report, error)

func (f IdentifyFunc) Identify(ctx context.Context, j model.Job) (aoi.Report, error) {
	return f(ctx, j)
}

// Recorder stores finished runs.
type Recorder interface {
	Put(ctx context.Context, run model.Run) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan model.Job
}

// ErrStopped is recorded on runs whose job was still queued when the pool
// was stopped.
var ErrStopped = errors.New("worker pool stopped before the job ran")

// Pool is a fixed set of goroutines draining one queue.
type Pool struct {
	size       int
	queue      Queue
	identifier Identifier
	recorder   Recorder
	name       string
	logger     logger.Logger

	active   atomic.Int64
	wg       sync.WaitGroup
	stop     chan struct{}
	stopOnce sync.Once
}

// NewPool creates a pool of size workers. A size below 1 uses one worker
// per CPU.
func NewPool(size int, q Queue, id Identifier, rec Recorder, opts ...Option) *Pool {
	if size < 1 {
		size = runtime.NumCPU()
	}
	p := &Pool{
		size:       size,
		queue:      q,
		identifier: id,
		recorder:   rec,
		name:       "worker-pool",
		stop:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named(p.name)
	}
	metrics.UpdateWorkerCount(size)
	metrics.UpdateWorkerActiveCount(0)
	return p
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

// Active returns the number of workers currently running a job.
func (p *Pool) Active() int { return int(p.active.Load()) }

// Start launches the workers. They exit when ctx is done, when the queue's
// channel closes, or on Stop.
func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		p.wg.Add(1)
		go p.run(ctx, p.logger.Named("worker-"+strconv.Itoa(i)))
	}
}

func (p *Pool) run(ctx context.Context, log logger.Logger) {
	defer p.wg.Done()

	jobs := p.queue.Dequeue(ctx)
	for {
		select {
		case <-p.stop:
			p.abandon(ctx, log, jobs)
			return
		default:
		}

		select {
		case <-ctx.Done():
			return
		case <-p.stop:
			p.abandon(ctx, log, jobs)
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			if err := p.process(ctx, log, j); err != nil {
				log.Error(ctx, "failed to record run", logger.String("job_id", j.ID), logger.Error(err))
			}
		}
	}
}

// process runs one job. Only a failure to record the run is returned;
// identification errors become the run's status.
func (p *Pool) process(ctx context.Context, log logger.Logger, j model.Job) error { //nolint:gocritic // hugeParam: jobs are passed by value through the queue
	metrics.UpdateWorkerActiveCount(int(p.active.Add(1)))
	defer func() { metrics.UpdateWorkerActiveCount(int(p.active.Add(-1))) }()

	start := time.Now()
	rep, err := p.identifier.Identify(ctx, j)

	run := model.NewRun(j)
	run.CompletedAt = time.Now()
	switch {
	case err == nil:
		run.Status = model.StatusDone
		run.Report = &rep
	case errors.Is(err, aoi.ErrExhaustedCandidates):
		run.Status = model.StatusPartial
		run.Report = &rep
		run.Error = err.Error()
	default:
		run.Status = model.StatusFailed
		run.Error = err.Error()
		metrics.RecordErrorByComponent("worker", "identify")
		log.Warn(ctx, "identification failed", logger.String("job_id", j.ID), logger.Error(err))
	}
	metrics.RecordJobCompleted(string(run.Status))

	if err := p.recorder.Put(ctx, run); err != nil {
		metrics.RecordErrorByComponent("worker", "record")
		return fmt.Errorf("record run %s: %w", j.ID, err)
	}
	log.Debug(ctx, "job finished",
		logger.String("job_id", j.ID),
		logger.String("status", string(run.Status)),
		logger.Duration("took", run.CompletedAt.Sub(start)),
		logger.Bool("has_request_id", j.RequestID != ""),
	)
	return nil
}

// abandon records every job still delivered on jobs as failed with
// ErrStopped, until the queue closes or ctx is done.
func (p *Pool) abandon(ctx context.Context, log logger.Logger, jobs <-chan model.Job) {
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-jobs:
			if !ok {
				return
			}
			run := model.NewRun(j)
			run.Status = model.StatusFailed
			run.Error = ErrStopped.Error()
			run.CompletedAt = time.Now()
			metrics.RecordJobCompleted(string(run.Status))
			metrics.RecordErrorByComponent("worker", "abandoned")
			if err := p.recorder.Put(ctx, run); err != nil {
				log.Error(ctx, "failed to record run", logger.String("job_id", j.ID), logger.Error(err))
				continue
			}
			log.Warn(ctx, "job abandoned", logger.String("job_id", j.ID))
		}
	}
}

// Stop signals the workers to return after their current job. Jobs the
// queue still delivers are recorded as failed instead of run, so Stop is
// normally paired with closing the queue.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
}

// Shutdown closes the queue when it supports it, lets the workers drain it
// and waits for them. When ctx expires first the workers are stopped and
// ctx's error is returned.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		p.Stop()
		p.logger.Warn(ctx, "worker pool shutdown timed out")
		return fmt.Errorf("worker pool shutdown: %w", ctx.Err())
	}
}
