// Package repository keeps identification runs in memory and ranks the AOIs
// of completed runs across jobs.
package repository

import (
	"container/list"
	"context"
	"sync"

	"github.com/okian/heataoi/internal/domain/model"
	"github.com/okian/heataoi/internal/domain/types"
	"github.com/okian/heataoi/pkg/metrics"
)

// DefaultRetention is the number of runs kept by default.
const DefaultRetention = 1000

// Store provides read/write access to runs.
type Store interface {
	// Put inserts or replaces the run with run.JobID.
	Put(ctx context.Context, run model.Run) error

	// Delete removes a run and its hotspots. Unknown IDs are ignored.
	Delete(ctx context.Context, jobID string) error

	// Get returns the run of a job, or ErrNotFound.
	Get(ctx context.Context, jobID string) (model.Run, error)

	// TopN returns the n best AOIs across stored runs, score DESC then job
	// ID ASC. n must be at least 1.
	TopN(ctx context.Context, n int) ([]types.Hotspot, error)

	// Count returns the number of stored runs.
	Count(ctx context.Context) int
}

type entry struct {
	run      model.Run
	hotspots []*hotspot
	elem     *list.Element
}

// MemoryStore is a bounded Store backed by a map, an insertion-order list
// for eviction and a treap over every stored AOI.
type MemoryStore struct {
	mu        sync.RWMutex
	byID      map[string]*entry
	order     *list.List // of job IDs, oldest first
	root      *node
	retention int
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{
		byID:      make(map[string]*entry),
		order:     list.New(),
		retention: DefaultRetention,
	}
	for _, opt := range opts {
		opt(s)
	}
	metrics.UpdateRunsStored(0)
	return s
}

func (s *MemoryStore) Put(_ context.Context, run model.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byID[run.JobID]
	if ok {
		s.unindex(e)
	} else {
		e = &entry{elem: s.order.PushBack(run.JobID)}
		s.byID[run.JobID] = e
	}
	e.run = run
	s.index(e)

	for s.retention > 0 && s.order.Len() > s.retention {
		s.evict(s.order.Front())
	}
	metrics.UpdateRunsStored(len(s.byID))
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.byID[jobID]; ok {
		s.evict(e.elem)
	}
	metrics.UpdateRunsStored(len(s.byID))
	return nil
}

func (s *MemoryStore) Get(_ context.Context, jobID string) (model.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byID[jobID]
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return model.Run{}, ErrNotFound
	}
	return e.run, nil
}

func (s *MemoryStore) TopN(_ context.Context, n int) ([]types.Hotspot, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}

	s.mu.RLock()
	hs := make([]*hotspot, 0, min(n, nsize(s.root)))
	collect(s.root, n, &hs)
	s.mu.RUnlock()

	out := make([]types.Hotspot, len(hs))
	for i, h := range hs {
		out[i] = types.Hotspot{
			Rank:        i + 1,
			JobID:       h.jobID,
			Score:       h.result.Score,
			Window:      h.result.Window,
			TopLeft:     h.result.TopLeft,
			BottomRight: h.result.BottomRight,
		}
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// index adds the AOIs of a finished run to the ranking. Must hold s.mu.
func (s *MemoryStore) index(e *entry) {
	if e.run.Report == nil || !e.run.Status.Terminal() {
		return
	}
	for _, r := range e.run.Report.AOIs {
		h := &hotspot{jobID: e.run.JobID, result: r}
		s.root = insert(s.root, h)
		e.hotspots = append(e.hotspots, h)
	}
}

// unindex removes the AOIs of e from the ranking. Must hold s.mu.
func (s *MemoryStore) unindex(e *entry) {
	for _, h := range e.hotspots {
		s.root = remove(s.root, h)
	}
	e.hotspots = nil
}

func (s *MemoryStore) evict(el *list.Element) {
	id := s.order.Remove(el).(string)
	if e, ok := s.byID[id]; ok {
		s.unindex(e)
		delete(s.byID, id)
	}
}
