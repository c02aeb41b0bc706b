// Package dedupe tracks client request IDs so that a resubmitted job is
// answered with the job it already created.
package dedupe

import (
	"container/list"
	"context"
	"sync"
)

// DefaultMaxSize is the number of request IDs remembered by default.
const DefaultMaxSize = 10000

// Deduper maps request IDs to the job they created.
type Deduper interface {
	// Claim records requestID as owned by jobID. When requestID is already
	// claimed it returns the owning job and true, and nothing changes.
	Claim(ctx context.Context, requestID, jobID string) (owner string, duplicate bool)

	// Release forgets requestID so a later submission can claim it again.
	// Used when the job it was claimed for never made it onto the queue.
	Release(ctx context.Context, requestID string)

	Size() int
}

type claim struct {
	requestID string
	jobID     string
}

type fifoDeduper struct {
	mu      sync.Mutex
	byID    map[string]*list.Element
	order   *list.List // front is the oldest claim
	maxSize int
}

// New returns an in-memory Deduper with FIFO eviction.
func New(opts ...Option) Deduper {
	d := &fifoDeduper{maxSize: DefaultMaxSize}
	for _, opt := range opts {
		opt(d)
	}
	d.byID = make(map[string]*list.Element)
	d.order = list.New()
	return d
}

func (d *fifoDeduper) Claim(_ context.Context, requestID, jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.byID[requestID]; ok {
		return el.Value.(claim).jobID, true
	}
	if d.maxSize > 0 && d.order.Len() >= d.maxSize {
		oldest := d.order.Front()
		d.order.Remove(oldest)
		delete(d.byID, oldest.Value.(claim).requestID)
	}
	d.byID[requestID] = d.order.PushBack(claim{requestID: requestID, jobID: jobID})
	return jobID, false
}

func (d *fifoDeduper) Release(_ context.Context, requestID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if el, ok := d.byID[requestID]; ok {
		d.order.Remove(el)
		delete(d.byID, requestID)
	}
}

func (d *fifoDeduper) Size() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.order.Len()
}
