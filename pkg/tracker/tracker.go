// Package tracker deduplicates concurrent retrievals of the same identity.
//
// The first caller for an identity registers an entry and starts one physical
// retrieval. Callers arriving before it resolves are appended as waiters;
// callers arriving after it resolves, but before the entry is swept, receive
// the resolved result immediately. Every waiter of an entry is invoked exactly
// once, in registration order, with the identical result.
//
// Handlers run while the tracker lock is held. They must not block; long work
// has to be handed off to another goroutine by the handler itself.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/glorpus-work/geofetch/internal/logger"
	"github.com/glorpus-work/geofetch/pkg/result"
	"github.com/glorpus-work/geofetch/pkg/retriever"
)

// DefaultSweepInterval is how often resolved entries are reaped.
const DefaultSweepInterval = 5 * time.Second

// Handler receives the shared result of a tracked retrieval.
type Handler interface {
	Handle(r result.Result, cached bool)
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(r result.Result, cached bool)

// Handle calls f(r, cached).
func (f HandlerFunc) Handle(r result.Result, cached bool) { f(r, cached) }

// PendingReporter is the view of the retrieval service used by the sweep.
type PendingReporter interface {
	PendingCount() int
	IsPending(id retriever.Identity) bool
}

// StartFunc starts the physical retrieval for a new entry. The post-processor
// it receives resolves the entry. StartFunc is called with the tracker lock
// held and must not block or resolve the entry synchronously.
type StartFunc func(post retriever.PostProcessor) error

// Tracker is the in-flight table.
type Tracker struct {
	mu       sync.Mutex
	entries  map[retriever.Identity]*entry
	pending  PendingReporter
	interval time.Duration

	lifecycleMu sync.Mutex
	stop        context.CancelFunc
	done        chan struct{}
}

type entry struct {
	t        *Tracker
	id       retriever.Identity
	handlers []Handler
	result   result.Result
	resolved bool
}

// New creates a tracker whose sweep consults pending. A non-positive interval
// selects DefaultSweepInterval.
func New(pending PendingReporter, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	return &Tracker{
		entries:  make(map[retriever.Identity]*entry),
		pending:  pending,
		interval: interval,
	}
}

// Join registers h for id. If no entry exists, one is created and start is
// called to launch the retrieval; an error from start removes the entry and
// is returned. If an unresolved entry exists, h is queued. If a resolved entry
// exists, h is invoked before Join returns.
func (t *Tracker) Join(id retriever.Identity, h Handler, start StartFunc) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if e, ok := t.entries[id]; ok {
		if e.resolved {
			h.Handle(e.result, false)
			return nil
		}
		e.handlers = append(e.handlers, h)
		return nil
	}

	e := &entry{t: t, id: id, handlers: []Handler{h}}
	t.entries[id] = e
	if err := start(e); err != nil {
		delete(t.entries, id)
		return err
	}
	return nil
}

// Process resolves the entry and notifies its waiters in order.
func (e *entry) Process(r result.Result) {
	e.t.mu.Lock()
	defer e.t.mu.Unlock()
	if e.resolved {
		return
	}
	e.result = r
	e.resolved = true
	for _, h := range e.handlers {
		h.Handle(r, false)
	}
	e.handlers = nil
}

// Len returns the number of tracked entries.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Active reports whether an entry exists for id.
func (t *Tracker) Active(id retriever.Identity) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.entries[id]
	return ok
}

// Sweep removes entries whose retrieval is no longer pending. When nothing is
// pending at all the table is cleared outright.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := len(t.entries)
	if t.pending.PendingCount() <= 0 {
		clear(t.entries)
	} else {
		for id := range t.entries {
			if !t.pending.IsPending(id) {
				delete(t.entries, id)
			}
		}
	}
	removed := before - len(t.entries)
	if removed > 0 {
		logger.Debug("Swept in-flight entries", logger.Fields{"removed": removed, "remaining": len(t.entries)})
	}
	return removed
}

// Start runs Sweep every interval until Stop is called or ctx is done.
// Calling Start while already running has no effect.
func (t *Tracker) Start(ctx context.Context) {
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()
	if t.stop != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	t.stop = cancel
	t.done = make(chan struct{})

	go func(done chan struct{}) {
		defer close(done)
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				t.Sweep()
			}
		}
	}(t.done)
}

// Stop halts the periodic sweep and waits for it to exit.
func (t *Tracker) Stop() {
	t.lifecycleMu.Lock()
	defer t.lifecycleMu.Unlock()
	if t.stop == nil {
		return
	}
	t.stop()
	<-t.done
	t.stop = nil
	t.done = nil
}
