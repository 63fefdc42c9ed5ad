// Package service runs retrievers on a bounded pool of worker goroutines.
//
// Submission never blocks: retrievers wait in an unbounded FIFO queue until a
// worker is free. A retriever counts as pending from submission until its Run
// (including post-processing) returns.
package service

import (
	"context"
	"runtime"
	"sync"

	"github.com/glorpus-work/geofetch/internal/logger"
	pkgerrors "github.com/glorpus-work/geofetch/pkg/errors"
	"github.com/glorpus-work/geofetch/pkg/retriever"
)

// Service is a fixed-size worker pool for retrievers.
type Service struct {
	workers int

	mu      sync.Mutex
	cond    *sync.Cond
	queue   []retriever.Retriever
	pending map[retriever.Identity]int
	total   int
	started bool
	closed  bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a service with the given number of workers. If workers <= 0, a
// default based on the CPU count is used.
func New(workers int) *Service {
	if workers <= 0 {
		workers = max(2, runtime.NumCPU()/2)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &Service{
		workers: workers,
		pending: make(map[retriever.Identity]int),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.cond = sync.NewCond(&s.mu)
	return s
}

// Workers returns the pool size.
func (s *Service) Workers() int {
	return s.workers
}

// Start launches the workers. Retrievers run under a context derived from ctx;
// cancelling it aborts in-flight fetches, which then post-process a failure.
// Calling Start more than once has no effect.
func (s *Service) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || s.closed {
		return
	}
	s.started = true
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)

	for w := 0; w < s.workers; w++ {
		s.wg.Add(1)
		go s.work()
	}
	logger.Debug("Retrieval service started", logger.Fields{"workers": s.workers})
}

// Submit queues r for execution.
func (s *Service) Submit(r retriever.Retriever) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return pkgerrors.ErrServiceClosed
	}
	s.queue = append(s.queue, r)
	s.pending[r.Identity()]++
	s.total++
	s.cond.Signal()
	return nil
}

// PendingCount returns the number of retrievers queued or running.
func (s *Service) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

// IsPending reports whether a retriever with the identity is queued or running.
func (s *Service) IsPending(id retriever.Identity) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending[id] > 0
}

// Close stops accepting retrievers, cancels in-flight fetches and waits for
// the workers to finish. Retrievers still queued are run with the cancelled
// context so their post-processors release any waiters.
func (s *Service) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	started := s.started
	s.cond.Broadcast()
	s.mu.Unlock()

	s.cancel()
	if started {
		s.wg.Wait()
		return
	}
	for {
		r, ok := s.next()
		if !ok {
			return
		}
		s.execute(r)
	}
}

func (s *Service) work() {
	defer s.wg.Done()
	for {
		r, ok := s.next()
		if !ok {
			return
		}
		s.execute(r)
	}
}

// next blocks until a retriever is available or the service is closed and drained.
func (s *Service) next() (retriever.Retriever, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for len(s.queue) == 0 && !s.closed {
		s.cond.Wait()
	}
	if len(s.queue) == 0 {
		return nil, false
	}
	r := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return r, true
}

func (s *Service) execute(r retriever.Retriever) {
	id := r.Identity()
	defer s.done(id)
	defer func() {
		if p := recover(); p != nil {
			logger.Error("Retriever panicked", logger.Fields{"url": id.URL, "panic": p})
		}
	}()

	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()
	r.Run(ctx)
}

func (s *Service) done(id retriever.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[id]--
	if s.pending[id] <= 0 {
		delete(s.pending, id)
	}
	s.total--
}
