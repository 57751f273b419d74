// Package worker runs long generation jobs off the caller's goroutine on a
// single FIFO worker. One worker keeps presenter calls serialized.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

var (
	ErrQueueFull = errors.New("worker queue is full")
	ErrStopped   = errors.New("worker is stopped")
)

const defaultQueueSize = 16

// Job is one unit of work. It must honour ctx, and it always runs, even
// when ctx is already cancelled, so it can report its own outcome.
type Job func(ctx context.Context)

// Handle tracks a submitted job.
type Handle struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// Name returns the job name given at submission.
func (h *Handle) Name() string { return h.name }

// Cancel cancels the job's context. A queued job still runs, with the cancelled context.
func (h *Handle) Cancel() { h.cancel() }

// Done is closed when the job has returned.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Wait blocks until the job returns or ctx is done.
func (h *Handle) Wait(ctx context.Context) error {
	select {
	case <-h.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type task struct {
	handle *Handle
	job    Job
}

// Runner executes jobs one at a time in submission order.
type Runner struct {
	queue      chan task
	base       context.Context
	baseCancel context.CancelFunc
	finished   chan struct{}

	mu      sync.Mutex
	started bool
	stopped bool
}

// New creates a runner whose queue holds up to queueSize pending jobs.
func New(queueSize int) *Runner {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	base, cancel := context.WithCancel(context.Background())
	return &Runner{
		queue:      make(chan task, queueSize),
		base:       base,
		baseCancel: cancel,
		finished:   make(chan struct{}),
	}
}

// Submit queues job without blocking.
func (r *Runner) Submit(name string, job Job) (*Handle, error) {
	if job == nil {
		return nil, fmt.Errorf("submit %s: nil job", name)
	}

	ctx, cancel := context.WithCancel(r.base)
	h := &Handle{name: name, ctx: ctx, cancel: cancel, done: make(chan struct{})}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stopped {
		cancel()
		return nil, ErrStopped
	}
	select {
	case r.queue <- task{handle: h, job: job}:
		return h, nil
	default:
		cancel()
		return nil, ErrQueueFull
	}
}

// Pending returns the number of queued jobs not yet started.
func (r *Runner) Pending() int {
	return len(r.queue)
}

// Start processes jobs until Stop is called or ctx is done. When ctx ends,
// the remaining jobs still run, with cancelled contexts.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	if r.started {
		r.mu.Unlock()
		return
	}
	r.started = true
	r.mu.Unlock()
	defer close(r.finished)

	stop := context.AfterFunc(ctx, func() {
		r.baseCancel()
		r.closeQueue()
	})
	defer stop()

	slog.Info("worker started", "queue_size", cap(r.queue))
	for t := range r.queue {
		r.run(t)
	}
	slog.Info("worker stopped")
}

// Stop refuses new jobs, lets queued ones finish and waits for the worker to exit.
func (r *Runner) Stop() {
	r.closeQueue()

	r.mu.Lock()
	started := r.started
	r.mu.Unlock()
	if started {
		<-r.finished
	}
	r.baseCancel()
}

func (r *Runner) closeQueue() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.stopped {
		r.stopped = true
		close(r.queue)
	}
}

func (r *Runner) run(t task) {
	h := t.handle
	start := time.Now()
	defer func() {
		if rec := recover(); rec != nil {
			slog.Error("job panicked", "job", h.name, "panic", rec)
		}
		h.cancel()
		close(h.done)
		slog.Debug("job finished", "job", h.name, "duration", time.Since(start))
	}()

	if err := h.ctx.Err(); err != nil {
		slog.Info("running cancelled job", "job", h.name, "error", err)
	}
	t.job(h.ctx)
}
