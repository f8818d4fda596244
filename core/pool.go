package core

import (
	"runtime/debug"
	"sync"
	"time"
)

// WorkerPool executes submitted tasks on a dynamically resizable set of
// worker goroutines.
//
// The pool's queue, counters and lifecycle flags are guarded by one
// shared mutex. Workers block on the semaphore condition while idle,
// Wait blocks on the finished condition until the pool is quiescent
// (queue empty and no task assigned), and Close blocks on the kill
// switch until the last worker has exited.
//
// All methods are safe to call from any goroutine, including from
// within a task running on the pool itself. The one logical exception
// is Wait: called from inside a task it waits for its own completion
// and therefore never returns.
type WorkerPool struct {
	name string

	mu         sync.Mutex
	semaphore  *sync.Cond // work available, or a lifecycle flag changed
	finished   *sync.Cond // pool became quiescent
	killSwitch *sync.Cond // last worker exited during teardown

	queue TaskQueue

	halt   bool // stop receiving tasks, exit once the queue is empty
	pause  bool // workers must not start new tasks
	prune  bool // surplus workers must exit when idle
	closed bool

	workers      int // running workers
	target       int // desired workers
	nextWorkerID int

	received  uint64
	assigned  uint64
	completed uint64
	aborted   uint64

	panicHandler    PanicHandler
	metrics         Metrics
	rejectedHandler RejectedTaskHandler
	logger          Logger
	invariantMode   InvariantMode
}

// NewWorkerPool creates a pool with the given number of workers and
// default configuration. All workers are live when it returns.
func NewWorkerPool(name string, workers int) *WorkerPool {
	return NewWorkerPoolWithConfig(name, workers, DefaultPoolConfig())
}

// NewWorkerPoolWithConfig creates a pool with explicit configuration.
// Nil config fields fall back to defaults.
func NewWorkerPoolWithConfig(name string, workers int, config *PoolConfig) *WorkerPool {
	p := &WorkerPool{name: name}
	p.semaphore = sync.NewCond(&p.mu)
	p.finished = sync.NewCond(&p.mu)
	p.killSwitch = sync.NewCond(&p.mu)

	if config != nil {
		p.queue = config.Queue
		p.panicHandler = config.PanicHandler
		p.metrics = config.Metrics
		p.rejectedHandler = config.RejectedTaskHandler
		p.logger = config.Logger
		p.invariantMode = config.InvariantMode
	}
	if p.queue == nil {
		p.queue = NewFIFOTaskQueue()
	}
	if p.panicHandler == nil {
		p.panicHandler = &DefaultPanicHandler{}
	}
	if p.metrics == nil {
		p.metrics = &NilMetrics{}
	}
	if p.rejectedHandler == nil {
		p.rejectedHandler = &DefaultRejectedTaskHandler{}
	}
	if p.logger == nil {
		p.logger = &NoOpLogger{}
	}

	p.Resize(workers)
	return p
}

// post appends a wrapped task to the queue and wakes one idle worker.
// It reports false when the pool is stopping; the caller resolves the
// task's handle as cancelled.
func (p *WorkerPool) post(item TaskItem) bool {
	p.mu.Lock()
	if p.halt {
		p.mu.Unlock()
		p.rejectedHandler.HandleRejectedTask(p.name, "stopping")
		p.metrics.RecordTaskRejected(p.name, "stopping")
		return false
	}
	p.received++
	p.queue.Push(item)
	depth := p.queue.Len()
	p.mu.Unlock()

	p.metrics.RecordQueueDepth(p.name, depth)
	p.semaphore.Signal()
	return true
}

// Resize sets the target worker count.
//
// Growing spawns the missing workers immediately; each signals
// readiness before Resize returns, so the caller can rely on the new
// capacity being live. Shrinking sets the prune condition: no worker is
// forcibly killed, surplus workers exit voluntarily the next time they
// are idle. No-op while the pool is stopping.
//
// A paused pool prunes lazily: workers blocked at the pause gate only
// observe the surplus after Resume.
func (p *WorkerPool) Resize(n int) {
	if n < 0 {
		n = 0
	}

	p.mu.Lock()
	if p.halt {
		p.mu.Unlock()
		return
	}

	p.target = n
	p.prune = p.workers > p.target

	var ready sync.WaitGroup
	for p.workers < p.target {
		p.workers++
		p.nextWorkerID++
		ready.Add(1)
		go p.worker(p.nextWorkerID, &ready)
	}
	prune := p.prune
	p.mu.Unlock()

	if prune {
		p.semaphore.Broadcast()
	}
	ready.Wait()
}

// worker runs the dispatch loop for one pool goroutine.
func (p *WorkerPool) worker(id int, ready *sync.WaitGroup) {
	ready.Done()
	p.logger.Debug("worker ready", F("pool", p.name), F("worker", id))

	p.mu.Lock()
	for {
		// Pause gate. A halted pool passes through so it can drain
		// and shut down even while paused.
		for p.pause && !p.halt {
			p.semaphore.Wait()
		}

		// Block until there is something to do or a reason to exit.
		for !p.halt && !p.prune && p.queue.IsEmpty() {
			p.semaphore.Wait()
		}

		if (p.halt && p.queue.IsEmpty()) || p.workers > p.target {
			break
		}
		if p.pause && !p.halt {
			continue
		}

		item, ok := p.queue.Pop()
		if !ok {
			continue
		}
		p.assigned++
		p.mu.Unlock()

		p.runTask(id, item.Run)

		p.mu.Lock()
		p.assigned--
		p.completed++

		// Signal any Wait callers once the pool is quiescent.
		if p.assigned == 0 && p.queue.IsEmpty() {
			p.finished.Broadcast()
		}
	}

	p.workers--
	// Re-evaluate the prune condition for the next worker.
	p.prune = p.workers > p.target
	lastDuringTeardown := p.workers == 0 && p.halt
	p.mu.Unlock()

	if lastDuringTeardown {
		p.killSwitch.Broadcast()
	}
	p.logger.Debug("worker exiting", F("pool", p.name), F("worker", id))
}

// runTask executes one task outside the shared lock. A panicking task
// never kills the worker: the panic is recorded through PanicHandler
// and Metrics, and the task's handle has already captured it.
func (p *WorkerPool) runTask(id int, task Task) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			p.panicHandler.HandlePanic(p.name, id, r, debug.Stack())
			p.metrics.RecordTaskPanic(p.name, r)
		}
		p.metrics.RecordTaskDuration(p.name, time.Since(start))
	}()
	task()
}

// Pause prevents workers from starting new tasks. Tasks already
// running are unaffected. Submissions are still accepted while paused.
func (p *WorkerPool) Pause() {
	p.mu.Lock()
	p.pause = true
	p.mu.Unlock()
}

// Resume lifts a Pause and wakes all blocked workers.
func (p *WorkerPool) Resume() {
	p.mu.Lock()
	p.pause = false
	p.mu.Unlock()
	p.semaphore.Broadcast()
}

// Stop discards all queued (not yet assigned) tasks, counting them as
// aborted and resolving their handles as cancelled, then lets workers
// observe the stop and exit once idle. Tasks already assigned to a
// worker run to completion. Idempotent.
func (p *WorkerPool) Stop() {
	p.mu.Lock()
	if p.halt {
		p.mu.Unlock()
		return
	}
	p.halt = true
	drained := p.queue.Drain()
	p.aborted += uint64(len(drained))
	if p.assigned == 0 {
		p.finished.Broadcast()
	}
	p.mu.Unlock()

	p.semaphore.Broadcast()
	for _, item := range drained {
		item.abort()
	}
	if len(drained) > 0 {
		p.metrics.RecordQueueDepth(p.name, 0)
	}
	p.logger.Info("pool stopped", F("pool", p.name), F("aborted", len(drained)))
}

// Wait blocks, without busy-spinning, until the pool is quiescent:
// the queue is empty and no task is currently assigned. Safe to call
// concurrently with Submit. While the pool is paused with pending
// work, Wait stays blocked; quiescence means no pending work, not no
// active workers.
func (p *WorkerPool) Wait() {
	p.mu.Lock()
	for !(p.queue.IsEmpty() && p.assigned == 0) {
		p.finished.Wait()
	}
	p.mu.Unlock()
}

// Close shuts the pool down gracefully: no new submissions are
// accepted, tasks still queued run to completion, and Close returns
// once every worker has exited. It then reconciles the lifecycle
// counters; received != completed+aborted means a task was lost, which
// panics by default (see InvariantMode). Idempotent.
func (p *WorkerPool) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.halt = true
	p.pause = false
	p.semaphore.Broadcast()

	for {
		// With no workers left (resized to zero, or all pruned away),
		// nothing will ever drain the queue.
		if p.workers == 0 && !p.queue.IsEmpty() {
			drained := p.queue.Drain()
			p.aborted += uint64(len(drained))
			for _, item := range drained {
				item.abort()
			}
		}
		if p.assigned == 0 && p.queue.IsEmpty() && p.workers == 0 {
			break
		}
		p.killSwitch.Wait()
	}
	p.finished.Broadcast()

	received, completed, aborted := p.received, p.completed, p.aborted
	p.mu.Unlock()

	p.logger.Info("pool closed",
		F("pool", p.name),
		F("received", received),
		F("completed", completed),
		F("aborted", aborted))

	if received != completed+aborted {
		err := &InvariantError{
			Pool:      p.name,
			Received:  received,
			Completed: completed,
			Aborted:   aborted,
		}
		if p.invariantMode == InvariantPanic {
			panic(err)
		}
		p.logger.Error("lifecycle invariant violated", F("pool", p.name), F("error", err))
		return err
	}
	return nil
}

// Name returns the pool's name, used as the label on diagnostics and
// metrics.
func (p *WorkerPool) Name() string {
	return p.name
}

// WorkerCount returns the number of currently running workers.
func (p *WorkerPool) WorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.workers
}

// TargetWorkerCount returns the desired worker count set by Resize.
func (p *WorkerPool) TargetWorkerCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// TasksEnqueued returns the number of tasks waiting in the queue.
func (p *WorkerPool) TasksEnqueued() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.queue.Len()
}

// TasksReceived returns the number of accepted submissions.
func (p *WorkerPool) TasksReceived() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.received
}

// TasksAssigned returns the number of tasks currently executing.
func (p *WorkerPool) TasksAssigned() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.assigned
}

// TasksCompleted returns the number of tasks that finished executing,
// including tasks that panicked.
func (p *WorkerPool) TasksCompleted() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.completed
}

// TasksAborted returns the number of queued tasks discarded by Stop.
func (p *WorkerPool) TasksAborted() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.aborted
}

// Paused reports whether the pool is currently paused.
func (p *WorkerPool) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pause
}

// Stopping reports whether Stop or Close has been called.
func (p *WorkerPool) Stopping() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.halt
}

// Stats returns a consistent snapshot of the pool's counters.
func (p *WorkerPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Name:      p.name,
		Workers:   p.workers,
		Target:    p.target,
		Queued:    p.queue.Len(),
		Active:    int(p.assigned),
		Received:  p.received,
		Completed: p.completed,
		Aborted:   p.aborted,
		Paused:    p.pause,
		Stopping:  p.halt,
	}
}
