package core

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"
)

// ErrPoolStopped is the resolution of a handle whose task was rejected
// at submission (pool already stopping) or discarded by a stop-drain
// before a worker picked it up.
var ErrPoolStopped = errors.New("core: worker pool stopped")

// TaskPanicError carries the recovered panic value of a task that
// panicked during execution. It is surfaced only through the task's
// Future; the worker that ran the task keeps serving.
type TaskPanicError struct {
	Value any
	Stack []byte
}

func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("core: task panicked: %v", e.Value)
}

// Future is the result handle of one submitted task.
//
// A Future resolves exactly once, to one of:
//   - the task's value and error (task ran to completion),
//   - a *TaskPanicError (task panicked),
//   - ErrPoolStopped (submission rejected or task aborted by Stop).
//
// All methods are safe for concurrent use.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

func newFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// NewResolvedFuture returns a handle that is already resolved.
// Useful for fast paths that never touch the pool.
func NewResolvedFuture[T any](value T, err error) *Future[T] {
	f := newFuture[T]()
	f.resolve(value, err)
	return f
}

func (f *Future[T]) resolve(value T, err error) {
	f.once.Do(func() {
		f.value = value
		f.err = err
		close(f.done)
	})
}

func (f *Future[T]) fail(err error) {
	var zero T
	f.resolve(zero, err)
}

func (f *Future[T]) cancel() {
	f.fail(ErrPoolStopped)
}

// Done is closed once the future is resolved.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Get blocks until the future resolves and returns its outcome.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.value, f.err
}

// TryGet reports the outcome without blocking.
// ok is false while the task is still pending.
func (f *Future[T]) TryGet() (value T, err error, ok bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		return value, nil, false
	}
}

// Cancelled reports whether the future has already resolved to the
// rejected/aborted state. A pending future is not cancelled.
func (f *Future[T]) Cancelled() bool {
	select {
	case <-f.done:
		return errors.Is(f.err, ErrPoolStopped)
	default:
		return false
	}
}

// Result is the type-erased form of Get, allowing handles of different
// result types to flow through the same ordered-output machinery.
func (f *Future[T]) Result() (any, error) {
	v, err := f.Get()
	return v, err
}

// Submit wraps fn as a task, pushes it onto the pool's queue and
// returns the handle to its eventual result.
//
// Submit never blocks beyond the pool's brief critical section. If the
// pool is stopping the task is rejected: the returned handle is already
// resolved to ErrPoolStopped and fn is never invoked.
func Submit[T any](p *WorkerPool, fn func() (T, error)) *Future[T] {
	f := newFuture[T]()

	item := TaskItem{
		Run: func() {
			defer func() {
				if r := recover(); r != nil {
					f.fail(&TaskPanicError{Value: r, Stack: debug.Stack()})
					// Re-panic so the worker's containment records the
					// event through PanicHandler and Metrics.
					panic(r)
				}
			}()
			v, err := fn()
			f.resolve(v, err)
		},
		Abort: f.cancel,
	}

	if !p.post(item) {
		f.cancel()
	}
	return f
}

// SubmitTask is the untyped convenience form of Submit for tasks that
// produce no value. The handle resolves when fn has run.
func SubmitTask(p *WorkerPool, fn Task) *Future[struct{}] {
	return Submit(p, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}
