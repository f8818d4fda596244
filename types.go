package dlog

import "github.com/veles-dev/go-dlog/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the dlog package for most use cases.

// Task is the unit of work (Closure)
type Task = core.Task

// WorkerPool executes submitted tasks on a resizable set of workers
type WorkerPool = core.WorkerPool

// PoolConfig configures a WorkerPool's queue, handlers and checks
type PoolConfig = core.PoolConfig

// PoolStats is a consistent snapshot of a pool's counters
type PoolStats = core.PoolStats

// Future is the result handle of one submitted task
type Future[T any] = core.Future[T]

// TaskPanicError carries the recovered panic of a failed task
type TaskPanicError = core.TaskPanicError

// InvariantError reports a failed teardown reconciliation check
type InvariantError = core.InvariantError

// ErrPoolStopped resolves handles of rejected or aborted tasks
var ErrPoolStopped = core.ErrPoolStopped

// Constructors re-exported from core
var (
	NewWorkerPool           = core.NewWorkerPool
	NewWorkerPoolWithConfig = core.NewWorkerPoolWithConfig
	DefaultPoolConfig       = core.DefaultPoolConfig
	NewFIFOTaskQueue        = core.NewFIFOTaskQueue
)

// Submit wraps fn as a task on the pool and returns its result handle.
// Re-exported so most callers need only this package.
func Submit[T any](p *core.WorkerPool, fn func() (T, error)) *core.Future[T] {
	return core.Submit(p, fn)
}

// SubmitTask is the untyped form of Submit for tasks with no result.
func SubmitTask(p *core.WorkerPool, fn core.Task) *core.Future[struct{}] {
	return core.SubmitTask(p, fn)
}
