package core

import (
	"fmt"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics during execution.
// This allows custom panic handling, logging, and recovery strategies.
//
// Implementations should be thread-safe as they may be called concurrently.
type PanicHandler interface {
	// HandlePanic is called when a task panics.
	//
	// Parameters:
	// - poolName: The name of the pool where the panic occurred
	// - workerID: The ID of the worker that ran the task
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(poolName string, workerID int, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler provides a basic panic handler that logs to stdout.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stdout.
func (h *DefaultPanicHandler) HandlePanic(poolName string, workerID int, panicInfo any, stackTrace []byte) {
	fmt.Printf("[Worker %d @ %s] Panic: %v\nStack trace:\n%s",
		workerID, poolName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics defines the interface for collecting pool execution metrics.
// Implementations can send metrics to monitoring systems (Prometheus, StatsD, etc.).
//
// Methods should be non-blocking and fast to avoid impacting task execution
// performance. They may be called concurrently.
type Metrics interface {
	// RecordTaskDuration records how long a task took to execute.
	RecordTaskDuration(poolName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked during execution.
	RecordTaskPanic(poolName string, panicInfo any)

	// RecordQueueDepth records the current queue depth.
	RecordQueueDepth(poolName string, depth int)

	// RecordTaskRejected records that a task was rejected (e.g., during shutdown).
	RecordTaskRejected(poolName string, reason string)
}

// NilMetrics provides a no-op metrics implementation that does nothing.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

// RecordTaskDuration is a no-op.
func (m *NilMetrics) RecordTaskDuration(poolName string, duration time.Duration) {}

// RecordTaskPanic is a no-op.
func (m *NilMetrics) RecordTaskPanic(poolName string, panicInfo any) {}

// RecordQueueDepth is a no-op.
func (m *NilMetrics) RecordQueueDepth(poolName string, depth int) {}

// RecordTaskRejected is a no-op.
func (m *NilMetrics) RecordTaskRejected(poolName string, reason string) {}

// =============================================================================
// RejectedTaskHandler: Interface for handling rejected submissions
// =============================================================================

// RejectedTaskHandler is called when a submission is rejected because
// the pool is stopping. The caller's handle resolves to ErrPoolStopped
// regardless; this hook exists for logging and diagnostics.
//
// Implementations should be thread-safe as they may be called concurrently.
type RejectedTaskHandler interface {
	HandleRejectedTask(poolName string, reason string)
}

// DefaultRejectedTaskHandler silently drops rejection events. Rejection
// is already observable on the returned handle, so the default makes no
// noise.
type DefaultRejectedTaskHandler struct{}

// HandleRejectedTask is a no-op.
func (h *DefaultRejectedTaskHandler) HandleRejectedTask(poolName string, reason string) {}

// =============================================================================
// InvariantMode: teardown reconciliation policy
// =============================================================================

// InvariantMode selects how Close reacts when the lifecycle counters do
// not reconcile (received != completed + aborted). Such a mismatch
// means a task was lost and the queue/lock invariants are corrupt.
type InvariantMode int

const (
	// InvariantPanic panics on a failed reconciliation check. Default.
	InvariantPanic InvariantMode = iota

	// InvariantReport logs the violation and returns it as an error
	// from Close without panicking.
	InvariantReport
)

// InvariantError reports a failed teardown reconciliation check.
type InvariantError struct {
	Pool      string
	Received  uint64
	Completed uint64
	Aborted   uint64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("core: pool %q lost tasks: received=%d completed=%d aborted=%d",
		e.Pool, e.Received, e.Completed, e.Aborted)
}

// =============================================================================
// PoolConfig: Configuration for WorkerPool
// =============================================================================

// PoolConfig holds configuration options for WorkerPool.
// All fields are optional; zero values select default implementations.
type PoolConfig struct {
	// Queue is the pending-task queue. Defaults to a FIFOTaskQueue.
	Queue TaskQueue

	// PanicHandler is called when a task panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics records execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// RejectedTaskHandler is called on rejected submissions.
	// Defaults to DefaultRejectedTaskHandler.
	RejectedTaskHandler RejectedTaskHandler

	// Logger receives lifecycle diagnostics (worker ready/exiting,
	// stop/resize events). Defaults to NoOpLogger.
	Logger Logger

	// InvariantMode selects the Close reconciliation policy.
	// Defaults to InvariantPanic.
	InvariantMode InvariantMode
}

// DefaultPoolConfig returns a config with default handlers.
func DefaultPoolConfig() *PoolConfig {
	return &PoolConfig{
		PanicHandler:        &DefaultPanicHandler{},
		Metrics:             &NilMetrics{},
		RejectedTaskHandler: &DefaultRejectedTaskHandler{},
		Logger:              &NoOpLogger{},
		InvariantMode:       InvariantPanic,
	}
}
