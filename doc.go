// Package dlog provides a dynamically resizable worker pool and an
// ordering-preserving asynchronous logging facility built on top of it.
//
// The pool executes submitted tasks on a bounded set of workers and
// supports live resizing, pause/resume, graceful draining and accurate
// lifecycle statistics. The logger serializes multi-fragment records,
// including fragments whose values are still being computed on the
// pool, without blocking producers or interleaving output from
// different records.
//
// # Quick Start
//
// Create a pool and a logger at application startup:
//
//	pool := dlog.NewWorkerPool("app", 4)
//	defer pool.Close()
//
//	log := dlog.New(pool, dlog.Options{MinLevel: dlog.LevelInfo})
//
// Submit work and log its pending result without waiting for it:
//
//	answer := dlog.Submit(pool, func() (int, error) {
//		return compute(), nil
//	})
//	log.Record(dlog.LevelInfo).
//		Append("the answer is").
//		AppendAsync(answer).
//		Flush()
//
// The record flushes once the pending value resolves; the goroutine
// that built it has long since moved on.
//
// # Key Concepts
//
// WorkerPool: the execution engine. Submit never blocks on task
// availability; Resize grows immediately and shrinks by letting idle
// surplus workers exit voluntarily; Stop aborts queued tasks; Wait
// blocks until the pool is quiescent; Close drains and verifies that
// no task was lost.
//
// Future: the handle to one submitted task's eventual result. Rejected
// submissions resolve to ErrPoolStopped instead of failing at the call
// site; panicking tasks resolve to a TaskPanicError.
//
// Record: one logical log statement built from ordered fragments.
// Fragments flush in the exact order they were appended, even when
// some resolve asynchronously, and the final bytes reach the
// destination as one atomic write.
//
// OrderedSink: the per-destination mutex registry behind that
// atomicity. Independent destinations never contend with each other.
//
// # Ordering Guarantees
//
// Tasks are assigned to workers in strict FIFO submission order.
// Fragments within one record appear in declaration order. Across
// independent records no order is guaranteed beyond each record
// appearing contiguously in the output.
package dlog
