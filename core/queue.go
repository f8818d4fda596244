package core

import (
	"sync"
)

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// TaskQueue defines the interface for different queue implementations.
//
// All operations are atomic with respect to concurrent callers: no item
// is ever observed by two callers, and no Push is lost regardless of
// interleaving with Pop or Drain. Insertion order equals removal order
// (strict FIFO). Every item leaves the queue exactly once, either via
// Pop (executed) or via Drain (aborted).
type TaskQueue interface {
	Push(item TaskItem)
	Pop() (TaskItem, bool)
	// Drain removes and returns all pending items so the caller can
	// abort their result handles. len(result) is the discarded count.
	Drain() []TaskItem
	Len() int
	IsEmpty() bool
	MaybeCompact()
}

// =============================================================================
// FIFOTaskQueue: mutex-guarded FIFO queue (the reference implementation)
// =============================================================================

type FIFOTaskQueue struct {
	mu    sync.Mutex
	items []TaskItem
}

func NewFIFOTaskQueue() *FIFOTaskQueue {
	return &FIFOTaskQueue{
		items: make([]TaskItem, 0, defaultQueueCap),
	}
}

func (q *FIFOTaskQueue) Push(item TaskItem) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, item)
}

func (q *FIFOTaskQueue) Pop() (TaskItem, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return TaskItem{}, false
	}

	item := q.items[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.items[0] = TaskItem{}
	q.items = q.items[1:]
	q.maybeCompactLocked()

	return item, true
}

// Drain removes every pending item and hands them back to the caller.
func (q *FIFOTaskQueue) Drain() []TaskItem {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return nil
	}

	drained := q.items
	q.items = make([]TaskItem, 0, defaultQueueCap)
	return drained
}

func (q *FIFOTaskQueue) MaybeCompact() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.maybeCompactLocked()
}

func (q *FIFOTaskQueue) maybeCompactLocked() {
	n := len(q.items)
	c := cap(q.items)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.items = make([]TaskItem, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]TaskItem, n, newCap)
	copy(newSlice, q.items)
	q.items = newSlice
}

func (q *FIFOTaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func (q *FIFOTaskQueue) IsEmpty() bool {
	return q.Len() == 0
}
