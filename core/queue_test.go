package core

import (
	"sync"
	"sync/atomic"
	"testing"
)

// TestFIFOTaskQueue_Order verifies FIFO ordering
// Given: A queue with tasks pushed in sequence
// When: Tasks are popped
// Then: They come out in insertion order
func TestFIFOTaskQueue_Order(t *testing.T) {
	q := NewFIFOTaskQueue()

	var order []int
	for i := 0; i < 5; i++ {
		i := i
		q.Push(TaskItem{Run: func() { order = append(order, i) }})
	}

	for i := 0; i < 5; i++ {
		item, ok := q.Pop()
		if !ok {
			t.Fatalf("Pop %d: queue empty, want item", i)
		}
		item.Run()
	}

	for i, got := range order {
		if got != i {
			t.Errorf("order[%d] = %d, want %d", i, got, i)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("Pop on empty queue returned an item")
	}
}

// TestFIFOTaskQueue_Drain verifies drain semantics
// Given: A queue holding pending items
// When: Drain is called
// Then: All items are returned, the queue is empty, and abort hooks are intact
func TestFIFOTaskQueue_Drain(t *testing.T) {
	q := NewFIFOTaskQueue()

	var aborted int32
	for i := 0; i < 7; i++ {
		q.Push(TaskItem{
			Run:   func() {},
			Abort: func() { atomic.AddInt32(&aborted, 1) },
		})
	}

	drained := q.Drain()
	if len(drained) != 7 {
		t.Fatalf("len(drained) = %d, want 7", len(drained))
	}
	if !q.IsEmpty() {
		t.Error("queue not empty after Drain")
	}
	if q.Drain() != nil {
		t.Error("Drain on empty queue should return nil")
	}

	for _, item := range drained {
		item.abort()
	}
	if got := atomic.LoadInt32(&aborted); got != 7 {
		t.Errorf("aborted hooks fired = %d, want 7", got)
	}
}

// TestFIFOTaskQueue_ConcurrentPushPop verifies no item is lost or duplicated
// Given: Multiple producers and consumers hammering the queue
// When: All producers finish and consumers drain everything
// Then: Every pushed item is observed exactly once
func TestFIFOTaskQueue_ConcurrentPushPop(t *testing.T) {
	q := NewFIFOTaskQueue()

	const producers = 4
	const perProducer = 250

	var executed int32
	var wg sync.WaitGroup

	wg.Add(producers)
	for p := 0; p < producers; p++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(TaskItem{Run: func() { atomic.AddInt32(&executed, 1) }})
			}
		}()
	}

	var consumers sync.WaitGroup
	done := make(chan struct{})
	consumers.Add(2)
	for c := 0; c < 2; c++ {
		go func() {
			defer consumers.Done()
			for {
				if item, ok := q.Pop(); ok {
					item.Run()
					continue
				}
				select {
				case <-done:
					// Final sweep after producers stopped.
					for {
						item, ok := q.Pop()
						if !ok {
							return
						}
						item.Run()
					}
				default:
				}
			}
		}()
	}

	wg.Wait()
	close(done)
	consumers.Wait()

	if got := atomic.LoadInt32(&executed); got != producers*perProducer {
		t.Errorf("executed = %d, want %d", got, producers*perProducer)
	}
}

// TestFIFOTaskQueue_Compaction verifies the backing array shrinks after bursts
func TestFIFOTaskQueue_Compaction(t *testing.T) {
	q := NewFIFOTaskQueue()

	for i := 0; i < 256; i++ {
		q.Push(TaskItem{Run: func() {}})
	}
	for i := 0; i < 256; i++ {
		if _, ok := q.Pop(); !ok {
			t.Fatalf("Pop %d: queue empty", i)
		}
	}

	q.MaybeCompact()
	if got := cap(q.items); got > compactMinCap {
		t.Errorf("capacity after compaction = %d, want <= %d", got, compactMinCap)
	}
	if q.Len() != 0 {
		t.Errorf("Len = %d, want 0", q.Len())
	}
}
