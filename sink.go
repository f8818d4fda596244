package dlog

import (
	"io"
	"sync"
)

// OrderedSink guarantees that a full formatted record is written to its
// destination atomically, regardless of which goroutine produced it.
//
// The sink maps each destination writer to a dedicated mutex, lazily
// created on first use and kept for the sink's lifetime. Writers are
// distinguished by identity, so destinations must be comparable (a
// *os.File, a *bytes.Buffer, and so on). The sink only guards the
// stream, it never owns it; closing the underlying writer remains the
// caller's responsibility.
//
// Independent destinations are serialized independently. The per-stream
// mutex is held only for the duration of one Write call.
type OrderedSink struct {
	mu      sync.Mutex
	streams map[io.Writer]*sync.Mutex
}

// NewOrderedSink creates an empty sink registry.
func NewOrderedSink() *OrderedSink {
	return &OrderedSink{streams: make(map[io.Writer]*sync.Mutex)}
}

// Write writes p to w as one guarded, non-interleaved write.
func (s *OrderedSink) Write(w io.Writer, p []byte) (int, error) {
	lk := s.lockFor(w)
	lk.Lock()
	defer lk.Unlock()
	return w.Write(p)
}

func (s *OrderedSink) lockFor(w io.Writer) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lk, ok := s.streams[w]
	if !ok {
		lk = &sync.Mutex{}
		s.streams[w] = lk
	}
	return lk
}

// sharedSink serializes writers across all Loggers that don't bring
// their own sink. Two Loggers pointed at the same destination must
// share a sink, or their records could interleave.
var sharedSink = NewOrderedSink()

// SharedSink returns the process-wide sink registry.
func SharedSink() *OrderedSink {
	return sharedSink
}
