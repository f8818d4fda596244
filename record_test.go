package dlog

import (
	"bytes"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/veles-dev/go-dlog/core"
)

// countingAsync records whether its Result was ever invoked.
type countingAsync struct {
	calls int32
	value any
	err   error
}

func (a *countingAsync) Result() (any, error) {
	atomic.AddInt32(&a.calls, 1)
	return a.value, a.err
}

func newTestLogger(t *testing.T, workers int, opts Options) (*Logger, *bytes.Buffer) {
	t.Helper()
	pool := core.NewWorkerPool("record-test-pool", workers)
	t.Cleanup(func() {
		if err := pool.Close(); err != nil {
			t.Errorf("pool.Close() error = %v", err)
		}
	})

	var buf bytes.Buffer
	if opts.Output == nil {
		opts.Output = &buf
	}
	if opts.Sink == nil {
		opts.Sink = NewOrderedSink()
	}
	return New(pool, opts), &buf
}

// TestRecord_FragmentOrder verifies in-order emission
// Given: Ready and pending fragments appended in sequence
// When: The record is flushed
// Then: Fragments appear in append order, never resolution order
func TestRecord_FragmentOrder(t *testing.T) {
	logger, buf := newTestLogger(t, 2, Options{})

	slow := core.Submit(logger.pool, func() (string, error) {
		time.Sleep(30 * time.Millisecond)
		return "B", nil
	})

	f := logger.Record(LevelInfo).
		Append("A").
		AppendAsync(slow).
		Append("C").
		Flush()

	n, err := f.Get()
	if err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	if got, want := buf.String(), "A B C\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
	if n != len("A B C\n") {
		t.Errorf("bytes written = %d, want %d", n, len("A B C\n"))
	}
}

// TestRecord_AppendDetectsAsync verifies Append defers pending values
func TestRecord_AppendDetectsAsync(t *testing.T) {
	logger, buf := newTestLogger(t, 2, Options{})

	pending := core.Submit(logger.pool, func() (int, error) {
		time.Sleep(10 * time.Millisecond)
		return 7, nil
	})

	f := logger.Record(LevelInfo).
		Append("value:").
		Append(pending).
		Flush()

	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	if got, want := buf.String(), "value: 7\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// TestRecord_AsyncErrorBecomesFragment verifies resolution errors are emitted as text
func TestRecord_AsyncErrorBecomesFragment(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	failing := &countingAsync{err: errors.New("fetch failed")}
	f := logger.Record(LevelInfo).
		Append("status").
		AppendAsync(failing).
		Flush()

	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	if got, want := buf.String(), "status fetch failed\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// TestRecord_SeverityGateSkipsAllWork verifies filtered records are true no-ops
// Given: A logger with MinLevel Warn
// When: A Debug record with a pending fragment is built and flushed
// Then: Nothing is written, no task is submitted, Result is never called
func TestRecord_SeverityGateSkipsAllWork(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{MinLevel: LevelWarn})

	pending := &countingAsync{value: "never"}
	before := logger.pool.TasksReceived()

	f := logger.Record(LevelDebug).
		Append("dropped").
		AppendAsync(pending).
		Width(20).
		Flush()

	n, err := f.Get()
	if err != nil || n != 0 {
		t.Errorf("Flush handle = (%d, %v), want (0, nil)", n, err)
	}
	if got := buf.Len(); got != 0 {
		t.Errorf("buffer holds %d bytes, want 0", got)
	}
	if got := logger.pool.TasksReceived(); got != before {
		t.Errorf("TasksReceived() = %d, want %d (filtered record must not submit)", got, before)
	}
	if got := atomic.LoadInt32(&pending.calls); got != 0 {
		t.Errorf("Result called %d times on a filtered record, want 0", got)
	}
}

// TestRecord_Directives verifies fill/width/alignment apply to subsequent fragments
func TestRecord_Directives(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	f := logger.Record(LevelInfo).
		Append("id").
		Fill('0').
		Width(4).
		Append(42).
		AlignLeft().
		Fill('.').
		Append("ok").
		Flush()

	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	if got, want := buf.String(), "id 0042 ok..\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRecord_WidthAppliesOncePerFragment(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	f := logger.Record(LevelInfo).
		Width(3).
		Append("a").
		Append("bcde").
		Flush()

	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	// "a" is padded to 3, "bcde" already exceeds the width.
	if got, want := buf.String(), "  a bcde\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// TestRecord_FlushTwice verifies a record flushes at most once
func TestRecord_FlushTwice(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	r := logger.Record(LevelInfo).Append("once")
	first := r.Flush()
	second := r.Flush()

	if _, err := first.Get(); err != nil {
		t.Fatalf("first Flush error = %v", err)
	}
	n, err := second.Get()
	if err != nil || n != 0 {
		t.Errorf("second Flush = (%d, %v), want (0, nil)", n, err)
	}

	logger.pool.Wait()
	if got, want := buf.String(), "once\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRecord_AppendAfterFlushIsIgnored(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	r := logger.Record(LevelInfo).Append("kept")
	f := r.Flush()
	r.Append("ignored")

	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	if got, want := buf.String(), "kept\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// TestRecord_FlushAfterStop verifies the handle reports the abort
func TestRecord_FlushAfterStop(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	logger.pool.Stop()

	f := logger.Record(LevelInfo).Append("lost").Flush()
	if _, err := f.Get(); !errors.Is(err, core.ErrPoolStopped) {
		t.Errorf("Flush handle error = %v, want ErrPoolStopped", err)
	}
	if !f.Cancelled() {
		t.Error("handle not cancelled after rejected flush")
	}
	if got := buf.Len(); got != 0 {
		t.Errorf("buffer holds %d bytes, want 0", got)
	}
}

func TestRecord_CustomAffixes(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{
		Affixes: &Affixes{Prefix: "[", Infix: ", ", Suffix: "]"},
	})

	f := logger.Record(LevelInfo).Append("a").Append("b").Append("c").Flush()
	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	if got, want := buf.String(), "[a, b, c]"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRecord_EmptyRecord(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	f := logger.Record(LevelInfo).Flush()
	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	// Affixes still frame an empty record.
	if got, want := buf.String(), "\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestRecord_Appendf(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	f := logger.Record(LevelInfo).
		Appendf("%s=%d", "count", 13).
		Flush()

	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
	if got, want := buf.String(), "count=13\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// TestRecord_ProducerNeverBlocks verifies Flush returns while the chain is pending
func TestRecord_ProducerNeverBlocks(t *testing.T) {
	logger, _ := newTestLogger(t, 2, Options{})

	release := make(chan struct{})
	slow := core.Submit(logger.pool, func() (string, error) {
		<-release
		return "late", nil
	})

	start := time.Now()
	f := logger.Record(LevelInfo).AppendAsync(slow).Flush()
	elapsed := time.Since(start)

	if elapsed > 100*time.Millisecond {
		t.Errorf("Flush blocked for %v waiting on a pending fragment", elapsed)
	}
	if _, _, ok := f.TryGet(); ok {
		t.Error("flush chain resolved before its pending fragment")
	}

	close(release)
	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}
}
