package dlog

import (
	"bytes"
	"sync"
	"testing"

	"github.com/veles-dev/go-dlog/core"
)

func TestLevel_String(t *testing.T) {
	cases := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.level.String(); got != c.want {
			t.Errorf("Level(%d).String() = %s, want %s", c.level, got, c.want)
		}
	}
}

func TestLogger_Print(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	f := logger.Print(LevelInfo, "request", 200, "done")
	if _, err := f.Get(); err != nil {
		t.Fatalf("Print handle error = %v", err)
	}
	if got, want := buf.String(), "request 200 done\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestLogger_SetMinLevel(t *testing.T) {
	logger, buf := newTestLogger(t, 1, Options{})

	logger.SetMinLevel(LevelError)
	if got := logger.MinLevel(); got != LevelError {
		t.Errorf("MinLevel() = %v, want %v", got, LevelError)
	}

	if _, err := logger.Print(LevelWarn, "filtered").Get(); err != nil {
		t.Fatalf("filtered Print error = %v", err)
	}
	if _, err := logger.Print(LevelError, "emitted").Get(); err != nil {
		t.Fatalf("Print handle error = %v", err)
	}

	if got, want := buf.String(), "emitted\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

// TestLogger_RecordTo verifies per-record destination override
func TestLogger_RecordTo(t *testing.T) {
	logger, defaultBuf := newTestLogger(t, 1, Options{})
	var fileBuf bytes.Buffer

	f := logger.RecordTo(LevelInfo, &fileBuf).Append("to-file").Flush()
	if _, err := f.Get(); err != nil {
		t.Fatalf("Flush handle error = %v", err)
	}

	if got := defaultBuf.Len(); got != 0 {
		t.Errorf("default stream holds %d bytes, want 0", got)
	}
	if got, want := fileBuf.String(), "to-file\n"; got != want {
		t.Errorf("file stream = %q, want %q", got, want)
	}
}

// TestLogger_SharedSinkAcrossLoggers verifies two loggers on one stream don't tear
func TestLogger_SharedSinkAcrossLoggers(t *testing.T) {
	pool := core.NewWorkerPool("shared-sink-pool", 4)
	defer pool.Close()

	var buf bytes.Buffer
	sink := NewOrderedSink()
	first := New(pool, Options{Output: &buf, Sink: sink})
	second := New(pool, Options{Output: &buf, Sink: sink})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			first.Print(LevelInfo, "aaaaaaaaaa")
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			second.Print(LevelInfo, "bbbbbbbbbb")
		}
	}()
	wg.Wait()
	pool.Wait()

	for i, line := range bytes.Split(bytes.TrimSuffix(buf.Bytes(), []byte("\n")), []byte("\n")) {
		if string(line) != "aaaaaaaaaa" && string(line) != "bbbbbbbbbb" {
			t.Fatalf("line %d torn: %q", i, line)
		}
	}
}

func TestDefaultLogger_Cell(t *testing.T) {
	old := Default()
	defer SetDefault(old)

	logger, _ := newTestLogger(t, 1, Options{})
	SetDefault(logger)

	if got := Default(); got != logger {
		t.Errorf("Default() = %p, want %p", got, logger)
	}
}

func TestNew_Defaults(t *testing.T) {
	pool := core.NewWorkerPool("defaults-pool", 1)
	defer pool.Close()

	logger := New(pool, Options{})
	if logger.out == nil {
		t.Error("default output not set")
	}
	if logger.sink != sharedSink {
		t.Error("default sink is not the shared registry")
	}
	if logger.affixes != DefaultAffixes() {
		t.Errorf("affixes = %+v, want defaults", logger.affixes)
	}
	if got := logger.MinLevel(); got != LevelDebug {
		t.Errorf("MinLevel() = %v, want %v", got, LevelDebug)
	}
}
