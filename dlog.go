package dlog

import (
	"io"
	"os"
	"sync"

	"github.com/veles-dev/go-dlog/core"
)

// Affixes are the strings wrapped around a record's fragments: the
// prefix opens the record, the infix separates fragments, the suffix
// closes the record.
type Affixes struct {
	Prefix string
	Infix  string
	Suffix string
}

// DefaultAffixes returns the standard affix set: no prefix, a space
// between fragments, a trailing newline.
func DefaultAffixes() Affixes {
	return Affixes{Infix: " ", Suffix: "\n"}
}

// Options configures a Logger. The zero value selects os.Stdout, the
// default affixes, LevelDebug as the minimum severity, and the shared
// process-wide sink.
type Options struct {
	// Output is the default destination stream. Defaults to os.Stdout.
	Output io.Writer

	// Affixes override the default prefix/infix/suffix set.
	Affixes *Affixes

	// MinLevel is the initial minimum severity. Records below it are
	// no-ops that skip all formatting work.
	MinLevel Level

	// Sink overrides the shared sink registry. Loggers writing to the
	// same destination must share a sink for atomicity to hold across
	// them.
	Sink *OrderedSink
}

// Logger builds Records against one worker pool. The minimum severity
// is the logger's single mutable configuration cell: changing it
// affects subsequently constructed records only.
type Logger struct {
	pool    *core.WorkerPool
	sink    *OrderedSink
	out     io.Writer
	affixes Affixes

	mu       sync.RWMutex
	minLevel Level
}

// New creates a Logger flushing through the given pool.
func New(pool *core.WorkerPool, opts Options) *Logger {
	l := &Logger{
		pool:     pool,
		sink:     opts.Sink,
		out:      opts.Output,
		affixes:  DefaultAffixes(),
		minLevel: opts.MinLevel,
	}
	if opts.Affixes != nil {
		l.affixes = *opts.Affixes
	}
	if l.out == nil {
		l.out = os.Stdout
	}
	if l.sink == nil {
		l.sink = sharedSink
	}
	return l
}

// SetMinLevel updates the minimum severity for records constructed
// from now on. Records already built are unaffected.
func (l *Logger) SetMinLevel(level Level) {
	l.mu.Lock()
	l.minLevel = level
	l.mu.Unlock()
}

// MinLevel returns the current minimum severity.
func (l *Logger) MinLevel() Level {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.minLevel
}

// Record starts a record at the given severity, targeting the logger's
// default destination.
func (l *Logger) Record(level Level) *Record {
	return l.RecordTo(level, l.out)
}

// RecordTo starts a record targeting an explicit destination stream,
// e.g. a log file instead of the logger's default output.
func (l *Logger) RecordTo(level Level, w io.Writer) *Record {
	return &Record{
		pool:    l.pool,
		sink:    l.sink,
		out:     w,
		affixes: l.affixes,
		enabled: level >= l.MinLevel(),
		fill:    ' ',
	}
}

// Print appends each value as one fragment and flushes, as a one-call
// convenience. Values satisfying AsyncValue are resolved on the pool
// like any other async fragment.
func (l *Logger) Print(level Level, values ...any) *core.Future[int] {
	r := l.Record(level)
	for _, v := range values {
		r.Append(v)
	}
	return r.Flush()
}

// =============================================================================
// Process-wide default Logger (single guarded cell)
// =============================================================================

var (
	defaultMu     sync.RWMutex
	defaultLogger *Logger
)

// SetDefault installs the process-wide default Logger.
func SetDefault(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

// Default returns the process-wide default Logger, or nil when none
// has been installed with SetDefault.
func Default() *Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLogger
}
