package dlog

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/veles-dev/go-dlog/core"
)

// AsyncValue is a pending value produced by work still running on the
// pool. *core.Future[T] satisfies it for any T. Result blocks until the
// value resolves; a Record only ever calls it from inside a pool task,
// never on the producing goroutine.
type AsyncValue interface {
	Result() (any, error)
}

// Record accumulates the ordered fragments of one logical log
// statement: ready values, pending asynchronous values, and formatting
// directives (fill, width, alignment) affecting subsequent fragments.
//
// Fragments are flushed to the destination in the exact order they were
// appended, never reordered, even when some resolve asynchronously.
// Flush submits the whole fragment chain as a single task to the
// Logger's pool, so the producing goroutine never blocks on a pending
// value; the final bytes go out as one guarded write through the
// OrderedSink.
//
// A Record belongs to the goroutine that builds it. Append calls are
// not synchronized; build the record on one goroutine and Flush it
// once. After Flush the record must not be touched again.
//
// A pending value whose computation never completes stalls only this
// record's flush chain. The producing goroutine and other records on
// the same pool are unaffected. This is an accepted liveness risk of
// the design, not an error condition.
type Record struct {
	pool    *core.WorkerPool
	sink    *OrderedSink
	out     io.Writer
	affixes Affixes

	enabled bool
	closed  bool
	steps   []func(*Record)

	// Flush-side state, touched only inside the submitted task.
	buf       bytes.Buffer
	fragments int
	fill      rune
	width     int
	alignLeft bool
}

// Append appends one fragment. A value satisfying AsyncValue is
// deferred like AppendAsync; anything else is formatted immediately
// with fmt.Sprint and written in this position on flush.
func (r *Record) Append(v any) *Record {
	if av, ok := v.(AsyncValue); ok {
		return r.AppendAsync(av)
	}
	if !r.active() {
		return r
	}
	s := fmt.Sprint(v)
	r.steps = append(r.steps, func(rec *Record) {
		rec.writeFragment(s)
	})
	return r
}

// Appendf appends one fragment formatted with fmt.Sprintf.
func (r *Record) Appendf(format string, args ...any) *Record {
	if !r.active() {
		return r
	}
	s := fmt.Sprintf(format, args...)
	r.steps = append(r.steps, func(rec *Record) {
		rec.writeFragment(s)
	})
	return r
}

// AppendAsync appends a pending value in this position. The flush
// chain, not the producing goroutine, blocks until it resolves. If the
// value resolves to an error, the error text becomes the fragment.
func (r *Record) AppendAsync(v AsyncValue) *Record {
	if !r.active() {
		return r
	}
	r.steps = append(r.steps, func(rec *Record) {
		val, err := v.Result()
		if err != nil {
			rec.writeFragment(err.Error())
			return
		}
		rec.writeFragment(fmt.Sprint(val))
	})
	return r
}

// Fill sets the padding rune used by Width for subsequent fragments.
func (r *Record) Fill(c rune) *Record {
	if !r.active() {
		return r
	}
	r.steps = append(r.steps, func(rec *Record) {
		rec.fill = c
	})
	return r
}

// Width sets the minimum field width for subsequent fragments. Shorter
// fragments are padded with the fill rune; zero disables padding.
func (r *Record) Width(n int) *Record {
	if !r.active() {
		return r
	}
	r.steps = append(r.steps, func(rec *Record) {
		rec.width = n
	})
	return r
}

// AlignLeft pads subsequent fragments on the right.
func (r *Record) AlignLeft() *Record {
	return r.align(true)
}

// AlignRight pads subsequent fragments on the left. This is the
// default.
func (r *Record) AlignRight() *Record {
	return r.align(false)
}

func (r *Record) align(left bool) *Record {
	if !r.active() {
		return r
	}
	r.steps = append(r.steps, func(rec *Record) {
		rec.alignLeft = left
	})
	return r
}

// Flush closes the record and submits its fragment chain as one task
// to the pool. It never blocks beyond the pool's brief critical
// section. The returned handle resolves to the number of bytes written
// once the chain has completed, or to zero immediately for a record
// below the severity threshold. Flushing twice is a no-op.
func (r *Record) Flush() *core.Future[int] {
	if !r.active() {
		r.closed = true
		return core.NewResolvedFuture(0, nil)
	}
	r.closed = true

	return core.Submit(r.pool, func() (int, error) {
		r.buf.WriteString(r.affixes.Prefix)
		for _, step := range r.steps {
			step(r)
		}
		r.buf.WriteString(r.affixes.Suffix)
		return r.sink.Write(r.out, r.buf.Bytes())
	})
}

func (r *Record) active() bool {
	return r.enabled && !r.closed
}

// writeFragment appends one fragment to the buffer, preceded by the
// infix when it is not the first, padded per the current directives.
func (r *Record) writeFragment(s string) {
	if r.fragments > 0 {
		r.buf.WriteString(r.affixes.Infix)
	}
	r.fragments++

	if pad := r.width - utf8.RuneCountInString(s); pad > 0 {
		padding := strings.Repeat(string(r.fill), pad)
		if r.alignLeft {
			r.buf.WriteString(s)
			r.buf.WriteString(padding)
			return
		}
		r.buf.WriteString(padding)
		r.buf.WriteString(s)
		return
	}
	r.buf.WriteString(s)
}
