// Package report is the idle-context side of the clock: it waits for any
// interrupt, services the status transport and writes one statistics line per
// wake while a session is up.
package report

import (
	"context"
	"sync/atomic"

	"stutterclock-go/automaton"
)

// Transport is the outbound status link.
type Transport interface {
	// Poll runs protocol housekeeping and discards inbound bytes. The result
	// only says whether anything happened and is ignored by the reporter.
	Poll() bool
	// Ready reports an active session able to take a line.
	Ready() bool
	Write(p []byte) (int, error)
}

// Waker suspends the idle context until any interrupt has fired.
type Waker interface {
	Wait(ctx context.Context) error
}

// Source is the read side of the visit counters.
type Source interface {
	Snapshot() automaton.Snapshot
}

type Reporter struct {
	src Source
	tr  Transport
	buf [MaxLineLen]byte

	// OnReport, if set, sees every snapshot that was put on the wire.
	OnReport func(automaton.Snapshot)

	sent    atomic.Uint32
	dropped atomic.Uint32
}

func New(src Source, tr Transport) *Reporter {
	return &Reporter{src: src, tr: tr}
}

// Step is one wake: housekeeping, then at most one line. Transport errors and
// short writes are counted and forgotten; nothing is retried.
func (r *Reporter) Step() bool {
	_ = r.tr.Poll()
	if !r.tr.Ready() {
		return false
	}
	snap := r.src.Snapshot()
	line, err := AppendLine(r.buf[:0], snap)
	if err != nil {
		return false
	}
	n, err := r.tr.Write(line)
	if err != nil || n != len(line) {
		r.dropped.Add(1)
		return false
	}
	r.sent.Add(1)
	if r.OnReport != nil {
		r.OnReport(snap)
	}
	return true
}

// Run loops Wait then Step until ctx is done. Every wake re-checks readiness,
// since the waker returns after any interrupt, not only the clock's.
func (r *Reporter) Run(ctx context.Context, w Waker) error {
	for {
		if err := w.Wait(ctx); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Step()
	}
}

// Sent counts lines fully written.
func (r *Reporter) Sent() uint32 { return r.sent.Load() }

// Dropped counts lines lost to transport errors or short writes.
func (r *Reporter) Dropped() uint32 { return r.dropped.Load() }
