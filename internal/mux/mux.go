// Package mux drains the output of several running processes into the
// line-per-process terminal display.
//
// Each process owns one display line. The drain loop polls every process
// in a fixed index order, moving at most one byte per process per
// iteration, until all of them have exited. Bytes within one process's
// stream keep their order; streams from different processes interleave in
// round-robin order on the way to the display.
package mux

import (
	"context"
	"time"
)

// ReadStatus is the outcome of a single non-blocking read attempt.
type ReadStatus int

const (
	// ReadByte means a byte was available and returned.
	ReadByte ReadStatus = iota
	// ReadNone means nothing was available right now.
	ReadNone
	// ReadEOF means the stream is finished; no further bytes will come.
	ReadEOF
)

// Handle is the multiplexer's view of one running process: a non-blocking
// byte source plus a non-blocking exit poll. The multiplexer never writes
// to the process and never signals it.
type Handle interface {
	// TryRead attempts to read one byte without blocking.
	TryRead() (byte, ReadStatus)

	// Exited reports whether the process has terminated.
	Exited() bool
}

// LineSink receives routed output bytes, one display line per process.
// *term.Session satisfies it.
type LineSink interface {
	UpdateChar(line int, b byte) error
}

// idleWait is how long the drain loop sleeps after an iteration that
// moved no bytes, so a quiet set of processes does not spin a core.
const idleWait = 2 * time.Millisecond

// Drain routes process output into sink until every handle has exited.
// Handle index is display line index. Read failures on one handle are
// treated as "no byte this iteration" and never stop the other streams.
// Output still buffered when a process exits may be dropped; progress
// output is display-only and lossy by design.
//
// Cancel by terminating the processes, or via ctx: ctx expiry returns
// ctx.Err() without waiting for the remaining handles.
func Drain(ctx context.Context, sink LineSink, handles []Handle) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		running := false
		moved := false
		for i, h := range handles {
			if !h.Exited() {
				running = true
			}
			b, st := h.TryRead()
			if st != ReadByte {
				continue
			}
			moved = true
			if err := sink.UpdateChar(i, b); err != nil {
				return err
			}
		}

		if !running {
			return nil
		}
		if !moved {
			time.Sleep(idleWait)
		}
	}
}
