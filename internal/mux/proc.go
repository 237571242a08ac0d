package mux

import (
	"fmt"
	"os"
	"os/exec"
	"sync/atomic"

	"github.com/creack/pty"
	"github.com/rs/zerolog/log"
)

// procBufBytes is how much unread output a process may accumulate before
// its pump blocks. Progress writers repaint one line, so a small buffer
// is plenty.
const procBufBytes = 8192

// Proc runs one external command under a pseudo-terminal and exposes its
// output through the non-blocking Handle contract. The PTY matters:
// transfer tools only emit live progress when stdout is a terminal.
//
// A pump goroutine copies PTY output into a buffered byte channel; a wait
// goroutine reaps the process. TryRead and Exited are safe to call from
// the drain loop without blocking.
type Proc struct {
	cmd     *exec.Cmd
	ptmx    *os.File
	out     chan byte
	exited  atomic.Bool
	waitErr error
	done    chan struct{}
}

// StartProc spawns name with args under a PTY and starts draining it.
// Spawn failures are returned here, before the process ever reaches the
// multiplexer.
func StartProc(name string, args ...string) (*Proc, error) {
	cmd := exec.Command(name, args...)
	ptmx, err := pty.Start(cmd)
	if err != nil {
		return nil, fmt.Errorf("mux: start %s: %w", name, err)
	}

	p := &Proc{
		cmd:  cmd,
		ptmx: ptmx,
		out:  make(chan byte, procBufBytes),
		done: make(chan struct{}),
	}

	// PTY → byte channel. The read returns an error (EIO on Linux) once
	// the child exits and the slave side closes; that ends the pump.
	go func() {
		defer close(p.out)
		buf := make([]byte, 1024)
		for {
			n, err := ptmx.Read(buf)
			for _, b := range buf[:n] {
				select {
				case p.out <- b:
				default:
					// Buffer full: block until the consumer catches
					// up, unless the process is already gone. Output
					// unread at exit is dropped, not leaked into a
					// stuck goroutine.
					select {
					case p.out <- b:
					case <-p.done:
						return
					}
				}
			}
			if err != nil {
				return
			}
		}
	}()

	go func() {
		p.waitErr = cmd.Wait()
		p.exited.Store(true)
		_ = ptmx.Close()
		close(p.done)
	}()

	return p, nil
}

// TryRead returns one buffered output byte if available.
func (p *Proc) TryRead() (byte, ReadStatus) {
	select {
	case b, ok := <-p.out:
		if !ok {
			return 0, ReadEOF
		}
		return b, ReadByte
	default:
		return 0, ReadNone
	}
}

// Exited reports whether the process has terminated.
func (p *Proc) Exited() bool {
	return p.exited.Load()
}

// Wait blocks until the process has been reaped and returns its exit
// error, nil for exit status 0. Call it after the drain loop returns to
// collect the final status.
func (p *Proc) Wait() error {
	<-p.done
	return p.waitErr
}

// Kill terminates the process. Used for external cancellation; the drain
// loop then observes the exit and returns on its own.
func (p *Proc) Kill() {
	if p.cmd.Process == nil {
		return
	}
	if err := p.cmd.Process.Kill(); err != nil {
		log.Debug().Err(err).Str("cmd", p.cmd.Path).Msg("kill failed")
	}
}

var _ Handle = (*Proc)(nil)
