package syncer

import (
	"fmt"
	"io"
)

// plainSink is the non-terminal fallback for the drain loop. Instead of
// repainting lines in place it buffers each stream and emits a
// host-prefixed line whenever the stream wraps. Progress repaints
// collapse into their final state per wrap, which is the right behavior
// for logs and pipes.
type plainSink struct {
	w     io.Writer
	hosts []string
	bufs  [][]byte
}

func newPlainSink(w io.Writer, hosts []string) *plainSink {
	return &plainSink{
		w:     w,
		hosts: hosts,
		bufs:  make([][]byte, len(hosts)),
	}
}

// UpdateChar implements mux.LineSink.
func (s *plainSink) UpdateChar(line int, b byte) error {
	if line < 0 || line >= len(s.bufs) {
		return fmt.Errorf("syncer: plain sink line %d of %d", line, len(s.bufs))
	}
	if b == '\n' || b == '\r' {
		s.flushLine(line)
		return nil
	}
	s.bufs[line] = append(s.bufs[line], b)
	return nil
}

// Flush emits any partial line still buffered for each stream.
func (s *plainSink) Flush() {
	for i := range s.bufs {
		s.flushLine(i)
	}
}

func (s *plainSink) flushLine(line int) {
	if len(s.bufs[line]) == 0 {
		return
	}
	fmt.Fprintf(s.w, "[%s] %s\n", s.hosts[line], s.bufs[line])
	s.bufs[line] = s.bufs[line][:0]
}
