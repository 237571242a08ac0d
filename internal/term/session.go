package term

import (
	"errors"
	"io"
)

// ErrSessionClosed is returned when an update is attempted after Close.
var ErrSessionClosed = errors.New("session closed")

// Session scopes a Canvas to one display run. Construction hides the
// terminal cursor and prints the banner; Close re-shows the cursor and
// emits a trailing newline so the shell prompt lands on a fresh line.
//
// Close runs exactly once and must run on every exit path, including
// panics inside the caller's body, so the usual shape is
//
//	sess, err := term.NewSession(os.Stdout, n, "lsync")
//	...
//	defer sess.Close()
//
// A closed session is finished; a new run needs a new Session.
type Session struct {
	cursor *Cursor
	canvas *Canvas
	w      io.Writer
	closed bool
}

// NewSession hides the cursor, builds a canvas of lineCount data lines and
// prints desc as the footer banner.
func NewSession(w io.Writer, lineCount int, desc string) (*Session, error) {
	cursor := NewCursor(w)
	cursor.HideCursor()

	s := &Session{
		cursor: cursor,
		canvas: NewCanvas(w, lineCount),
		w:      w,
	}
	if err := s.canvas.PrintDescription(desc); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// UpdateChar routes one byte of process output to a data line.
func (s *Session) UpdateChar(line int, b byte) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.canvas.UpdateChar(line, b)
}

// UpdateLine overwrites a whole line.
func (s *Session) UpdateLine(line int, content string) error {
	if s.closed {
		return ErrSessionClosed
	}
	return s.canvas.UpdateLine(line, content)
}

// Close restores the cursor and terminates the display block with a
// newline. Safe to call more than once; only the first call writes.
// The restore writes are best effort: leaving the cursor hidden is worse
// than a failed write, so there is nothing useful to return.
func (s *Session) Close() {
	if s.closed {
		return
	}
	s.closed = true
	s.cursor.ShowCursor()
	io.WriteString(s.w, "\n")
}
