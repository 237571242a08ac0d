package term

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Keep leaves one axis of a MoveTo unchanged.
const Keep = -1

// ErrLineOutOfRange is returned when a line index is outside the canvas.
var ErrLineOutOfRange = errors.New("line index out of range")

// ErrContentHasNewline is returned when whole-line content contains a
// newline or carriage return, which would corrupt the position model.
var ErrContentHasNewline = errors.New("content contains newline or carriage return")

// Canvas is a fixed block of lineCount display lines plus one footer line
// at index lineCount, updated in place through relative cursor moves.
//
// curLine/curCol mirror the real terminal cursor. Every public operation
// must leave them accurate; all writes go through writeChar/writeText so
// the model and the terminal advance together. Between updates the cursor
// is parked on the footer line so rapid interleaved updates from several
// lines do not make the visible cursor jump around.
//
// A zero-line canvas is legal: it has only the footer and every update on
// a data line fails the range check.
//
// Canvas is not safe for concurrent use. The relative-move model breaks
// the moment two writers interleave, so all mutation must come from a
// single goroutine (the drain loop).
type Canvas struct {
	cursor    *Cursor
	lineCount int
	curLine   int
	curCol    int
	lineCol   []int
}

// NewCanvas creates a canvas of lineCount data lines writing to w and
// parks the cursor on the footer line. The caller must already have
// emitted lineCount+1 fresh lines (e.g. by clearing the screen); the
// canvas assumes it starts at line 0, column 0.
func NewCanvas(w io.Writer, lineCount int) *Canvas {
	c := &Canvas{
		cursor:    NewCursor(w),
		lineCount: lineCount,
		lineCol:   make([]int, lineCount),
	}
	c.park()
	return c
}

// LineCount returns the number of data lines.
func (c *Canvas) LineCount() int {
	return c.lineCount
}

// MoveTo moves the cursor to the given line and/or column. Pass Keep for
// either argument to leave that axis where it is.
func (c *Canvas) MoveTo(line, col int) {
	if line != Keep {
		c.cursor.MoveVertical(line - c.curLine)
		c.curLine = line
	}
	if col != Keep {
		c.cursor.MoveHorizontal(col - c.curCol)
		c.curCol = col
	}
}

// park returns the cursor to its idle position on the footer line.
func (c *Canvas) park() {
	c.MoveTo(c.lineCount, 0)
}

// WriteChar writes one printable single-width byte at the current position.
func (c *Canvas) WriteChar(b byte) {
	c.cursor.w.Write([]byte{b})
	c.curCol++
}

// WriteText writes text at the current position. text must not contain a
// newline or carriage return.
func (c *Canvas) WriteText(text string) error {
	if strings.ContainsAny(text, "\r\n") {
		return fmt.Errorf("term: write %q: %w", text, ErrContentHasNewline)
	}
	io.WriteString(c.cursor.w, text)
	c.curCol += len(text)
	return nil
}

// UpdateChar routes one byte of process output to a data line. Newline and
// carriage return reset the line's write column without printing anything;
// any other byte is written at the line's current column. The cursor is
// parked back on the footer afterwards.
func (c *Canvas) UpdateChar(line int, b byte) error {
	if line < 0 || line >= c.lineCount {
		return fmt.Errorf("term: update line %d of %d: %w", line, c.lineCount, ErrLineOutOfRange)
	}

	if b == '\n' || b == '\r' {
		c.lineCol[line] = 0
	} else {
		c.MoveTo(line, c.lineCol[line])
		c.WriteChar(b)
		c.lineCol[line] = c.curCol
	}

	c.park()
	return nil
}

// UpdateLine overwrites a line from column 0. line may be the footer index
// lineCount; content must not contain a newline or carriage return.
func (c *Canvas) UpdateLine(line int, content string) error {
	if line < 0 || line > c.lineCount {
		return fmt.Errorf("term: update line %d of %d: %w", line, c.lineCount, ErrLineOutOfRange)
	}

	c.MoveTo(line, 0)
	if err := c.WriteText(content); err != nil {
		c.park()
		return err
	}
	c.park()
	return nil
}

// PrintDescription renders a banner on the footer line.
func (c *Canvas) PrintDescription(text string) error {
	return c.UpdateLine(c.lineCount, fmt.Sprintf("===== %s =====", text))
}
