// Package term implements the in-place terminal progress display.
//
// The display is a fixed block of lines updated through relative cursor
// movement only. No absolute addressing and no alternate screen buffer are
// used, so the block coexists with whatever scrollback is already on the
// terminal. Canvas keeps a model of where the real cursor is; the terminal
// offers no way to query it back, so that model is authoritative.
package term

import (
	"fmt"
	"io"
)

// Cursor emits relative ANSI cursor-control sequences to a writer.
// It keeps no state; callers are responsible for tracking position.
type Cursor struct {
	w io.Writer
}

// NewCursor returns a Cursor writing to w.
func NewCursor(w io.Writer) *Cursor {
	return &Cursor{w: w}
}

// MoveUp moves the cursor up by n rows.
func (c *Cursor) MoveUp(n int) {
	fmt.Fprintf(c.w, "\x1b[%dA", n)
}

// MoveDown moves the cursor down by n rows.
func (c *Cursor) MoveDown(n int) {
	fmt.Fprintf(c.w, "\x1b[%dB", n)
}

// MoveRight moves the cursor right by n columns.
func (c *Cursor) MoveRight(n int) {
	fmt.Fprintf(c.w, "\x1b[%dC", n)
}

// MoveLeft moves the cursor left by n columns.
func (c *Cursor) MoveLeft(n int) {
	fmt.Fprintf(c.w, "\x1b[%dD", n)
}

// MoveVertical moves down for positive delta, up for negative, and is a
// no-op for zero.
func (c *Cursor) MoveVertical(delta int) {
	switch {
	case delta > 0:
		c.MoveDown(delta)
	case delta < 0:
		c.MoveUp(-delta)
	}
}

// MoveHorizontal moves right for positive delta, left for negative, and is
// a no-op for zero.
func (c *Cursor) MoveHorizontal(delta int) {
	switch {
	case delta > 0:
		c.MoveRight(delta)
	case delta < 0:
		c.MoveLeft(-delta)
	}
}

// ResetLine returns the cursor to column 0 via carriage return.
func (c *Cursor) ResetLine() {
	io.WriteString(c.w, "\r")
}

// HideCursor makes the terminal cursor invisible.
func (c *Cursor) HideCursor() {
	io.WriteString(c.w, "\x1b[?25l")
}

// ShowCursor makes the terminal cursor visible again.
func (c *Cursor) ShowCursor() {
	io.WriteString(c.w, "\x1b[?25h")
}

// ClearScreen clears the whole screen and homes the cursor. Only used
// before a session starts; it is not part of the per-update path.
func (c *Cursor) ClearScreen() {
	io.WriteString(c.w, "\x1b[2J\x1b[H")
}
