package term

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"
)

// fakeTerm replays an emitted byte stream against a model terminal that
// honors exactly the capabilities the canvas relies on: relative moves,
// carriage return, and literal characters. Visibility toggles and screen
// clears are ignored for content purposes but counted.
type fakeTerm struct {
	lines     map[int][]byte
	line, col int
	hides     int
	shows     int
	clears    int
}

func newFakeTerm() *fakeTerm {
	return &fakeTerm{lines: make(map[int][]byte)}
}

func (f *fakeTerm) replay(stream []byte) {
	i := 0
	for i < len(stream) {
		b := stream[i]
		if b == '\x1b' && i+1 < len(stream) && stream[i+1] == '[' {
			j := i + 2
			for j < len(stream) && (stream[j] >= '0' && stream[j] <= '9' || stream[j] == '?') {
				j++
			}
			arg := strings.TrimPrefix(string(stream[i+2:j]), "?")
			n, _ := strconv.Atoi(arg)
			switch stream[j] {
			case 'A':
				f.line -= n
			case 'B':
				f.line += n
			case 'C':
				f.col += n
			case 'D':
				f.col -= n
			case 'H':
				f.line, f.col = 0, 0
			case 'J':
				f.clears++
			case 'l':
				f.hides++
			case 'h':
				f.shows++
			}
			i = j + 1
			continue
		}
		if b == '\r' {
			f.col = 0
			i++
			continue
		}
		if b == '\n' {
			f.line++
			f.col = 0
			i++
			continue
		}
		row := f.lines[f.line]
		for len(row) <= f.col {
			row = append(row, ' ')
		}
		row[f.col] = b
		f.lines[f.line] = row
		f.col++
		i++
	}
}

func (f *fakeTerm) rendered(line int) string {
	return strings.TrimRight(string(f.lines[line]), " ")
}

func TestUpdateCharAppendsInCallOrder(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 3)

	for _, b := range []byte("hello") {
		if err := c.UpdateChar(1, b); err != nil {
			t.Fatalf("UpdateChar: %v", err)
		}
	}

	if c.lineCol[1] != 5 {
		t.Fatalf("lineCol[1]: got %d, want 5", c.lineCol[1])
	}

	ft := newFakeTerm()
	ft.replay(buf.Bytes())
	if got := ft.rendered(1); got != "hello" {
		t.Fatalf("rendered line 1: got %q, want %q", got, "hello")
	}
}

func TestUpdateCharNewlineResetsColumn(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 2)

	for _, b := range []byte("42%") {
		if err := c.UpdateChar(0, b); err != nil {
			t.Fatalf("UpdateChar: %v", err)
		}
	}
	before := buf.Len()

	if err := c.UpdateChar(0, '\r'); err != nil {
		t.Fatalf("UpdateChar CR: %v", err)
	}
	if c.lineCol[0] != 0 {
		t.Fatalf("lineCol[0] after CR: got %d, want 0", c.lineCol[0])
	}
	// A line-wrap byte causes no cursor motion and prints nothing.
	if buf.Len() != before {
		t.Fatalf("CR emitted %d bytes, want 0", buf.Len()-before)
	}

	for _, b := range []byte("99") {
		if err := c.UpdateChar(0, b); err != nil {
			t.Fatalf("UpdateChar: %v", err)
		}
	}

	ft := newFakeTerm()
	ft.replay(buf.Bytes())
	// "99" overwrites "42" from column 0; the trailing "%" survives.
	if got := ft.rendered(0); got != "99%" {
		t.Fatalf("rendered line 0: got %q, want %q", got, "99%")
	}
}

func TestNewlineBehavesLikeCarriageReturn(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 1)

	if err := c.UpdateChar(0, 'x'); err != nil {
		t.Fatal(err)
	}
	if err := c.UpdateChar(0, '\n'); err != nil {
		t.Fatal(err)
	}
	if c.lineCol[0] != 0 {
		t.Fatalf("lineCol[0] after LF: got %d, want 0", c.lineCol[0])
	}
}

func TestCursorParksOnFooterAfterEveryUpdate(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 4)

	if c.curLine != 4 || c.curCol != 0 {
		t.Fatalf("initial position: got (%d,%d), want (4,0)", c.curLine, c.curCol)
	}

	ops := []func() error{
		func() error { return c.UpdateChar(0, 'a') },
		func() error { return c.UpdateChar(3, '\r') },
		func() error { return c.UpdateLine(2, "status") },
		func() error { return c.PrintDescription("banner") },
	}
	for i, op := range ops {
		if err := op(); err != nil {
			t.Fatalf("op %d: %v", i, err)
		}
		if c.curLine != 4 || c.curCol != 0 {
			t.Fatalf("op %d: cursor at (%d,%d), want (4,0)", i, c.curLine, c.curCol)
		}
	}

	// The model must agree with the replayed terminal.
	ft := newFakeTerm()
	ft.replay(buf.Bytes())
	if ft.line != 4 || ft.col != 0 {
		t.Fatalf("real cursor at (%d,%d), want (4,0)", ft.line, ft.col)
	}
}

func TestInterleavedLinesStayIndependent(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 3)

	words := []string{"abc", "xyz", "123"}
	for i := 0; i < 3; i++ {
		for line, w := range words {
			if err := c.UpdateChar(line, w[i]); err != nil {
				t.Fatalf("UpdateChar(%d, %q): %v", line, w[i], err)
			}
		}
	}

	ft := newFakeTerm()
	ft.replay(buf.Bytes())
	for line, w := range words {
		if got := ft.rendered(line); got != w {
			t.Fatalf("rendered line %d: got %q, want %q", line, got, w)
		}
		if c.lineCol[line] != len(w) {
			t.Fatalf("lineCol[%d]: got %d, want %d", line, c.lineCol[line], len(w))
		}
	}
}

func TestUpdateCharLineOutOfRange(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 2)

	for _, line := range []int{-1, 2, 10} {
		err := c.UpdateChar(line, 'a')
		if !errors.Is(err, ErrLineOutOfRange) {
			t.Fatalf("UpdateChar(%d): got %v, want ErrLineOutOfRange", line, err)
		}
	}
}

func TestUpdateLineAllowsFooterIndex(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 2)

	if err := c.UpdateLine(2, "footer"); err != nil {
		t.Fatalf("UpdateLine(footer): %v", err)
	}
	if err := c.UpdateLine(3, "beyond"); !errors.Is(err, ErrLineOutOfRange) {
		t.Fatalf("UpdateLine(3): got %v, want ErrLineOutOfRange", err)
	}
}

func TestUpdateLineRejectsNewlines(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 1)

	if err := c.UpdateLine(0, "a\nb"); !errors.Is(err, ErrContentHasNewline) {
		t.Fatalf("embedded LF: got %v, want ErrContentHasNewline", err)
	}
	if err := c.UpdateLine(0, "a\rb"); !errors.Is(err, ErrContentHasNewline) {
		t.Fatalf("embedded CR: got %v, want ErrContentHasNewline", err)
	}
	// A failed write still parks the cursor.
	if c.curLine != 1 || c.curCol != 0 {
		t.Fatalf("cursor at (%d,%d) after rejected write, want (1,0)", c.curLine, c.curCol)
	}
}

func TestPrintDescriptionBanner(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 1)

	if err := c.PrintDescription("lsync"); err != nil {
		t.Fatal(err)
	}

	ft := newFakeTerm()
	ft.replay(buf.Bytes())
	if got := ft.rendered(1); got != "===== lsync =====" {
		t.Fatalf("footer: got %q", got)
	}
}

func TestZeroLineCanvasIsEmptyAndIdle(t *testing.T) {
	var buf bytes.Buffer
	c := NewCanvas(&buf, 0)

	if c.curLine != 0 || c.curCol != 0 {
		t.Fatalf("cursor at (%d,%d), want (0,0)", c.curLine, c.curCol)
	}
	if err := c.UpdateChar(0, 'a'); !errors.Is(err, ErrLineOutOfRange) {
		t.Fatalf("UpdateChar on empty canvas: got %v, want ErrLineOutOfRange", err)
	}
	// The footer still works.
	if err := c.PrintDescription("empty"); err != nil {
		t.Fatal(err)
	}
}
