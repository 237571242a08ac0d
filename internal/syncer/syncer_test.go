package syncer

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lsync/lsync/internal/workspace"
)

var roots = []string{"common_sync"}

func makeWorkspace(t *testing.T) (root, nested string) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, "common_sync")
	nested = filepath.Join(root, "proj", "src")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	return root, nested
}

func TestResolveWholeRoot(t *testing.T) {
	root, nested := makeWorkspace(t)

	tgt, err := resolve(nested, "", "/data", roots)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tgt.LocalDir != root {
		t.Fatalf("LocalDir: got %q, want %q", tgt.LocalDir, root)
	}
	if tgt.RemoteDir != "/data/common_sync" {
		t.Fatalf("RemoteDir: got %q", tgt.RemoteDir)
	}
	if tgt.Rel != "common_sync" {
		t.Fatalf("Rel: got %q", tgt.Rel)
	}
	if !tgt.ContentOnly {
		t.Fatal("ContentOnly: got false for a directory")
	}
}

func TestResolveExplicitSubdir(t *testing.T) {
	_, nested := makeWorkspace(t)

	tgt, err := resolve(filepath.Dir(nested), "src", "/data", roots)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tgt.LocalDir != nested {
		t.Fatalf("LocalDir: got %q, want %q", tgt.LocalDir, nested)
	}
	want := filepath.Join("common_sync", "proj", "src")
	if tgt.Rel != want {
		t.Fatalf("Rel: got %q, want %q", tgt.Rel, want)
	}
	if tgt.RemoteDir != filepath.Join("/data", want) {
		t.Fatalf("RemoteDir: got %q", tgt.RemoteDir)
	}
}

func TestResolveExplicitFile(t *testing.T) {
	_, nested := makeWorkspace(t)
	file := filepath.Join(nested, "main.py")
	if err := os.WriteFile(file, []byte("print()\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tgt, err := resolve(nested, "main.py", "/data", roots)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if tgt.ContentOnly {
		t.Fatal("ContentOnly: got true for a file")
	}
	if tgt.GitIgnore != "" {
		t.Fatalf("GitIgnore: got %q for a file target", tgt.GitIgnore)
	}
}

func TestResolveOutsideRoot(t *testing.T) {
	dir := t.TempDir()
	_, err := resolve(dir, "", "/data", roots)
	if !errors.Is(err, workspace.ErrNoRoot) {
		t.Fatalf("got %v, want ErrNoRoot", err)
	}
}

func TestResolveRejectsPathEscapingRoot(t *testing.T) {
	root, nested := makeWorkspace(t)

	// A relative path that climbs out of the workspace must abort the
	// run: joined onto base_dir it would target a remote location
	// entirely outside the profile, which --delete would then prune.
	tests := []struct {
		name string
		cwd  string
		path string
	}{
		{name: "escape from root", cwd: root, path: "../../escapee"},
		{name: "escape from nested dir", cwd: nested, path: "../../../../escapee"},
		{name: "sibling of root", cwd: root, path: "../sibling"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tgt, err := resolve(tt.cwd, tt.path, "/data", roots)
			if !errors.Is(err, workspace.ErrOutsideRoot) {
				t.Fatalf("resolve(%q) = %+v, %v; want ErrOutsideRoot", tt.path, tgt, err)
			}
		})
	}
}

func TestResolvePicksUpGitignore(t *testing.T) {
	root, _ := makeWorkspace(t)
	gi := filepath.Join(root, ".gitignore")
	if err := os.WriteFile(gi, []byte("*.log\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tgt, err := resolve(root, "", "/data", roots)
	if err != nil {
		t.Fatal(err)
	}
	if tgt.GitIgnore != gi {
		t.Fatalf("GitIgnore: got %q, want %q", tgt.GitIgnore, gi)
	}
}

func TestPlainSinkEmitsOnWrap(t *testing.T) {
	var buf bytes.Buffer
	sink := newPlainSink(&buf, []string{"a", "b"})

	for _, b := range []byte("12%") {
		if err := sink.UpdateChar(0, b); err != nil {
			t.Fatal(err)
		}
	}
	if buf.Len() != 0 {
		t.Fatal("partial line emitted before wrap")
	}

	if err := sink.UpdateChar(0, '\r'); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "[a] 12%\n" {
		t.Fatalf("got %q", got)
	}
}

func TestPlainSinkFlushEmitsPartials(t *testing.T) {
	var buf bytes.Buffer
	sink := newPlainSink(&buf, []string{"a", "b"})

	_ = sink.UpdateChar(1, 'o')
	_ = sink.UpdateChar(1, 'k')
	sink.Flush()
	if !strings.Contains(buf.String(), "[b] ok") {
		t.Fatalf("got %q", buf.String())
	}

	// Flushing twice must not duplicate output.
	n := buf.Len()
	sink.Flush()
	if buf.Len() != n {
		t.Fatal("second Flush wrote again")
	}
}

func TestPlainSinkLineOutOfRange(t *testing.T) {
	sink := newPlainSink(&bytes.Buffer{}, []string{"a"})
	if err := sink.UpdateChar(1, 'x'); err == nil {
		t.Fatal("expected error for out-of-range line")
	}
}
