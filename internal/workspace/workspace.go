// Package workspace locates the sync anchor directory and maps local
// paths to their remote counterparts. It has no knowledge of rsync or of
// the display; it only answers path questions.
package workspace

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNoRoot is returned when no ancestor of the working directory matches
// a configured sync root name.
var ErrNoRoot = errors.New("no sync root found")

// ErrOutsideRoot is returned when a path does not sit inside the sync
// root. Mapping such a path would place the remote target outside the
// profile's base directory.
var ErrOutsideRoot = errors.New("path outside sync root")

// FindRoot walks from dir toward the filesystem root and returns the
// first ancestor (dir included) whose base name is one of rootNames.
func FindRoot(dir string, rootNames []string) (string, error) {
	cur := filepath.Clean(dir)
	for {
		for _, name := range rootNames {
			if filepath.Base(cur) == name {
				return cur, nil
			}
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("workspace: no ancestor of %s in %v: %w", dir, rootNames, ErrNoRoot)
		}
		cur = parent
	}
}

// Relativize returns path relative to the parent of root, the form used
// both for remote path mapping and for run-history display. A path that
// does not sit inside root is rejected with ErrOutsideRoot.
func Relativize(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", fmt.Errorf("workspace: relativize %s against %s: %w", path, root, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("workspace: %s is outside %s: %w", path, root, ErrOutsideRoot)
	}
	if rel == "." {
		return filepath.Base(root), nil
	}
	return filepath.Join(filepath.Base(root), rel), nil
}

// ProbeGitignore returns the path of dir's .gitignore if one exists, or
// "" when the directory has none.
func ProbeGitignore(dir string) string {
	path := filepath.Join(dir, ".gitignore")
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// IsDir reports whether path exists and is a directory. Nonexistent paths
// count as files; rsync will produce the real error.
func IsDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
