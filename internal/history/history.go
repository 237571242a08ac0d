// Package history persists one record per sync run in a local SQLite
// database and renders the most recent runs. A history failure must never
// break a sync, so Append logs and swallows its errors.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/pocketbase/dbx"
	"github.com/rs/zerolog/log"

	_ "modernc.org/sqlite"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	path        TEXT NOT NULL,
	hosts       TEXT NOT NULL,
	back        INTEGER NOT NULL,
	del         INTEGER NOT NULL,
	git_repo    INTEGER NOT NULL,
	status      TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at DESC);
`

// Record is one completed sync run. StartedAt is unix seconds and
// Duration milliseconds; SQLite stores both as plain integers.
type Record struct {
	ID        string `db:"id"`
	Path      string `db:"path"`
	Hosts     string `db:"hosts"`
	Back      bool   `db:"back"`
	Delete    bool   `db:"del"`
	GitRepo   bool   `db:"git_repo"`
	Status    string `db:"status"`
	StartedAt int64  `db:"started_at"`
	Duration  int64  `db:"duration_ms"`
}

// TableName implements dbx.TableModel.
func (r Record) TableName() string {
	return "runs"
}

// HostList returns the stored comma-joined hosts as a slice.
func (r *Record) HostList() []string {
	return strings.Split(r.Hosts, ",")
}

// Store is a handle on the run-history database.
type Store struct {
	db *dbx.DB
}

// Open creates or opens the history database at path, creating parent
// directories and the schema as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	db, err := dbx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}
	if _, err := db.NewQuery(schema).Execute(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Run describes one completed sync for Append. A named struct avoids the
// swap-bug risk of a row of positional bools.
type Run struct {
	Path      string
	Hosts     []string
	Back      bool
	Delete    bool
	GitRepo   bool
	Status    string
	StartedAt time.Time
	Duration  time.Duration
}

// Append records one run. Errors are logged and swallowed; a history
// write failure must never fail the sync it describes.
func (s *Store) Append(run Run) {
	rec := Record{
		ID:        uuid.NewString(),
		Path:      run.Path,
		Hosts:     strings.Join(run.Hosts, ","),
		Back:      run.Back,
		Delete:    run.Delete,
		GitRepo:   run.GitRepo,
		Status:    run.Status,
		StartedAt: run.StartedAt.Unix(),
		Duration:  run.Duration.Milliseconds(),
	}
	if err := s.db.Model(&rec).Insert(); err != nil {
		log.Warn().Err(err).Str("path", run.Path).Msg("history append failed")
	}
}

// Last returns the most recent run, or nil when the history is empty.
func (s *Store) Last() (*Record, error) {
	recs, err := s.Recent(1)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}
	return &recs[0], nil
}

// Recent returns up to n runs, newest first.
func (s *Store) Recent(n int) ([]Record, error) {
	var recs []Record
	err := s.db.Select().From("runs").
		OrderBy("started_at DESC").
		Limit(int64(n)).
		All(&recs)
	if err != nil {
		return nil, fmt.Errorf("history: query runs: %w", err)
	}
	return recs, nil
}

// Format renders a record as a one-line summary for the CLI.
func Format(r *Record) string {
	direction := "->"
	if r.Back {
		direction = "<-"
	}
	flags := ""
	if r.Delete {
		flags += " delete"
	}
	if r.GitRepo {
		flags += " git"
	}
	return fmt.Sprintf("[%s] %s %s %s (%s, %s%s)",
		humanize.Time(time.Unix(r.StartedAt, 0)),
		r.Path, direction, r.Hosts,
		r.Status,
		time.Duration(r.Duration)*time.Millisecond,
		flags,
	)
}
