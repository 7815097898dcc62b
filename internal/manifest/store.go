// Package manifest records generated collections in a SQLite database so
// load tests can compare what a collection manager reports against what
// was actually written.
package manifest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/exaile/exaile-test-files/internal/generate"
	"github.com/exaile/exaile-test-files/internal/model"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3" // Import the driver anonymously
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// RunInfo describes a run when it starts.
type RunInfo struct {
	Seed       int64
	Count      int
	Template   string
	OutputPath string
}

// RunSummary is a stored run.
type RunSummary struct {
	ID         string
	Seed       int64
	Count      int
	Template   string
	OutputPath string
	StartedAt  time.Time
	Finished   bool
	Artists    int
	Albums     int
	Titles     int
}

// Item is one recorded output item.
type Item struct {
	Index  int
	Path   string // relative to the output root, slash separated
	Artist string
	Album  string
	Title  string
	Number int
}

// Store is a SQLite-backed manifest.
type Store struct {
	db *sql.DB
}

// NewStore opens the database at path and runs the schema migration.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping sqlite db: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}
	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id          TEXT PRIMARY KEY,
			seed        INTEGER NOT NULL,
			count       INTEGER NOT NULL,
			template    TEXT NOT NULL,
			output_path TEXT NOT NULL,
			started_at  TEXT NOT NULL,
			finished    INTEGER NOT NULL DEFAULT 0,
			artists     INTEGER NOT NULL DEFAULT 0,
			albums      INTEGER NOT NULL DEFAULT 0,
			titles      INTEGER NOT NULL DEFAULT 0
		);
		CREATE TABLE IF NOT EXISTS items (
			run_id  TEXT NOT NULL REFERENCES runs(id),
			idx     INTEGER NOT NULL,
			path    TEXT NOT NULL,
			artist  TEXT NOT NULL,
			album   TEXT NOT NULL,
			title   TEXT NOT NULL,
			number  INTEGER NOT NULL,
			PRIMARY KEY (run_id, idx)
		);
	`)
	return err
}

// BeginRun registers a run and returns the Run that records its items.
// Items are written in one transaction, committed by Finish.
func (s *Store) BeginRun(ctx context.Context, info RunInfo) (*Run, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin run: %w", err)
	}

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx,
		"INSERT INTO runs (id, seed, count, template, output_path, started_at) VALUES (?, ?, ?, ?, ?, ?)",
		id, info.Seed, info.Count, info.Template, info.OutputPath, time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO items (run_id, idx, path, artist, album, title, number) VALUES (?, ?, ?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("prepare item insert: %w", err)
	}

	return &Run{ID: id, root: info.OutputPath, tx: tx, insert: stmt}, nil
}

// Runs lists stored runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, seed, count, template, output_path, started_at, finished, artists, albums, titles
		FROM runs ORDER BY started_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var (
			r       RunSummary
			started string
		)
		if err := rows.Scan(&r.ID, &r.Seed, &r.Count, &r.Template, &r.OutputPath, &started, &r.Finished, &r.Artists, &r.Albums, &r.Titles); err != nil {
			return nil, err
		}
		r.StartedAt, _ = time.Parse(time.RFC3339Nano, started)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Items lists the items of a run in generation order.
func (s *Store) Items(ctx context.Context, runID string) ([]Item, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs WHERE id = ?", runID).Scan(&exists); err != nil {
		return nil, err
	}
	if exists == 0 {
		return nil, ErrRunNotFound
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT idx, path, artist, album, title, number FROM items WHERE run_id = ? ORDER BY idx", runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load items: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Index, &it.Path, &it.Artist, &it.Album, &it.Title, &it.Number); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Run records the items of one generation run. It implements
// generate.Recorder and is not safe for concurrent use.
type Run struct {
	ID string

	root   string
	tx     *sql.Tx
	insert *sql.Stmt
}

// Record stores one item.
func (r *Run) Record(ctx context.Context, index int, track *model.Track) error {
	rel, err := filepath.Rel(r.root, track.Path)
	if err != nil {
		rel = track.Path
	}

	_, err = r.insert.ExecContext(ctx, r.ID, index, filepath.ToSlash(rel),
		track.Album.Artist.Name, track.Album.Title, track.Title, track.Number)
	return err
}

// Finish stores the run totals and commits.
func (r *Run) Finish(ctx context.Context, result generate.Result) error {
	r.insert.Close()

	_, err := r.tx.ExecContext(ctx,
		"UPDATE runs SET finished = 1, seed = ?, artists = ?, albums = ?, titles = ? WHERE id = ?",
		result.Seed, result.Artists, result.Albums, result.Titles, r.ID)
	if err != nil {
		r.tx.Rollback()
		return fmt.Errorf("update run: %w", err)
	}
	return r.tx.Commit()
}

// Abort discards everything recorded for the run.
func (r *Run) Abort() error {
	r.insert.Close()
	return r.tx.Rollback()
}
