// Package store keeps a SQLite history of training runs and the batch
// predictions each run produced.
package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/JoeRonaldson/Predict-1500/pkg/errors"
)

// ErrRunNotFound is returned when a run id is unknown.
var ErrRunNotFound = errors.New("run not found")

// Store wraps the history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and applies migrations.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "creating data directory")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open database, e.g. sql.Open("sqlite", ":memory:") in tests,
// and applies migrations.
func New(db *sql.DB) (*Store, error) {
	// one connection, so an in-memory database is shared by every query
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, errors.Wrap(err, "enabling foreign keys")
	}
	if err := migrate(db); err != nil {
		return nil, errors.Wrap(err, "running migrations")
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NewRunID returns a fresh run identifier.
func NewRunID() string {
	return uuid.NewString()
}

func migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL,
			config TEXT NOT NULL,
			train_rows INTEGER NOT NULL,
			test_rows INTEGER NOT NULL,
			epochs INTEGER NOT NULL,
			param_count INTEGER NOT NULL,
			final_loss REAL NOT NULL,
			final_val_loss REAL,
			mape REAL NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS run_epochs (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			epoch INTEGER NOT NULL,
			loss REAL NOT NULL,
			val_loss REAL,
			PRIMARY KEY (run_id, epoch)
		)`,

		`CREATE TABLE IF NOT EXISTS predictions (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			row_index INTEGER NOT NULL,
			short_power REAL NOT NULL,
			short_rate REAL NOT NULL,
			reps REAL NOT NULL,
			weight REAL NOT NULL,
			age REAL NOT NULL,
			target_rate REAL NOT NULL,
			watts REAL NOT NULL,
			pace TEXT NOT NULL,
			PRIMARY KEY (run_id, row_index)
		)`,

		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at DESC)`,
	}
	for _, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return err
		}
	}
	return nil
}

// inTx runs fn in a transaction, committing when it returns nil.
func (s *Store) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}
