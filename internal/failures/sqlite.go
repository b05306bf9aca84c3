package failures

import (
	"context"
	"database/sql"
	stdErrors "errors"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/docgen/internal/foundation/errors"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewSQLiteStore opens or creates a failure database.
// Use ":memory:" for an in-memory database, or a file path for persistent storage.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.StoreError("open sqlite database").WithCause(err).WithContext("path", dbPath).Build()
	}
	if dbPath == ":memory:" {
		// every connection would get its own empty database
		db.SetMaxOpenConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, errors.StoreError("initialize schema").WithCause(err).WithContext("path", dbPath).Build()
	}
	return store, nil
}

func (s *SQLiteStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS failures (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		document TEXT NOT NULL,
		generator TEXT NOT NULL,
		category TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_failures_run_id ON failures(run_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Append(ctx context.Context, r Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.Time.IsZero() {
		r.Time = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO failures (run_id, document, generator, category, message, timestamp) VALUES (?, ?, ?, ?, ?, ?)",
		r.RunID, r.Document, r.Generator, r.Category, r.Message, r.Time.UnixNano(),
	)
	if err != nil {
		return errors.StoreError("insert failure").WithCause(err).WithContext("document", r.Document).Build()
	}
	return nil
}

func (s *SQLiteStore) ByRun(ctx context.Context, runID string) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, run_id, document, generator, category, message, timestamp FROM failures WHERE run_id = ? ORDER BY id",
		runID,
	)
	if err != nil {
		return nil, errors.StoreError("query failures").WithCause(err).Build()
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			r  Record
			ts int64
		)
		if err := rows.Scan(&r.ID, &r.RunID, &r.Document, &r.Generator, &r.Category, &r.Message, &ts); err != nil {
			return nil, errors.StoreError("scan failure").WithCause(err).Build()
		}
		r.Time = time.Unix(0, ts)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.StoreError("iterate failures").WithCause(err).Build()
	}
	return out, nil
}

func (s *SQLiteStore) LatestRun(ctx context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var runID string
	err := s.db.QueryRowContext(ctx, "SELECT run_id FROM failures ORDER BY id DESC LIMIT 1").Scan(&runID)
	if stdErrors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", errors.StoreError("query latest run").WithCause(err).Build()
	}
	return runID, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
