package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS session_results (
	id            TEXT PRIMARY KEY,
	participant   TEXT NOT NULL DEFAULT '',
	video         TEXT NOT NULL DEFAULT '',
	mode          TEXT NOT NULL,
	profile       TEXT NOT NULL DEFAULT '',
	average_score INTEGER NOT NULL DEFAULT 0,
	started_unix_ms INTEGER NOT NULL,
	saved_unix_ms   INTEGER NOT NULL,
	payload_json  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_session_results_saved ON session_results (saved_unix_ms DESC);
`

// SQLiteStore implements Store on a SQLite database. Indexed columns are
// kept alongside the full result as JSON.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (creating if needed) a database at path. Use
// ":memory:" for an ephemeral store.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Save creates or replaces a result.
func (s *SQLiteStore) Save(r *Result) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	r.SavedAt = time.Now().UTC()

	payload, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO session_results
		(id, participant, video, mode, profile, average_score, started_unix_ms, saved_unix_ms, payload_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Participant, r.Video, r.Mode, r.Profile, r.Summary.AverageScore,
		r.StartedAt.UnixMilli(), r.SavedAt.UnixMilli(), string(payload))
	if err != nil {
		return fmt.Errorf("insert result %s: %w", r.ID, err)
	}
	return nil
}

// Get retrieves a result by ID.
func (s *SQLiteStore) Get(id string) (*Result, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload_json FROM session_results WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, fmt.Errorf("query result %s: %w", id, err)
	}
	return decodeResult(payload)
}

// List returns all results, newest first.
func (s *SQLiteStore) List() ([]*Result, error) {
	rows, err := s.db.Query(`SELECT payload_json FROM session_results ORDER BY saved_unix_ms DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []*Result
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		r, err := decodeResult(payload)
		if err != nil {
			return nil, err
		}
		results = append(results, r)
	}
	return results, rows.Err()
}

// Delete removes a result by ID.
func (s *SQLiteStore) Delete(id string) error {
	res, err := s.db.Exec(`DELETE FROM session_results WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete result %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete result %s: %w", id, err)
	}
	if n == 0 {
		return notFound(id)
	}
	return nil
}

// Count returns the number of stored results, or 0 if the query fails.
func (s *SQLiteStore) Count() int {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM session_results`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Path returns the database path.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeResult(payload string) (*Result, error) {
	var r Result
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &r, nil
}
