// Package history persists a log of past queries in a SQLite database.
package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Record is one logged query.
type Record struct {
	Timestamp  time.Time
	Session    string
	Prompt     string
	Model      string
	Success    bool
	DurationMS int64
	Error      string
}

// Store persists query records. A Store whose database failed to open
// degrades to a no-op rather than failing queries.
type Store struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// DefaultPath returns the standard history database location.
func DefaultPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "ai-cli", "history.db")
}

// Open creates or opens the history database at path. An empty path
// means the default location.
func Open(path string) *Store {
	if path == "" {
		path = DefaultPath()
	}
	if path == "" {
		return &Store{}
	}

	_ = os.MkdirAll(filepath.Dir(path), 0o755)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &Store{path: path}
	}

	store := &Store{db: db, path: path}
	if err := store.init(); err != nil {
		db.Close()
		return &Store{path: path}
	}
	return store
}

func (s *Store) init() error {
	if s.db == nil {
		return os.ErrInvalid
	}
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS queries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp TEXT,
		session TEXT,
		prompt TEXT,
		model TEXT,
		success INTEGER,
		duration_ms INTEGER,
		error TEXT
	);`)
	return err
}

// Available reports whether the backing database opened successfully.
func (s *Store) Available() bool {
	return s.db != nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save inserts a new record. A Store without a database drops the
// record silently.
func (s *Store) Save(rec Record) error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`INSERT INTO queries
		(timestamp, session, prompt, model, success, duration_ms, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.Timestamp.Format(time.RFC3339),
		rec.Session,
		rec.Prompt,
		rec.Model,
		boolToInt(rec.Success),
		rec.DurationMS,
		rec.Error,
	)
	return err
}

// Records returns past entries, newest first. limit <= 0 means no
// limit; a non-empty search filters on the prompt text.
func (s *Store) Records(limit int, search string) ([]Record, error) {
	if s.db == nil {
		return nil, nil
	}

	var query strings.Builder
	query.WriteString("SELECT timestamp, session, prompt, model, success, duration_ms, error FROM queries")
	var args []any
	if search != "" {
		query.WriteString(" WHERE prompt LIKE ?")
		args = append(args, "%"+search+"%")
	}
	query.WriteString(" ORDER BY datetime(timestamp) DESC")
	if limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, limit)
	}

	rows, err := s.db.Query(query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var ts string
		var success int
		if err := rows.Scan(&ts, &rec.Session, &rec.Prompt, &rec.Model, &success, &rec.DurationMS, &rec.Error); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			rec.Timestamp = t
		}
		rec.Success = success == 1
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Clear removes all stored records.
func (s *Store) Clear() error {
	if s.db == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("DELETE FROM queries")
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
