package eventlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Mavwarf/soundboard/internal/paths"

	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store using a SQLite database.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens (or creates) a SQLite database at path and creates
// tables and indexes.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), paths.DirPerm); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// Single connection serializes writers from concurrent plays.
	db.SetMaxOpenConns(1)

	// Set PRAGMAs before any DDL.
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("sqlite pragma: %w", err)
		}
	}

	ddl := `
CREATE TABLE IF NOT EXISTS events (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    timestamp  TEXT    NOT NULL,
    kind       INTEGER NOT NULL,
    request    TEXT    NOT NULL DEFAULT '',
    name       TEXT    NOT NULL DEFAULT '',
    channel    INTEGER NOT NULL DEFAULT -1,
    effects    TEXT    NOT NULL DEFAULT '',
    latency_ms INTEGER NOT NULL DEFAULT 0,
    detail     TEXT    NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_events_timestamp ON events(timestamp DESC);
CREATE INDEX IF NOT EXISTS idx_events_name      ON events(name);
`
	if _, err := db.Exec(ddl); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func now() string {
	return time.Now().Format(time.RFC3339)
}

func (s *SQLiteStore) LogPlay(p Play) error {
	_, err := s.db.Exec(
		`INSERT INTO events (timestamp, kind, request, name, channel, effects, latency_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		now(), int(KindPlay), p.Request, p.Sound, p.Channel, p.Effects, p.Latency.Milliseconds(),
	)
	return err
}

func (s *SQLiteStore) LogDrop(request, sound, reason string) error {
	_, err := s.db.Exec(
		`INSERT INTO events (timestamp, kind, request, name, detail) VALUES (?, ?, ?, ?, ?)`,
		now(), int(KindDrop), request, sound, reason,
	)
	return err
}

func (s *SQLiteStore) LogCommand(action string, relayErr error) error {
	detail := ""
	if relayErr != nil {
		detail = relayErr.Error()
	}
	_, err := s.db.Exec(
		`INSERT INTO events (timestamp, kind, name, detail) VALUES (?, ?, ?, ?)`,
		now(), int(KindCommand), action, detail,
	)
	return err
}

func (s *SQLiteStore) Entries(days int) ([]Entry, error) {
	query := `SELECT timestamp, kind, request, name, channel, effects, latency_ms, detail FROM events`
	var args []any
	if days > 0 {
		query += ` WHERE timestamp >= ?`
		args = append(args, DayCutoff(days).Format(time.RFC3339))
	}
	query += ` ORDER BY id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			tsStr   string
			kind    int
			latency int64
			e       Entry
		)
		if err := rows.Scan(&tsStr, &kind, &e.Request, &e.Name, &e.Channel, &e.Effects, &latency, &e.Detail); err != nil {
			return nil, err
		}
		ts, err := time.Parse(time.RFC3339, tsStr)
		if err != nil {
			continue
		}
		e.Time = ts
		e.Kind = EntryKind(kind)
		e.Latency = time.Duration(latency) * time.Millisecond
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Clean(days int) (int, error) {
	cutoff := DayCutoff(days).Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Clear() error {
	_, err := s.db.Exec(`DELETE FROM events`)
	return err
}

func (s *SQLiteStore) Path() string {
	return s.path
}
