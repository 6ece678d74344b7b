package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS history (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	role      TEXT NOT NULL,
	content   TEXT NOT NULL,
	timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
)`

// SQLite is a Store backed by a single-file SQLite database. The pure-Go
// driver keeps the binary cgo-free on this path.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite opens (creating if needed) the history database at path and
// ensures the schema exists.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("history: open %q: %w", path, err)
	}
	// A single writer keeps SQLite's locking out of the picture.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Append implements [Store]. The timestamp is written from Go rather than
// relying on CURRENT_TIMESTAMP so it round-trips as a time.Time.
func (s *SQLite) Append(ctx context.Context, role, content string) error {
	const q = `INSERT INTO history (role, content, timestamp) VALUES (?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, role, content, time.Now().UTC()); err != nil {
		return fmt.Errorf("history: append turn: %w", err)
	}
	return nil
}

// Recent implements [Store]. The query walks the log backwards for the last
// n rows; the result is reversed so callers receive chronological order.
func (s *SQLite) Recent(ctx context.Context, n int) ([]Turn, error) {
	if n <= 0 {
		return nil, nil
	}

	const q = `
		SELECT role, content, timestamp
		FROM   history
		ORDER  BY id DESC
		LIMIT  ?`

	rows, err := s.db.QueryContext(ctx, q, n)
	if err != nil {
		return nil, fmt.Errorf("history: query recent: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.Role, &t.Content, &t.At); err != nil {
			return nil, fmt.Errorf("history: scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate recent: %w", err)
	}

	for i, j := 0, len(turns)-1; i < j; i, j = i+1, j-1 {
		turns[i], turns[j] = turns[j], turns[i]
	}
	return turns, nil
}

// Close implements [Store].
func (s *SQLite) Close() error {
	return s.db.Close()
}
