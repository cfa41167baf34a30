// Package history keeps an append-only log of completed fetches in a small
// sqlite database under the config dir. Live metric samples are rebuilt on
// every cycle; this log exists only for the headline sparkline and the
// history command.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS fetch_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	fetched_at  TIMESTAMP NOT NULL,
	provider    TEXT NOT NULL,
	status      TEXT NOT NULL,
	headline    REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_fetch_log_fetched_at ON fetch_log(fetched_at);
`

// Entry is one completed fetch. Headline is the aggregate percentage, or -1
// when the fetch produced no data.
type Entry struct {
	FetchedAt time.Time
	Provider  string
	Status    string
	Headline  float64
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening history DB: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing history schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Append(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO fetch_log (fetched_at, provider, status, headline) VALUES (?, ?, ?, ?)`,
		e.FetchedAt.UTC(), e.Provider, e.Status, e.Headline,
	)
	if err != nil {
		return fmt.Errorf("appending fetch log: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT fetched_at, provider, status, headline FROM fetch_log ORDER BY fetched_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying fetch log: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.FetchedAt, &e.Provider, &e.Status, &e.Headline); err != nil {
			return nil, fmt.Errorf("scanning fetch log: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Headlines returns the last limit numeric headlines in chronological order,
// ready to feed a sparkline. No-data entries are skipped.
func (s *Store) Headlines(limit int) ([]float64, error) {
	entries, err := s.Recent(limit)
	if err != nil {
		return nil, err
	}

	var out []float64
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Headline >= 0 {
			out = append(out, entries[i].Headline)
		}
	}
	return out, nil
}

// Prune drops entries older than the retention window.
func (s *Store) Prune(retention time.Duration) error {
	cutoff := time.Now().UTC().Add(-retention)
	if _, err := s.db.Exec(`DELETE FROM fetch_log WHERE fetched_at < ?`, cutoff); err != nil {
		return fmt.Errorf("pruning fetch log: %w", err)
	}
	return nil
}
