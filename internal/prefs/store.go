package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/dgallion1/outliner/internal/heading"
)

const schema = `CREATE TABLE IF NOT EXISTS preferences (
	user_id           TEXT PRIMARY KEY,
	include_hidden_at INTEGER NOT NULL,
	updated_at        TEXT NOT NULL
)`

// Store persists per-user display options in SQLite.
type Store struct {
	db       *sql.DB
	defaults heading.Options
}

// Open opens (creating if needed) the database at path. Use ":memory:" for
// a throwaway store.
func Open(path string, defaults heading.Options) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open preferences db: %w", err)
	}
	// A single connection keeps ":memory:" databases shared and serialises
	// writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create preferences schema: %w", err)
	}
	return &Store{db: db, defaults: defaults}, nil
}

// Get returns the stored options for userID, or the defaults.
func (s *Store) Get(ctx context.Context, userID string) (heading.Options, error) {
	var hidden int
	err := s.db.QueryRowContext(ctx,
		`SELECT include_hidden_at FROM preferences WHERE user_id = ?`, userID,
	).Scan(&hidden)
	if errors.Is(err, sql.ErrNoRows) {
		return s.defaults, nil
	}
	if err != nil {
		return heading.Options{}, fmt.Errorf("get preferences %s: %w", userID, err)
	}
	return heading.Options{IncludeHiddenAT: hidden != 0}, nil
}

// Set stores opts for userID.
func (s *Store) Set(ctx context.Context, userID string, opts heading.Options) error {
	hidden := 0
	if opts.IncludeHiddenAT {
		hidden = 1
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO preferences (user_id, include_hidden_at, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET include_hidden_at = excluded.include_hidden_at, updated_at = excluded.updated_at`,
		userID, hidden, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("set preferences %s: %w", userID, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
