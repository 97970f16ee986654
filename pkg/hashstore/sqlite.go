package hashstore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_hashes (
	hash TEXT PRIMARY KEY,
	added_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ', 'now'))
);`

// SQLiteStore persists the processed-hash set in an SQLite database so the
// monitor survives restarts without reprocessing old content.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the hash store at the given path.
// Pass ":memory:" for an ephemeral store.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening hash store: %w", err)
	}

	// Workers share one store; modernc sqlite serializes writes per conn.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 10000",
		"PRAGMA synchronous = NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating hash store schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Contains(ctx context.Context, hash string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM processed_hashes WHERE hash = ?", hash).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying hash store: %w", err)
	}
	return true, nil
}

func (s *SQLiteStore) Add(ctx context.Context, hash string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO processed_hashes (hash) VALUES (?) ON CONFLICT(hash) DO NOTHING", hash)
	if err != nil {
		return fmt.Errorf("recording hash: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
