package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS search_history (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	city        TEXT NOT NULL,
	city_key    TEXT NOT NULL,
	searched_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS search_history_city_key_idx ON search_history (city_key);`

// SQLite keeps search history in a local database file.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path (":memory:" for a throwaway one).
func OpenSQLite(ctx context.Context, path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection serializes writers and keeps :memory: databases shared.
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Close() error {
	return s.db.Close()
}

func (s *SQLite) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *SQLite) SaveSearch(ctx context.Context, city string) error {
	key := cityKey(city)
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save search: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM search_history WHERE city_key = ?`, key); err != nil {
		return fmt.Errorf("save search: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO search_history (city, city_key) VALUES (?, ?)`, city, key); err != nil {
		return fmt.Errorf("save search: %w", err)
	}
	return tx.Commit()
}

func (s *SQLite) RecentSearches(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT city FROM search_history ORDER BY id DESC LIMIT ?`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	defer rows.Close()

	var cities []string
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, fmt.Errorf("recent searches: %w", err)
		}
		cities = append(cities, city)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	return cities, nil
}
