package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/cases"

	"pogoda/internal/weather"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS search_history (
	id          BIGSERIAL PRIMARY KEY,
	city        TEXT NOT NULL,
	city_key    TEXT NOT NULL,
	searched_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS search_history_city_key_idx ON search_history (city_key);`

// Store keeps search history in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// SaveSearch records city as the most recent search, replacing any earlier
// entry for the same city regardless of case.
func (s *Store) SaveSearch(ctx context.Context, city string) error {
	key := cityKey(city)
	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM search_history WHERE city_key = $1`, key)
	batch.Queue(`INSERT INTO search_history (city, city_key) VALUES ($1, $2)`, city, key)

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()
	for range batch.Len() {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("save search: %w", err)
		}
	}
	return nil
}

func (s *Store) RecentSearches(ctx context.Context, limit int) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT city FROM search_history ORDER BY id DESC LIMIT $1`,
		normalizeLimit(limit),
	)
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	cities, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("recent searches: %w", err)
	}
	return cities, nil
}

// cityKey is the case-folded form under which a city is deduplicated.
func cityKey(city string) string {
	return cases.Fold().String(city)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return weather.MaxHistory
	}
	return limit
}
