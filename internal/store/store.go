package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS oars_analyses (
	id            uuid PRIMARY KEY,
	created_at    timestamptz NOT NULL,
	language      text NOT NULL,
	difficulty    text NOT NULL,
	strategy_used text NOT NULL,
	total_score   integer NOT NULL,
	counts        jsonb NOT NULL,
	document      jsonb NOT NULL
);
CREATE INDEX IF NOT EXISTS oars_analyses_created_at_idx ON oars_analyses (created_at DESC);`

// EnsureSchema creates the archive table when missing.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
