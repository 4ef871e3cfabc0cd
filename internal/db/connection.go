package db

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB bundles the pgx pool with the typed query layer bound to it. The
// pool is exposed for callers that need raw access (session store,
// transactions); everything else goes through Queries.
type DB struct {
	Pool    *pgxpool.Pool
	Queries *Queries
}

// NewDB opens a connection pool against DATABASE_URL and verifies the
// database is actually reachable before returning. pgxpool.New only
// parses the config, so a bad URL would otherwise surface on the first
// query instead of at startup.
func NewDB(ctx context.Context) (*DB, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}

	return &DB{
		Pool:    pool,
		Queries: New(pool),
	}, nil
}

// Close releases the pool and all its connections.
func (db *DB) Close() {
	db.Pool.Close()
}
