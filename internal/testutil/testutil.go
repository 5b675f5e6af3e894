// Package testutil provides helpers for integration tests.
// Tests are gated on environment variables and skip when the backing
// service is not available.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 682682

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// The production schema is owned by the hosted store; these statements
// only mirror the columns this service touches, for test databases.
const testSchema = `
CREATE TABLE IF NOT EXISTS apps (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL DEFAULT 'ready',
	prompt TEXT NOT NULL DEFAULT '',
	app_url TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS user_devices (
	user_id TEXT NOT NULL,
	device_token TEXT NOT NULL UNIQUE,
	last_used_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS subscriptions (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	status TEXT NOT NULL,
	price_id TEXT NOT NULL,
	quantity INT NOT NULL DEFAULT 1,
	cancel_at_period_end BOOLEAN NOT NULL DEFAULT FALSE,
	canceled_at TIMESTAMPTZ,
	current_period_start TIMESTAMPTZ NOT NULL,
	current_period_end TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS user_integrations (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	integration_type TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS app_listing_info (
	id TEXT PRIMARY KEY,
	app_id TEXT NOT NULL,
	share_id TEXT NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	app_url TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS agent_responses (
	id TEXT PRIMARY KEY,
	app_id TEXT NOT NULL,
	user_id TEXT NOT NULL,
	agent_response TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

var testTables = []string{
	"apps",
	"user_devices",
	"subscriptions",
	"user_integrations",
	"app_listing_info",
	"agent_responses",
}

// EnsureSchema creates the test tables if they do not exist.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, testSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// TruncateAll clears every test table.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	for _, table := range testTables {
		if _, err := pool.Exec(ctx, "TRUNCATE "+table); err != nil {
			return fmt.Errorf("truncate %s: %w", table, err)
		}
	}
	return nil
}

// UniqueID returns a prefixed ULID for test fixtures.
func UniqueID(prefix string) string {
	return prefix + "-" + ulid.Make().String()
}

// NewRedisClient connects to the Redis named by REDIS_URL or skips.
func NewRedisClient(t testing.TB) *redis.Client {
	t.Helper()
	redisURL := RequireEnv(t, "REDIS_URL")

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("parse redis url: %v", err)
	}

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis not reachable: %v", err)
	}

	t.Cleanup(func() { client.Close() })
	return client
}
