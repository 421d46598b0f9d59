package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cost-analysis-engine/internal/common/config"

	_ "github.com/lib/pq"
)

const (
	createCacheTableSQL = `CREATE TABLE IF NOT EXISTS cache_store (
	namespace  TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	selectPayloadSQL = `SELECT payload FROM cache_store WHERE namespace = $1`
	upsertPayloadSQL = `INSERT INTO cache_store (namespace, payload, updated_at) VALUES ($1, $2, NOW())
ON CONFLICT (namespace) DO UPDATE SET payload = EXCLUDED.payload, updated_at = NOW()`
	deletePayloadSQL = `DELETE FROM cache_store WHERE namespace = $1`
)

// PostgresClient wraps the SQL database connection
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres creates a new PostgreSQL client
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// NewPostgresFromDB wraps an existing handle (sqlmock in tests).
func NewPostgresFromDB(db *sql.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

// Ping tests the database connection
func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

// Close closes the database connection
func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureCacheTable creates the cache_store table when missing.
func (c *PostgresClient) EnsureCacheTable(ctx context.Context) error {
	if _, err := c.DB.ExecContext(ctx, createCacheTableSQL); err != nil {
		return fmt.Errorf("create cache_store: %w", err)
	}
	return nil
}

// Load returns the payload of a namespace row, or nil when there is none.
func (c *PostgresClient) Load(ctx context.Context, namespace string) ([]byte, error) {
	var payload []byte
	err := c.DB.QueryRowContext(ctx, selectPayloadSQL, namespace).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load cache_store %s: %w", namespace, err)
	}
	return payload, nil
}

func (c *PostgresClient) Save(ctx context.Context, namespace string, payload []byte) error {
	if _, err := c.DB.ExecContext(ctx, upsertPayloadSQL, namespace, payload); err != nil {
		return fmt.Errorf("save cache_store %s: %w", namespace, err)
	}
	return nil
}

func (c *PostgresClient) Remove(ctx context.Context, namespace string) error {
	if _, err := c.DB.ExecContext(ctx, deletePayloadSQL, namespace); err != nil {
		return fmt.Errorf("delete cache_store %s: %w", namespace, err)
	}
	return nil
}
