package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CacheStore interface,
// for deployments where multiple analyzer instances share one cache.
type MySQLCache struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMySQLCache creates a new MySQL embedding cache
func NewMySQLCache(dsn string, logger *zap.Logger) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS embedding_cache (
			fingerprint VARCHAR(128) PRIMARY KEY,
			vector MEDIUMBLOB,
			model VARCHAR(128),
			dimension INT,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &MySQLCache{
		db:     db,
		logger: logger,
	}, nil
}

// Has reports whether an embedding exists for the fingerprint
func (c *MySQLCache) Has(ctx context.Context, key string) bool {
	var one int
	err := c.db.QueryRowContext(ctx, `
		SELECT 1 FROM embedding_cache WHERE fingerprint = ?
	`, key).Scan(&one)
	return err == nil
}

// Get retrieves a cached embedding for a fingerprint
func (c *MySQLCache) Get(ctx context.Context, key string) (*core.EmailEmbedding, error) {
	var vectorBlob []byte
	var model string
	var dimension int
	var createdAt time.Time

	err := c.db.QueryRowContext(ctx, `
		SELECT vector, model, dimension, created_at
		FROM embedding_cache
		WHERE fingerprint = ?
	`, key).Scan(&vectorBlob, &model, &dimension, &createdAt)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, core.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	var vector []float64
	if err := json.Unmarshal(vectorBlob, &vector); err != nil {
		c.logger.Warn("Unreadable cache entry",
			zap.String("fingerprint", key),
			zap.Error(err))
		return nil, core.ErrCorrupted
	}
	if len(vector) != dimension {
		return nil, core.ErrCorrupted
	}

	return &core.EmailEmbedding{
		Fingerprint: key,
		Vector:      vector,
		Model:       model,
		Dimension:   dimension,
		CreatedAt:   createdAt,
	}, nil
}

// Set stores an embedding under its fingerprint key
func (c *MySQLCache) Set(ctx context.Context, embedding *core.EmailEmbedding) error {
	vectorBlob, err := json.Marshal(embedding.Vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		REPLACE INTO embedding_cache (fingerprint, vector, model, dimension, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, embedding.Fingerprint, vectorBlob, embedding.Model, embedding.Dimension, embedding.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM embedding_cache WHERE fingerprint = ?
	`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *MySQLCache) Close() error {
	return c.db.Close()
}
