package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mailsift/mailsift/internal/core"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the CacheStore interface.
// Vectors are stored as JSON blobs; an entry that fails to decode is
// reported as corrupted so the caller can discard and recompute it.
type SQLiteCache struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLiteCache creates a new SQLite embedding cache
func NewSQLiteCache(dbPath string, logger *zap.Logger) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Create table if it doesn't exist
	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS embedding_cache (
			fingerprint TEXT PRIMARY KEY,
			vector BLOB,
			model TEXT,
			dimension INTEGER,
			created_at TIMESTAMP
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	return &SQLiteCache{
		db:     db,
		logger: logger,
	}, nil
}

// Has reports whether an embedding exists for the fingerprint
func (c *SQLiteCache) Has(ctx context.Context, key string) bool {
	var one int
	err := c.db.QueryRowContext(ctx, `
		SELECT 1 FROM embedding_cache WHERE fingerprint = ?
	`, key).Scan(&one)
	return err == nil
}

// Get retrieves a cached embedding for a fingerprint
func (c *SQLiteCache) Get(ctx context.Context, key string) (*core.EmailEmbedding, error) {
	var vectorBlob []byte
	var model, createdAt string
	var dimension int

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
		c.logger.Warn("Cache entry dimension mismatch",
			zap.String("fingerprint", key),
			zap.Int("stored", len(vector)),
			zap.Int("expected", dimension))
		return nil, core.ErrCorrupted
	}

	entry := &core.EmailEmbedding{
		Fingerprint: key,
		Vector:      vector,
		Model:       model,
		Dimension:   dimension,
	}
	if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
		entry.CreatedAt = t
	}
	return entry, nil
}

// Set stores an embedding under its fingerprint key
func (c *SQLiteCache) Set(ctx context.Context, embedding *core.EmailEmbedding) error {
	vectorBlob, err := json.Marshal(embedding.Vector)
	if err != nil {
		return fmt.Errorf("failed to encode vector: %w", err)
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO embedding_cache (fingerprint, vector, model, dimension, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, embedding.Fingerprint, vectorBlob, embedding.Model, embedding.Dimension, embedding.CreatedAt.Format(time.RFC3339))

	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	_, err := c.db.ExecContext(ctx, `
		DELETE FROM embedding_cache WHERE fingerprint = ?
	`, key)
	if err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Close closes the database connection
func (c *SQLiteCache) Close() error {
	return c.db.Close()
}
