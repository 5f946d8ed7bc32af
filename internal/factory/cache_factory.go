package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mailsift/mailsift/internal/adapters/cache"
	"github.com/mailsift/mailsift/internal/config"
	"github.com/mailsift/mailsift/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates embedding cache stores based on configuration
type CacheFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCacheFactory creates a new cache factory
func NewCacheFactory(cfg *config.Config, logger *zap.Logger) *CacheFactory {
	return &CacheFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCacheStore creates a cache store based on the configuration
func (f *CacheFactory) CreateCacheStore() (core.CacheStore, error) {
	cacheType := f.cfg.GetString("cache.type")

	switch cacheType {
	case "memory":
		return cache.NewMemoryCache(f.logger), nil
	case "sqlite":
		sqlitePath := f.cfg.GetString("cache.sqlite_path")
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(sqlitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(sqlitePath, f.logger)
	case "mysql":
		mysqlDSN := f.cfg.GetString("cache.mysql_dsn")
		return cache.NewMySQLCache(mysqlDSN, f.logger)
	case "noop":
		return cache.NewNoopCache(), nil
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheType)
	}
}
