package factory

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mikey/scam-call-detector/internal/adapters/cache"
	"github.com/mikey/scam-call-detector/internal/config"
	"github.com/mikey/scam-call-detector/internal/core"
	"go.uber.org/zap"
)

// CacheFactory creates verdict caches
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

// CreateCacheRepository creates the configured cache. The store is built
// even when caching is disabled so that it can be enabled by config alone.
func (f *CacheFactory) CreateCacheRepository() (core.CacheRepository, error) {
	cacheCfg, err := f.cfg.GetCache()
	if err != nil {
		return nil, err
	}

	logger := f.logger.With(zap.String("cache", cacheCfg.Type))
	logger.Info("Creating verdict cache", zap.Bool("enabled", cacheCfg.Enabled), zap.Duration("ttl", cacheCfg.TTL))

	switch cacheCfg.Type {
	case "memory":
		return cache.NewMemoryCache(logger, cacheCfg.CleanupFrequency), nil
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cacheCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return cache.NewSQLiteCache(cacheCfg.SQLitePath, logger, cacheCfg.CleanupFrequency)
	case "mysql":
		return cache.NewMySQLCache(cacheCfg.MySQLDSN, logger, cacheCfg.CleanupFrequency)
	case "redis":
		return cache.NewRedisCache(cacheCfg.RedisAddress, cacheCfg.RedisPassword, cacheCfg.RedisDB, logger)
	default:
		return nil, fmt.Errorf("unsupported cache type: %s", cacheCfg.Type)
	}
}
