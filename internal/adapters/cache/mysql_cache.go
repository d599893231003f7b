package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/mikey/scam-call-detector/internal/core"
	"go.uber.org/zap"
)

// MySQLCache is a MySQL implementation of the CacheRepository interface
type MySQLCache struct {
	db      *sql.DB
	logger  *zap.Logger
	cleaner *cleaner
}

// NewMySQLCache creates a new MySQL cache
func NewMySQLCache(dsn string, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newMySQLCache(db, logger, cleanupFreq)
}

// newMySQLCache creates the cache table on an open connection and starts
// the cleanup task. The connection is closed on failure.
func newMySQLCache(db *sql.DB, logger *zap.Logger, cleanupFreq time.Duration) (*MySQLCache, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS scam_cache (
			fingerprint CHAR(64) PRIMARY KEY,
			is_scam BOOLEAN NOT NULL,
			score DOUBLE NOT NULL,
			model_used VARCHAR(255) NOT NULL DEFAULT '',
			last_seen BIGINT NOT NULL,
			expires_at BIGINT NOT NULL,
			INDEX idx_expires_at (expires_at)
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	cache := &MySQLCache{
		db:      db,
		logger:  logger,
		cleaner: newCleaner(cleanupFreq, logger),
	}
	cache.cleaner.start(cache.Cleanup)

	return cache, nil
}

// Get retrieves a cached entry by transcript fingerprint
func (c *MySQLCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
	entry, err := queryEntry(ctx, c.db, `
		SELECT fingerprint, is_scam, score, model_used, last_seen, expires_at
		FROM scam_cache
		WHERE fingerprint = ? AND expires_at > ?
	`, key, time.Now().Unix())
	if err != nil && !errors.Is(err, ErrNotFound) {
		c.logger.Error("Failed to query cache", zap.Error(err), zap.String("key", key))
	}
	return entry, err
}

// Set stores a cache entry
func (c *MySQLCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT INTO scam_cache (fingerprint, is_scam, score, model_used, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			is_scam = VALUES(is_scam),
			score = VALUES(score),
			model_used = VALUES(model_used),
			last_seen = VALUES(last_seen),
			expires_at = VALUES(expires_at)
	`, entry.Key, entry.IsScam, entry.Score, entry.ModelUsed, entry.LastSeen.Unix(), entry.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *MySQLCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM scam_cache WHERE fingerprint = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *MySQLCache) Cleanup(ctx context.Context) error {
	result, err := c.db.ExecContext(ctx, `DELETE FROM scam_cache WHERE expires_at <= ?`, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to clean up expired entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		c.logger.Warn("Failed to get rows affected during cleanup", zap.Error(err))
	} else {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int64("expired_count", rowsAffected))
	}
	return nil
}

// Stop stops the background cleanup task and closes the database connection
func (c *MySQLCache) Stop() {
	c.cleaner.stop()
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close MySQL database", zap.Error(err))
	}
}
