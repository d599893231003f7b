package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/mikey/scam-call-detector/internal/core"
	"go.uber.org/zap"
)

// SQLiteCache is a SQLite implementation of the CacheRepository interface
type SQLiteCache struct {
	db      *sql.DB
	logger  *zap.Logger
	cleaner *cleaner
}

// NewSQLiteCache creates a new SQLite cache
func NewSQLiteCache(dbPath string, logger *zap.Logger, cleanupFreq time.Duration) (*SQLiteCache, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS scam_cache (
			fingerprint TEXT PRIMARY KEY,
			is_scam BOOLEAN NOT NULL,
			score REAL NOT NULL,
			model_used TEXT NOT NULL DEFAULT '',
			last_seen INTEGER NOT NULL,
			expires_at INTEGER NOT NULL
		)
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_scam_cache_expires_at ON scam_cache(expires_at)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create index: %w", err)
	}

	cache := &SQLiteCache{
		db:      db,
		logger:  logger,
		cleaner: newCleaner(cleanupFreq, logger),
	}
	cache.cleaner.start(cache.Cleanup)

	return cache, nil
}

// Get retrieves a cached entry by transcript fingerprint
func (c *SQLiteCache) Get(ctx context.Context, key string) (*core.CacheEntry, error) {
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
func (c *SQLiteCache) Set(ctx context.Context, entry *core.CacheEntry) error {
	_, err := c.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO scam_cache (fingerprint, is_scam, score, model_used, last_seen, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, entry.Key, entry.IsScam, entry.Score, entry.ModelUsed, entry.LastSeen.Unix(), entry.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to insert cache entry: %w", err)
	}
	return nil
}

// Delete removes a cache entry
func (c *SQLiteCache) Delete(ctx context.Context, key string) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM scam_cache WHERE fingerprint = ?`, key); err != nil {
		return fmt.Errorf("failed to delete cache entry: %w", err)
	}
	return nil
}

// Cleanup removes expired entries
func (c *SQLiteCache) Cleanup(ctx context.Context) error {
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
func (c *SQLiteCache) Stop() {
	c.cleaner.stop()
	if err := c.db.Close(); err != nil {
		c.logger.Error("Failed to close SQLite database", zap.Error(err))
	}
}

// queryEntry scans a single scam_cache row; both SQL caches share the schema
func queryEntry(ctx context.Context, db *sql.DB, query string, args ...any) (*core.CacheEntry, error) {
	var (
		entry               core.CacheEntry
		lastSeen, expiresAt int64
	)
	err := db.QueryRowContext(ctx, query, args...).
		Scan(&entry.Key, &entry.IsScam, &entry.Score, &entry.ModelUsed, &lastSeen, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}
	entry.LastSeen = time.Unix(lastSeen, 0)
	entry.ExpiresAt = time.Unix(expiresAt, 0)
	return &entry, nil
}
