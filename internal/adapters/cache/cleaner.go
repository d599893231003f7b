package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mikey/scam-call-detector/internal/core"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned when a cache entry is not found
	ErrNotFound = errors.New("cache entry not found")
	// ErrExpired is returned when a cache entry has expired
	ErrExpired = core.ErrCacheExpired
)

// cleaner runs a cache's Cleanup on a ticker until stopped
type cleaner struct {
	freq   time.Duration
	logger *zap.Logger
	stopCh chan struct{}
	once   sync.Once
}

func newCleaner(freq time.Duration, logger *zap.Logger) *cleaner {
	return &cleaner{
		freq:   freq,
		logger: logger,
		stopCh: make(chan struct{}),
	}
}

// start launches the background cleanup task; a non-positive frequency disables it
func (c *cleaner) start(cleanup func(ctx context.Context) error) {
	if c.freq <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(c.freq)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := cleanup(context.Background()); err != nil {
					c.logger.Error("Failed to clean up cache", zap.Error(err))
				}
			case <-c.stopCh:
				return
			}
		}
	}()
}

func (c *cleaner) stop() {
	c.once.Do(func() { close(c.stopCh) })
}
