package core

import (
	"context"
)

// Transcriber converts recorded speech into text
type Transcriber interface {
	// Transcribe returns the text spoken in the audio
	Transcribe(ctx context.Context, audio *Audio) (string, error)
}

// Classifier scores a transcript for scam likelihood
type Classifier interface {
	// Classify returns a raw score in [0, 1] for the transcript
	Classify(ctx context.Context, transcript string) (*ClassificationResult, error)
}

// HealthChecker is implemented by backends that can report their own health
type HealthChecker interface {
	Healthy(ctx context.Context) error
}

// CacheRepository defines the interface for caching scam analysis results
type CacheRepository interface {
	// Get retrieves a cached entry for a transcript fingerprint. A store
	// that still holds an expired entry returns ErrCacheExpired.
	Get(ctx context.Context, key string) (*CacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *CacheEntry) error

	// Delete removes a cache entry; used to evict expired entries on read
	Delete(ctx context.Context, key string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}
