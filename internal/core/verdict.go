package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"math"
	"strings"
)

var (
	// ErrEmptyText is returned when there is no text to classify
	ErrEmptyText = errors.New("text cannot be empty")
	// ErrEmptyAudio is returned when an upload carries no bytes
	ErrEmptyAudio = errors.New("audio is empty")
	// ErrNoSpeech is returned when a recording transcribes to nothing
	ErrNoSpeech = errors.New("could not hear any voice")
	// ErrCacheExpired is returned by a cache holding an entry past its expiry
	ErrCacheExpired = errors.New("cache entry expired")
)

// DefaultThreshold is the score above which a transcript is a scam
const DefaultThreshold = 0.6

// NewVerdict applies the threshold to a score. A score strictly above the
// threshold is a scam. Confidence is the percentage (two decimals) of the
// chosen side, so it is always in [0, 100].
func NewVerdict(score, threshold float64) (isScam bool, confidence float64) {
	score = ClampScore(score)
	isScam = score > threshold
	if isScam {
		return true, roundPercent(score)
	}
	return false, roundPercent(1 - score)
}

// ClampScore forces a backend score into [0, 1]; NaN counts as 0.
func ClampScore(score float64) float64 {
	switch {
	case math.IsNaN(score), score < 0:
		return 0
	case score > 1:
		return 1
	default:
		return score
	}
}

func roundPercent(fraction float64) float64 {
	return math.Round(fraction*100*100) / 100
}

// Fingerprint identifies a transcript for caching, ignoring case and spacing
func Fingerprint(transcript string) string {
	normalized := strings.Join(strings.Fields(strings.ToLower(transcript)), " ")
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}

type requestIDKey struct{}

// WithRequestID attaches the request ID so backends can forward it
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestIDFromContext returns the request ID, or "" when none was set
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
