package core

import (
	"time"
)

// Audio is an uploaded recording or recording chunk
type Audio struct {
	Filename string
	Data     []byte
}

// ClassificationResult is the raw output of a classifier backend
type ClassificationResult struct {
	// Score is the scam likelihood in [0, 1]
	Score       float64
	Explanation string
	ModelUsed   string
}

// AnalysisResult represents the result of scam analysis
type AnalysisResult struct {
	Transcript  string
	IsScam      bool
	Score       float64
	Confidence  float64
	Explanation string
	ModelUsed   string
	AnalyzedAt  time.Time
}

// Chunk is one piece of a call being streamed for live analysis.
// Exactly one of Audio or Transcript is used; Audio wins when set.
type Chunk struct {
	Index      int
	IsFinal    bool
	Audio      *Audio
	Transcript string
	Caller     string
}

// ChunkResult is the outcome of a streamed chunk. Result is nil when
// the chunk carried no speech.
type ChunkResult struct {
	Index      int
	IsFinal    bool
	Transcript string
	Result     *AnalysisResult
}

type CacheEntry struct {
	Key       string
	IsScam    bool
	Score     float64
	ModelUsed string
	LastSeen  time.Time
	ExpiresAt time.Time
}
