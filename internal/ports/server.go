package ports

import (
	"context"

	"github.com/mikey/scam-call-detector/internal/core"
)

// Detector is the analysis surface exposed to the transports
type Detector interface {
	// DetectText classifies a transcript
	DetectText(ctx context.Context, text, caller string) (*core.AnalysisResult, error)

	// AnalyzeAudio transcribes and classifies a full recording
	AnalyzeAudio(ctx context.Context, audio *core.Audio, caller string) (*core.AnalysisResult, error)

	// AnalyzeChunk transcribes and classifies one streamed chunk
	AnalyzeChunk(ctx context.Context, chunk *core.Chunk) (*core.ChunkResult, error)
}

// Server defines the interface for a long running transport
type Server interface {
	// Start starts serving in the background
	Start() error

	// Stop gracefully stops the server
	Stop() error
}
