package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// CallerChecker reports whether a caller is trusted
type CallerChecker interface {
	IsTrusted(caller string) bool
}

// ServiceOptions holds the tunables of the detection service
type ServiceOptions struct {
	Threshold     float64
	CacheEnabled  bool
	CacheTTL      time.Duration
	MinAudioBytes int
}

// ScamDetectionService is the core service for scam detection
type ScamDetectionService struct {
	transcriber Transcriber
	classifier  Classifier
	cache       CacheRepository
	trusted     CallerChecker
	logger      *zap.Logger
	opts        ServiceOptions
}

// NewScamDetectionService creates a new scam detection service
func NewScamDetectionService(
	transcriber Transcriber,
	classifier Classifier,
	cache CacheRepository,
	trusted CallerChecker,
	logger *zap.Logger,
	opts ServiceOptions,
) *ScamDetectionService {
	return &ScamDetectionService{
		transcriber: transcriber,
		classifier:  classifier,
		cache:       cache,
		trusted:     trusted,
		logger:      logger,
		opts:        opts,
	}
}

// Threshold returns the configured scam threshold
func (s *ScamDetectionService) Threshold() float64 {
	return s.opts.Threshold
}

// DetectText classifies a transcript supplied directly by the caller
func (s *ScamDetectionService) DetectText(ctx context.Context, text, caller string) (*AnalysisResult, error) {
	transcript := strings.TrimSpace(text)
	if transcript == "" {
		return nil, ErrEmptyText
	}

	if caller != "" && s.trusted != nil && s.trusted.IsTrusted(caller) {
		s.logger.Info("Skipping scam check for trusted caller",
			zap.String("caller", caller),
			zap.String("action", "whitelist_bypass"))

		return &AnalysisResult{
			Transcript:  transcript,
			IsScam:      false,
			Score:       0,
			Confidence:  100,
			Explanation: "Caller is trusted",
			ModelUsed:   "whitelist",
			AnalyzedAt:  time.Now(),
		}, nil
	}

	key := Fingerprint(transcript)
	if s.opts.CacheEnabled && s.cache != nil {
		if result := s.lookupCache(ctx, key, transcript); result != nil {
			return result, nil
		}
	}

	classification, err := s.classifier.Classify(ctx, transcript)
	if err != nil {
		return nil, fmt.Errorf("classification failed: %w", err)
	}

	score := ClampScore(classification.Score)
	isScam, confidence := NewVerdict(score, s.opts.Threshold)
	result := &AnalysisResult{
		Transcript:  transcript,
		IsScam:      isScam,
		Score:       score,
		Confidence:  confidence,
		Explanation: classification.Explanation,
		ModelUsed:   classification.ModelUsed,
		AnalyzedAt:  time.Now(),
	}

	if s.opts.CacheEnabled && s.cache != nil {
		entry := &CacheEntry{
			Key:       key,
			IsScam:    isScam,
			Score:     score,
			ModelUsed: classification.ModelUsed,
			LastSeen:  result.AnalyzedAt,
			ExpiresAt: result.AnalyzedAt.Add(s.opts.CacheTTL),
		}
		if err := s.cache.Set(ctx, entry); err != nil {
			s.logger.Error("Failed to update cache", zap.Error(err))
		}
	}

	return result, nil
}

// lookupCache returns the cached verdict for key, or nil on a miss. Expired
// entries are evicted so the transcript is classified again.
func (s *ScamDetectionService) lookupCache(ctx context.Context, key, transcript string) *AnalysisResult {
	entry, err := s.cache.Get(ctx, key)
	if err == nil && time.Now().After(entry.ExpiresAt) {
		err = ErrCacheExpired
	}
	if errors.Is(err, ErrCacheExpired) {
		s.logger.Debug("Evicting expired cache entry", zap.String("key", key))
		if err := s.cache.Delete(ctx, key); err != nil {
			s.logger.Warn("Failed to evict expired cache entry", zap.Error(err))
		}
		return nil
	}
	if err != nil {
		return nil
	}

	s.logger.Debug("Cache hit for transcript", zap.String("key", key))
	isScam, confidence := NewVerdict(entry.Score, s.opts.Threshold)
	return &AnalysisResult{
		Transcript:  transcript,
		IsScam:      isScam,
		Score:       entry.Score,
		Confidence:  confidence,
		Explanation: "Result from cache",
		ModelUsed:   entry.ModelUsed,
		AnalyzedAt:  time.Now(),
	}
}

// AnalyzeAudio transcribes a full recording and classifies the transcript
func (s *ScamDetectionService) AnalyzeAudio(ctx context.Context, audio *Audio, caller string) (*AnalysisResult, error) {
	if audio == nil || len(audio.Data) == 0 {
		return nil, ErrEmptyAudio
	}

	transcript, err := s.transcribe(ctx, audio)
	if err != nil {
		return nil, err
	}
	if transcript == "" {
		return nil, ErrNoSpeech
	}

	return s.DetectText(ctx, transcript, caller)
}

// AnalyzeChunk analyzes one streamed chunk. Chunks without speech produce
// a result with no verdict rather than an error.
func (s *ScamDetectionService) AnalyzeChunk(ctx context.Context, chunk *Chunk) (*ChunkResult, error) {
	out := &ChunkResult{Index: chunk.Index, IsFinal: chunk.IsFinal}

	transcript := strings.TrimSpace(chunk.Transcript)
	if chunk.Audio != nil {
		transcript = ""
		if len(chunk.Audio.Data) > s.opts.MinAudioBytes {
			text, err := s.transcribe(ctx, chunk.Audio)
			if err != nil {
				return nil, err
			}
			transcript = text
		} else {
			s.logger.Debug("Chunk too small to transcribe",
				zap.Int("chunk_index", chunk.Index),
				zap.Int("size", len(chunk.Audio.Data)))
		}
	}
	out.Transcript = transcript

	if transcript == "" {
		return out, nil
	}

	result, err := s.DetectText(ctx, transcript, chunk.Caller)
	if err != nil {
		return nil, err
	}
	out.Result = result
	return out, nil
}

func (s *ScamDetectionService) transcribe(ctx context.Context, audio *Audio) (string, error) {
	start := time.Now()
	text, err := s.transcriber.Transcribe(ctx, audio)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}
	text = strings.TrimSpace(text)
	s.logger.Debug("Transcribed audio",
		zap.String("filename", audio.Filename),
		zap.Int("size", len(audio.Data)),
		zap.Int("transcript_length", len(text)),
		zap.Duration("duration", time.Since(start)))
	return text, nil
}
