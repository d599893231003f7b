package stt

import (
	"context"

	"github.com/mikey/scam-call-detector/internal/core"
)

// StaticTranscriber ignores the audio and returns a fixed transcript.
// Useful for demos and for exercising the classifier without a recognizer.
type StaticTranscriber struct {
	text string
}

// NewStaticTranscriber creates a transcriber that always returns text
func NewStaticTranscriber(text string) *StaticTranscriber {
	return &StaticTranscriber{text: text}
}

// Transcribe returns the configured transcript
func (t *StaticTranscriber) Transcribe(_ context.Context, _ *core.Audio) (string, error) {
	return t.text, nil
}
