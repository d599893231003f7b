package openai

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Transcriber converts audio to text with the OpenAI transcription API
type Transcriber struct {
	client   *openai.Client
	model    string
	language string
	logger   *zap.Logger
}

// NewTranscriber creates a new OpenAI transcriber
func NewTranscriber(client *openai.Client, model, language string, logger *zap.Logger) *Transcriber {
	if model == "" {
		model = openai.Whisper1
	}
	return &Transcriber{
		client:   client,
		model:    model,
		language: language,
		logger:   logger,
	}
}

// Transcribe uploads the recording and returns the recognized text
func (t *Transcriber) Transcribe(ctx context.Context, audio *core.Audio) (string, error) {
	filename := audio.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   bytes.NewReader(audio.Data),
		Language: t.language,
		Format:   openai.AudioResponseFormatJSON,
	})
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio with OpenAI: %w", err)
	}

	t.logger.Debug("OpenAI transcription complete",
		zap.String("model", t.model),
		zap.String("filename", filename),
		zap.Int("text_length", len(resp.Text)))

	return resp.Text, nil
}
