package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/mikey/scam-call-detector/internal/core"
	"go.uber.org/zap"
)

// RemoteTranscriber sends recordings to an HTTP transcription service
type RemoteTranscriber struct {
	baseURL      string
	language     string
	maxRetryTime time.Duration
	httpClient   *http.Client
	logger       *zap.Logger
}

type remoteResponse struct {
	Text string `json:"text"`
}

// NewRemoteTranscriber creates a client for a transcription service
func NewRemoteTranscriber(baseURL, language string, timeout, maxRetryTime time.Duration, logger *zap.Logger) *RemoteTranscriber {
	return &RemoteTranscriber{
		baseURL:      strings.TrimRight(baseURL, "/"),
		language:     language,
		maxRetryTime: maxRetryTime,
		httpClient:   &http.Client{Timeout: timeout},
		logger:       logger,
	}
}

// Transcribe uploads the recording, retrying transport errors and 5xx responses
func (t *RemoteTranscriber) Transcribe(ctx context.Context, audio *core.Audio) (string, error) {
	body, contentType, err := t.encode(audio)
	if err != nil {
		return "", err
	}

	var result remoteResponse
	attempts := 0
	op := func() error {
		attempts++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/transcribe", bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(fmt.Errorf("failed to create request: %w", err))
		}
		req.Header.Set("Content-Type", contentType)
		if id := core.RequestIDFromContext(ctx); id != "" {
			req.Header.Set("X-Request-ID", id)
		}

		resp, err := t.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("failed to send request: %w", err)
		}
		defer resp.Body.Close()

		respBody, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}
		switch {
		case resp.StatusCode >= 500:
			return fmt.Errorf("transcription service returned status %d: %s", resp.StatusCode, string(respBody))
		case resp.StatusCode != http.StatusOK:
			return backoff.Permanent(fmt.Errorf("transcription service returned status %d: %s", resp.StatusCode, string(respBody)))
		}

		if err := json.Unmarshal(respBody, &result); err != nil {
			return backoff.Permanent(fmt.Errorf("failed to decode response: %w", err))
		}
		return nil
	}

	notify := func(err error, wait time.Duration) {
		t.logger.Warn("Retrying transcription request",
			zap.Error(err),
			zap.Duration("wait", wait))
	}

	if err := backoff.RetryNotify(op, backoff.WithContext(t.newBackOff(), ctx), notify); err != nil {
		return "", err
	}

	t.logger.Debug("Remote transcription complete",
		zap.Int("attempts", attempts),
		zap.Int("text_length", len(result.Text)))
	return result.Text, nil
}

// newBackOff retries with exponential waits until maxRetryTime has passed.
// A zero maxRetryTime disables retries.
func (t *RemoteTranscriber) newBackOff() backoff.BackOff {
	if t.maxRetryTime <= 0 {
		return &backoff.StopBackOff{}
	}
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 200 * time.Millisecond
	bo.MaxElapsedTime = t.maxRetryTime
	return bo
}

func (t *RemoteTranscriber) encode(audio *core.Audio) ([]byte, string, error) {
	filename := audio.Filename
	if filename == "" {
		filename = "audio.wav"
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return nil, "", fmt.Errorf("failed to write form file: %w", err)
	}
	if t.language != "" {
		if err := w.WriteField("language", t.language); err != nil {
			return nil, "", fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}
