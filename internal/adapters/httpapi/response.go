package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mikey/scam-call-detector/internal/core"
)

// Client-facing error messages
const (
	msgNoFile         = "No file provided"
	msgNoFileSelected = "No file selected"
	msgNoSpeech       = "Could not hear any voice."
	msgEmptyAudio     = "Audio file is empty"
	msgNoChunk        = "No transcript or audio provided"
	msgBadChunkIndex  = "chunk_index must be an integer"
	msgNoText         = "No text provided"
	msgEmptyText      = "Text cannot be empty"
	msgTooLarge       = "Upload exceeds the maximum allowed size"
)

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// AnalysisResponse is returned by /predict
type AnalysisResponse struct {
	Transcript    string  `json:"transcript"`
	Transcription string  `json:"transcription"`
	IsScam        bool    `json:"is_scam"`
	Confidence    float64 `json:"confidence"`
	Score         float64 `json:"score"`
	ModelUsed     string  `json:"model_used"`
	Explanation   string  `json:"explanation,omitempty"`
	Message       string  `json:"message"`
}

// DetectResponse is returned by /detect
type DetectResponse struct {
	Text        string  `json:"text"`
	Transcript  string  `json:"transcript"`
	IsScam      bool    `json:"is_scam"`
	Confidence  float64 `json:"confidence"`
	Score       float64 `json:"score"`
	ModelUsed   string  `json:"model_used"`
	Explanation string  `json:"explanation,omitempty"`
}

// ChunkResponse is returned by /stream; the verdict is null when the chunk had no speech
type ChunkResponse struct {
	ChunkIndex    int      `json:"chunk_index"`
	Transcript    string   `json:"transcript"`
	Transcription string   `json:"transcription"`
	IsScam        *bool    `json:"is_scam"`
	Confidence    *float64 `json:"confidence"`
	IsFinal       bool     `json:"is_final"`
}

// HealthResponse is returned by /health
type HealthResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ModelsLoaded bool   `json:"models_loaded"`
	Transcriber  string `json:"transcriber"`
	Classifier   string `json:"classifier"`
}

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{
		Error:     message,
		RequestID: c.GetString(requestIDKey),
	})
}

// handleError maps service errors to HTTP replies
func handleError(c *gin.Context, err error) {
	_ = c.Error(err)

	var tooLarge *http.MaxBytesError
	switch {
	case errors.Is(err, core.ErrEmptyText):
		respondError(c, http.StatusBadRequest, msgEmptyText)
	case errors.Is(err, core.ErrNoSpeech):
		respondError(c, http.StatusBadRequest, msgNoSpeech)
	case errors.Is(err, core.ErrEmptyAudio):
		respondError(c, http.StatusBadRequest, msgEmptyAudio)
	case errors.As(err, &tooLarge):
		respondError(c, http.StatusRequestEntityTooLarge, msgTooLarge)
	default:
		respondError(c, http.StatusInternalServerError, err.Error())
	}
}
