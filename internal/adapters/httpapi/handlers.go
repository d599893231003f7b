package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/metrics"
	"github.com/mikey/scam-call-detector/internal/ports"
	"github.com/mikey/scam-call-detector/internal/utils"
	"go.uber.org/zap"
)

const multipartMemory = 32 << 20

var errBadChunkIndex = errors.New("invalid chunk index")

// HandlerOptions describes the configured backends and audio defaults
type HandlerOptions struct {
	TranscriberName string
	ClassifierName  string
	PCMSampleRate   int
	PCMChannels     int
}

// Handler serves the scam detection endpoints
type Handler struct {
	detector ports.Detector
	ready    core.HealthChecker
	metrics  *metrics.Metrics
	logger   *zap.Logger
	opts     HandlerOptions
}

// NewHandler creates a new handler. ready may be nil when the classifier
// cannot report its health.
func NewHandler(detector ports.Detector, ready core.HealthChecker, m *metrics.Metrics, logger *zap.Logger, opts HandlerOptions) *Handler {
	return &Handler{
		detector: detector,
		ready:    ready,
		metrics:  m,
		logger:   logger,
		opts:     opts,
	}
}

// Health handles GET /health
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:       "healthy",
		Message:      "Scam detection API is running",
		ModelsLoaded: true,
		Transcriber:  h.opts.TranscriberName,
		Classifier:   h.opts.ClassifierName,
	})
}

// Ready handles GET /ready
func (h *Handler) Ready(c *gin.Context) {
	if h.ready != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if err := h.ready.Healthy(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// Predict handles POST /predict with a multipart audio upload
func (h *Handler) Predict(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		if isTooLarge(err) {
			handleError(c, err)
			return
		}
		respondError(c, http.StatusBadRequest, msgNoFile)
		return
	}

	form := c.Request.MultipartForm
	headers := form.File["file"]
	if len(headers) == 0 {
		if _, sent := form.Value["file"]; sent {
			respondError(c, http.StatusBadRequest, msgNoFileSelected)
			return
		}
		respondError(c, http.StatusBadRequest, msgNoFile)
		return
	}
	if headers[0].Filename == "" {
		respondError(c, http.StatusBadRequest, msgNoFileSelected)
		return
	}

	audio, err := h.readAudio(headers[0])
	if err != nil {
		handleError(c, err)
		return
	}

	result, err := h.detector.AnalyzeAudio(c.Request.Context(), audio, c.PostForm("caller"))
	if err != nil {
		handleError(c, err)
		return
	}
	h.metrics.ObserveVerdict(result.IsScam)

	c.JSON(http.StatusOK, AnalysisResponse{
		Transcript:    result.Transcript,
		Transcription: result.Transcript,
		IsScam:        result.IsScam,
		Confidence:    result.Confidence,
		Score:         result.Score,
		ModelUsed:     result.ModelUsed,
		Explanation:   result.Explanation,
		Message:       "Analysis complete",
	})
}

type streamRequest struct {
	TranscriptChunk *string         `json:"transcript_chunk"`
	ChunkIndex      json.RawMessage `json:"chunk_index"`
	IsFinal         bool            `json:"is_final"`
	Caller          string          `json:"caller"`
}

// Stream handles POST /stream with either an audio chunk or a transcript chunk
func (h *Handler) Stream(c *gin.Context) {
	var (
		chunk *core.Chunk
		err   error
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		chunk, err = h.multipartChunk(c)
	} else {
		chunk, err = jsonChunk(c)
	}
	if err != nil {
		switch {
		case errors.Is(err, errBadChunkIndex):
			respondError(c, http.StatusBadRequest, msgBadChunkIndex)
		case isTooLarge(err):
			handleError(c, err)
		default:
			respondError(c, http.StatusBadRequest, msgNoChunk)
		}
		return
	}

	out, err := h.detector.AnalyzeChunk(c.Request.Context(), chunk)
	if err != nil {
		handleError(c, err)
		return
	}

	resp := ChunkResponse{
		ChunkIndex:    out.Index,
		Transcript:    out.Transcript,
		Transcription: out.Transcript,
		IsFinal:       out.IsFinal,
	}
	if out.Result != nil {
		isScam := out.Result.IsScam
		confidence := out.Result.Confidence
		resp.IsScam = &isScam
		resp.Confidence = &confidence
		h.metrics.ObserveVerdict(isScam)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) multipartChunk(c *gin.Context) (*core.Chunk, error) {
	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		return nil, err
	}
	form := c.Request.MultipartForm

	index, err := parseChunkIndex(formValue(form, "chunk_index"))
	if err != nil {
		return nil, err
	}
	chunk := &core.Chunk{
		Index:   index,
		IsFinal: strings.EqualFold(formValue(form, "is_final"), "true"),
		Caller:  formValue(form, "caller"),
	}

	if headers := form.File["chunk"]; len(headers) > 0 {
		audio, err := h.readAudio(headers[0])
		if err != nil {
			return nil, err
		}
		chunk.Audio = audio
		return chunk, nil
	}
	if text, ok := form.Value["transcript_chunk"]; ok && len(text) > 0 {
		chunk.Transcript = text[0]
		return chunk, nil
	}
	return nil, errors.New("no chunk in form")
}

func jsonChunk(c *gin.Context) (*core.Chunk, error) {
	var req streamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, err
		}
		return nil, fmt.Errorf("invalid stream request: %w", err)
	}
	if req.TranscriptChunk == nil {
		return nil, errors.New("no transcript chunk")
	}

	index, err := parseChunkIndex(rawIndex(req.ChunkIndex))
	if err != nil {
		return nil, err
	}
	return &core.Chunk{
		Index:      index,
		IsFinal:    req.IsFinal,
		Transcript: *req.TranscriptChunk,
		Caller:     req.Caller,
	}, nil
}

type detectRequest struct {
	Text   *string `json:"text"`
	Caller string  `json:"caller"`
}

// Detect handles POST /detect with a JSON transcript
func (h *Handler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Text == nil {
		if isTooLarge(err) {
			handleError(c, err)
			return
		}
		respondError(c, http.StatusBadRequest, msgNoText)
		return
	}

	result, err := h.detector.DetectText(c.Request.Context(), *req.Text, req.Caller)
	if err != nil {
		handleError(c, err)
		return
	}
	h.metrics.ObserveVerdict(result.IsScam)

	c.JSON(http.StatusOK, DetectResponse{
		Text:        result.Transcript,
		Transcript:  result.Transcript,
		IsScam:      result.IsScam,
		Confidence:  result.Confidence,
		Score:       result.Score,
		ModelUsed:   result.ModelUsed,
		Explanation: result.Explanation,
	})
}

// readAudio loads an uploaded file, wrapping raw PCM in a WAV container
func (h *Handler) readAudio(header *multipart.FileHeader) (*core.Audio, error) {
	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	audio := &core.Audio{Filename: filepath.Base(header.Filename), Data: buf.Bytes()}
	if len(audio.Data) > 0 && utils.IsRawPCM(audio.Filename) {
		wav, err := utils.PCMToWAV(audio.Data, h.opts.PCMSampleRate, h.opts.PCMChannels)
		if err != nil {
			return nil, fmt.Errorf("failed to convert pcm upload: %w", err)
		}
		audio.Filename = strings.TrimSuffix(audio.Filename, filepath.Ext(audio.Filename)) + ".wav"
		audio.Data = wav
	}

	if info, ok := utils.InspectWAV(audio.Data); ok {
		h.logger.Debug("Received WAV upload",
			zap.String("filename", audio.Filename),
			zap.Int("sample_rate", info.SampleRate),
			zap.Int("channels", info.Channels),
			zap.Duration("duration", info.Duration))
	}
	return audio, nil
}

func parseChunkIndex(value string) (int, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	index, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", errBadChunkIndex, value)
	}
	return index, nil
}

// rawIndex accepts chunk_index as a JSON number or a numeric string
func rawIndex(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

func formValue(form *multipart.Form, key string) string {
	if values := form.Value[key]; len(values) > 0 {
		return values[0]
	}
	return ""
}

func isTooLarge(err error) bool {
	var tooLarge *http.MaxBytesError
	return err != nil && errors.As(err, &tooLarge)
}
