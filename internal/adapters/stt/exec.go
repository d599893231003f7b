package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mattn/go-shellwords"
	"github.com/mikey/scam-call-detector/internal/core"
	"go.uber.org/zap"
)

// AudioPlaceholder is replaced by the path of the recording in exec commands
const AudioPlaceholder = "{audio}"

// ExecTranscriber runs a local speech recognizer command per recording
type ExecTranscriber struct {
	cmd       []string
	modelPath string
	language  string
	logger    *zap.Logger
	mu        sync.Mutex
}

type execResult struct {
	Text string `json:"text"`
}

// NewExecTranscriber parses the command line of the local recognizer
func NewExecTranscriber(command, modelPath, language string, logger *zap.Logger) (*ExecTranscriber, error) {
	parser := shellwords.NewParser()
	parser.ParseEnv = true
	args, err := parser.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse stt command: %w", err)
	}
	if len(args) == 0 {
		return nil, fmt.Errorf("stt command is empty")
	}
	return &ExecTranscriber{
		cmd:       args,
		modelPath: modelPath,
		language:  language,
		logger:    logger,
	}, nil
}

// Transcribe writes the audio to a temp file and runs the recognizer on it
func (t *ExecTranscriber) Transcribe(ctx context.Context, audio *core.Audio) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	ext := filepath.Ext(audio.Filename)
	if ext == "" {
		ext = ".wav"
	}
	file, err := os.CreateTemp("", "scam_stt_*"+ext)
	if err != nil {
		return "", fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(file.Name())

	if _, err := file.Write(audio.Data); err != nil {
		file.Close()
		return "", fmt.Errorf("write temp audio: %w", err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close temp audio: %w", err)
	}

	args := t.buildArgs(file.Name())
	command := exec.CommandContext(ctx, args[0], args[1:]...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	if err := command.Run(); err != nil {
		return "", fmt.Errorf("stt command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	text := parseOutput(stdout.Bytes())
	t.logger.Debug("Local recognizer finished",
		zap.String("command", args[0]),
		zap.Int("text_length", len(text)))
	return text, nil
}

func (t *ExecTranscriber) buildArgs(audioPath string) []string {
	args := make([]string, 0, len(t.cmd)+5)
	substituted := false
	for _, arg := range t.cmd {
		if strings.Contains(arg, AudioPlaceholder) {
			arg = strings.ReplaceAll(arg, AudioPlaceholder, audioPath)
			substituted = true
		}
		args = append(args, arg)
	}
	if !substituted {
		args = append(args, audioPath)
	}
	if t.modelPath != "" {
		args = append(args, "--model", t.modelPath)
	}
	if t.language != "" {
		args = append(args, "--language", t.language)
	}
	return args
}

// parseOutput accepts either {"text": ...} JSON or plain text on stdout
func parseOutput(out []byte) string {
	trimmed := bytes.TrimSpace(out)
	if bytes.HasPrefix(trimmed, []byte("{")) {
		var resp execResult
		if err := json.Unmarshal(trimmed, &resp); err == nil {
			return strings.TrimSpace(resp.Text)
		}
	}
	return string(trimmed)
}
