package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/dataset"
	"github.com/mikey/scam-call-detector/internal/ports"
	"github.com/mikey/scam-call-detector/internal/utils"
	"go.uber.org/zap"
)

const previewSize = 500

// Runner implements the command-line interface for scam detection
type Runner struct {
	detector      ports.Detector
	logger        *zap.Logger
	out           io.Writer
	textProcessor *utils.TextProcessor
	verbose       bool
	jsonOutput    bool
	concurrency   int
}

// Options tunes the runner output. A nil TextProcessor gets a default one.
type Options struct {
	Verbose       bool
	JSONOutput    bool
	Concurrency   int
	TextProcessor *utils.TextProcessor
}

// NewRunner creates a new CLI runner writing to out
func NewRunner(detector ports.Detector, logger *zap.Logger, out io.Writer, opts Options) *Runner {
	tp := opts.TextProcessor
	if tp == nil {
		tp = utils.NewTextProcessor(logger)
	}
	return &Runner{
		detector:      detector,
		logger:        logger,
		out:           out,
		textProcessor: tp,
		verbose:       opts.Verbose,
		jsonOutput:    opts.JSONOutput,
		concurrency:   opts.Concurrency,
	}
}

// AnalyzeText classifies a transcript and prints the verdict
func (r *Runner) AnalyzeText(ctx context.Context, text, caller string) (*core.AnalysisResult, error) {
	r.logger.Debug("Analyzing transcript", zap.Int("length", len(text)))

	startTime := time.Now()
	result, err := r.detector.DetectText(ctx, text, caller)
	if err != nil {
		r.logger.Error("Failed to analyze transcript", zap.Error(err))
		return nil, err
	}

	return result, r.printResult(result, time.Since(startTime))
}

// AnalyzeFile classifies the transcript stored in a text file
func (r *Runner) AnalyzeFile(ctx context.Context, path, caller string) (*core.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript file: %w", err)
	}
	r.logger.Info("Reading transcript from file", zap.String("file", path))
	return r.AnalyzeText(ctx, string(data), caller)
}

// AnalyzeAudio transcribes and classifies a recording
func (r *Runner) AnalyzeAudio(ctx context.Context, path, caller string) (*core.AnalysisResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio file: %w", err)
	}
	r.logger.Info("Analyzing recording", zap.String("file", path), zap.Int("size", len(data)))

	startTime := time.Now()
	result, err := r.detector.AnalyzeAudio(ctx, &core.Audio{Filename: filepath.Base(path), Data: data}, caller)
	if err != nil {
		r.logger.Error("Failed to analyze recording", zap.Error(err))
		return nil, err
	}

	return result, r.printResult(result, time.Since(startTime))
}

// EvaluateDataset runs the detector over a labeled dataset and prints the
// metrics
func (r *Runner) EvaluateDataset(ctx context.Context, path string) (*dataset.Report, error) {
	records, err := dataset.Load(path)
	if err != nil {
		return nil, err
	}
	r.logger.Info("Loaded dataset", zap.String("file", path), zap.Int("records", len(records)))

	report, predictions, err := dataset.NewEvaluator(r.detector, r.concurrency, r.logger).Evaluate(ctx, records)
	if err != nil {
		return nil, err
	}

	if r.jsonOutput {
		return report, r.writeJSON(report)
	}

	fmt.Fprintf(r.out, "\n=== Dataset ===\n")
	fmt.Fprintf(r.out, "File: %s\n", path)
	fmt.Fprintf(r.out, "Records: %d\n", report.Total)
	fmt.Fprintf(r.out, "Failed: %d\n", report.Failed)

	if r.verbose {
		fmt.Fprintf(r.out, "\n=== Misclassified ===\n")
		for _, p := range predictions {
			if p.Err != nil || p.IsScam == p.Record.IsScam {
				continue
			}
			fmt.Fprintf(r.out, "Row %d: expected scam=%t, got scam=%t (score %.4f)\n",
				p.Record.Row, p.Record.IsScam, p.IsScam, p.Score)
		}
	}

	m := report.Matrix
	fmt.Fprintf(r.out, "\n=== Results ===\n")
	fmt.Fprintf(r.out, "Accuracy: %.4f\n", report.Accuracy)
	fmt.Fprintf(r.out, "Precision: %.4f\n", report.Precision)
	fmt.Fprintf(r.out, "Recall: %.4f\n", report.Recall)
	fmt.Fprintf(r.out, "F1: %.4f\n", report.F1)
	fmt.Fprintf(r.out, "Confusion matrix: TP=%d FP=%d TN=%d FN=%d\n",
		m.TruePositive, m.FalsePositive, m.TrueNegative, m.FalseNegative)
	fmt.Fprintf(r.out, "Processing time: %v\n", report.Duration)

	return report, nil
}

func (r *Runner) printResult(result *core.AnalysisResult, duration time.Duration) error {
	if r.jsonOutput {
		return r.writeJSON(map[string]any{
			"transcript":  result.Transcript,
			"is_scam":     result.IsScam,
			"score":       result.Score,
			"confidence":  result.Confidence,
			"explanation": result.Explanation,
			"model_used":  result.ModelUsed,
		})
	}

	fmt.Fprintf(r.out, "\n=== Transcript ===\n")
	fmt.Fprintf(r.out, "Length: %d bytes\n", len(result.Transcript))
	if r.verbose {
		fmt.Fprintf(r.out, "\n%s\n", r.textProcessor.TruncateText(result.Transcript, previewSize))
	}

	fmt.Fprintf(r.out, "\n=== Results ===\n")
	fmt.Fprintf(r.out, "Is scam: %t\n", result.IsScam)
	fmt.Fprintf(r.out, "Scam score: %.4f\n", result.Score)
	fmt.Fprintf(r.out, "Confidence: %.2f%%\n", result.Confidence)
	if result.Explanation != "" {
		fmt.Fprintf(r.out, "Explanation: %s\n", result.Explanation)
	}
	fmt.Fprintf(r.out, "Model used: %s\n", result.ModelUsed)
	fmt.Fprintf(r.out, "Processing time: %v\n", duration)
	return nil
}

func (r *Runner) writeJSON(v any) error {
	enc := json.NewEncoder(r.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
