package dataset

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mikey/scam-call-detector/internal/core"
)

// TextDetector classifies transcripts
type TextDetector interface {
	DetectText(ctx context.Context, text, caller string) (*core.AnalysisResult, error)
}

// Prediction is the detector outcome for one record
type Prediction struct {
	Record     Record
	IsScam     bool
	Score      float64
	Confidence float64
	Err        error
}

// ConfusionMatrix counts predictions against labels, scam being positive
type ConfusionMatrix struct {
	TruePositive  int `json:"true_positive"`
	FalsePositive int `json:"false_positive"`
	TrueNegative  int `json:"true_negative"`
	FalseNegative int `json:"false_negative"`
}

// Report summarizes an evaluation run
type Report struct {
	Total     int             `json:"total"`
	Evaluated int             `json:"evaluated"`
	Failed    int             `json:"failed"`
	Accuracy  float64         `json:"accuracy"`
	Precision float64         `json:"precision"`
	Recall    float64         `json:"recall"`
	F1        float64         `json:"f1"`
	Matrix    ConfusionMatrix `json:"confusion_matrix"`
	Duration  time.Duration   `json:"duration"`
}

// Evaluator runs a detector over a labeled dataset
type Evaluator struct {
	detector    TextDetector
	concurrency int
	logger      *zap.Logger
}

// NewEvaluator creates a new evaluator. concurrency below 1 means one
// request at a time.
func NewEvaluator(detector TextDetector, concurrency int, logger *zap.Logger) *Evaluator {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Evaluator{
		detector:    detector,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Evaluate classifies every record and scores the predictions. A failed
// record is counted and skipped; only cancellation aborts the run.
func (e *Evaluator) Evaluate(ctx context.Context, records []Record) (*Report, []Prediction, error) {
	start := time.Now()
	predictions := make([]Prediction, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.concurrency)

	for i, rec := range records {
		i, rec := i, rec
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			p := Prediction{Record: rec}
			result, err := e.detector.DetectText(gctx, rec.Text, "")
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.logger.Warn("Failed to classify record",
					zap.Int("row", rec.Row),
					zap.Error(err))
				p.Err = err
			} else {
				p.IsScam = result.IsScam
				p.Score = result.Score
				p.Confidence = result.Confidence
			}
			predictions[i] = p
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	report := Score(predictions)
	report.Duration = time.Since(start)

	e.logger.Info("Evaluation complete",
		zap.Int("total", report.Total),
		zap.Int("failed", report.Failed),
		zap.Float64("accuracy", report.Accuracy),
		zap.Float64("f1", report.F1),
		zap.Duration("duration", report.Duration))

	return report, predictions, nil
}

// Score builds a report from predictions, ignoring failed ones
func Score(predictions []Prediction) *Report {
	r := &Report{Total: len(predictions)}

	for _, p := range predictions {
		if p.Err != nil {
			r.Failed++
			continue
		}
		r.Evaluated++
		switch {
		case p.IsScam && p.Record.IsScam:
			r.Matrix.TruePositive++
		case p.IsScam && !p.Record.IsScam:
			r.Matrix.FalsePositive++
		case !p.IsScam && !p.Record.IsScam:
			r.Matrix.TrueNegative++
		default:
			r.Matrix.FalseNegative++
		}
	}

	m := r.Matrix
	r.Accuracy = ratio(m.TruePositive+m.TrueNegative, r.Evaluated)
	r.Precision = ratio(m.TruePositive, m.TruePositive+m.FalsePositive)
	r.Recall = ratio(m.TruePositive, m.TruePositive+m.FalseNegative)
	if r.Precision+r.Recall > 0 {
		r.F1 = round4(2 * r.Precision * r.Recall / (r.Precision + r.Recall))
	}
	return r
}

func ratio(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return round4(float64(n) / float64(d))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
