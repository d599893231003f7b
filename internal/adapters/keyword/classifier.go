package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/mikey/scam-call-detector/internal/core"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// ModelName is reported as the model used for keyword verdicts
const ModelName = "keyword-heuristic"

// Classifier scores transcripts by counting scam keywords
type Classifier struct {
	keywords   []string
	saturation int
	logger     *zap.Logger
}

// NewClassifier creates a keyword classifier. The score reaches 1 once
// saturation distinct keywords are present.
func NewClassifier(keywords []string, saturation int, logger *zap.Logger) (*Classifier, error) {
	if saturation <= 0 {
		return nil, fmt.Errorf("keyword saturation must be positive, got %d", saturation)
	}

	normalized := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		n := strings.TrimSpace(normalize(kw))
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		normalized = append(normalized, n)
	}
	if len(normalized) == 0 {
		return nil, fmt.Errorf("keyword classifier needs at least one keyword")
	}

	return &Classifier{
		keywords:   normalized,
		saturation: saturation,
		logger:     logger,
	}, nil
}

// Classify counts the keywords found in the transcript
func (c *Classifier) Classify(ctx context.Context, transcript string) (*core.ClassificationResult, error) {
	text := normalize(transcript)

	var matched []string
	for _, kw := range c.keywords {
		if strings.Contains(text, kw) {
			matched = append(matched, kw)
		}
	}

	score := float64(len(matched)) / float64(c.saturation)
	if score > 1 {
		score = 1
	}

	c.logger.Debug("Keyword classification complete",
		zap.Strings("matched", matched),
		zap.Float64("score", score))

	explanation := "No scam keywords found"
	if len(matched) > 0 {
		explanation = "Matched keywords: " + strings.Join(matched, ", ")
	}

	return &core.ClassificationResult{
		Score:       score,
		Explanation: explanation,
		ModelUsed:   ModelName,
	}, nil
}

// normalize folds compatibility characters and case so that fullwidth or
// accented-uppercase spellings still match
func normalize(s string) string {
	return cases.Lower(language.Und).String(norm.NFKC.String(s))
}
