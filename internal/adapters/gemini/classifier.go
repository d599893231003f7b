package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/scam-call-detector/internal/adapters/llm"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Classifier is an implementation of the Classifier interface using Google Gemini
type Classifier struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifier creates a new Gemini classifier
func NewClassifier(
	ctx context.Context,
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) (*Classifier, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = genai.NewUserContent(genai.Text(llm.SystemPrompt))

	return &Classifier{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}, nil
}

// Close closes the Gemini client
func (c *Classifier) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify asks Gemini to score the transcript
func (c *Classifier) Classify(ctx context.Context, transcript string) (*core.ClassificationResult, error) {
	prompt := llm.BuildPrompt(c.textProcessor.ProcessText(transcript, c.maxBodySize))

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with Gemini: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	analysis, err := llm.ParseResponse(text)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini classification complete",
		zap.String("model", c.modelName),
		zap.Bool("is_scam", analysis.IsScam),
		zap.Float64("score", analysis.ScoreValue()))

	return &core.ClassificationResult{
		Score:       analysis.ScoreValue(),
		Explanation: analysis.Explanation,
		ModelUsed:   c.modelName,
	}, nil
}

// responseText joins the text parts of the first candidate
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}
