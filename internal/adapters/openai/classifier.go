package openai

import (
	"context"
	"fmt"

	"github.com/mikey/scam-call-detector/internal/adapters/llm"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Classifier is an implementation of the Classifier interface using OpenAI chat models
type Classifier struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifier creates a new OpenAI classifier
func NewClassifier(
	client *openai.Client,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Classify asks the chat model to score the transcript
func (c *Classifier) Classify(ctx context.Context, transcript string) (*core.ClassificationResult, error) {
	prompt := llm.BuildPrompt(c.textProcessor.ProcessText(transcript, c.maxBodySize))

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: llm.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat completion with OpenAI: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from OpenAI")
	}

	analysis, err := llm.ParseResponse(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("OpenAI classification complete",
		zap.String("model", c.modelName),
		zap.String("completion_id", resp.ID),
		zap.Bool("is_scam", analysis.IsScam),
		zap.Float64("score", analysis.ScoreValue()))

	return &core.ClassificationResult{
		Score:       analysis.ScoreValue(),
		Explanation: analysis.Explanation,
		ModelUsed:   c.modelName,
	}, nil
}
