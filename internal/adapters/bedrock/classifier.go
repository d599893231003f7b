package bedrock

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/mikey/scam-call-detector/internal/adapters/llm"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/utils"
	"go.uber.org/zap"
)

// InvokeModelAPI is the subset of the Bedrock runtime client used here
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// Classifier is an implementation of the Classifier interface using Amazon Bedrock
type Classifier struct {
	client        InvokeModelAPI
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
	maxBodySize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifier creates a new Bedrock classifier
func NewClassifier(
	client InvokeModelAPI,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxBodySize int,
	logger *zap.Logger,
	textProcessor *utils.TextProcessor,
) *Classifier {
	return &Classifier{
		client:        client,
		modelID:       modelID,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
		maxBodySize:   maxBodySize,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Classify invokes the Bedrock model to score the transcript
func (c *Classifier) Classify(ctx context.Context, transcript string) (*core.ClassificationResult, error) {
	prompt := llm.BuildPrompt(c.textProcessor.ProcessText(transcript, c.maxBodySize))

	payload, err := c.buildPayload(prompt)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to invoke Bedrock model: %w", err)
	}

	text, err := c.extractText(resp.Body)
	if err != nil {
		return nil, err
	}

	analysis, err := llm.ParseResponse(text)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Bedrock classification complete",
		zap.String("model", c.modelID),
		zap.Bool("is_scam", analysis.IsScam),
		zap.Float64("score", analysis.ScoreValue()))

	return &core.ClassificationResult{
		Score:       analysis.ScoreValue(),
		Explanation: analysis.Explanation,
		ModelUsed:   c.modelID,
	}, nil
}

func (c *Classifier) buildPayload(prompt string) ([]byte, error) {
	switch {
	case c.isClaudeMessagesModel():
		return json.Marshal(map[string]interface{}{
			"anthropic_version": "bedrock-2023-05-31",
			"max_tokens":        c.maxTokens,
			"temperature":       c.temperature,
			"top_p":             c.topP,
			"system":            llm.SystemPrompt,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		})
	case c.isAnthropicModel():
		return json.Marshal(map[string]interface{}{
			"prompt":               "\n\nHuman: " + prompt + "\n\nAssistant:",
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	case c.isAmazonTitanModel():
		return json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	default:
		return json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
}

func (c *Classifier) extractText(body []byte) (string, error) {
	switch {
	case c.isClaudeMessagesModel():
		var claudeResp struct {
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		var sb strings.Builder
		for _, block := range claudeResp.Content {
			if block.Type == "text" {
				sb.WriteString(block.Text)
			}
		}
		if sb.Len() == 0 {
			return "", fmt.Errorf("empty response from Claude model")
		}
		return sb.String(), nil
	case c.isAnthropicModel():
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	case c.isAmazonTitanModel():
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", fmt.Errorf("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	default:
		var genericResp struct {
			Output   string `json:"output"`
			Text     string `json:"text"`
			Response string `json:"response"`
		}
		if err := json.Unmarshal(body, &genericResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
		}
		switch {
		case genericResp.Output != "":
			return genericResp.Output, nil
		case genericResp.Text != "":
			return genericResp.Text, nil
		case genericResp.Response != "":
			return genericResp.Response, nil
		default:
			return string(body), nil
		}
	}
}

// isClaudeMessagesModel checks for Claude 3 and later, which only accept the messages API
func (c *Classifier) isClaudeMessagesModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude-3") ||
		strings.HasPrefix(c.modelID, "anthropic.claude-sonnet") ||
		strings.HasPrefix(c.modelID, "anthropic.claude-haiku") ||
		strings.HasPrefix(c.modelID, "anthropic.claude-opus")
}

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *Classifier) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *Classifier) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
