package openai

import (
	"github.com/mikey/scam-call-detector/internal/config"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Factory creates OpenAI backed classifiers and transcribers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new factory for OpenAI adapters
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// NewAPIClient builds a go-openai client, honouring a custom base URL
func NewAPIClient(openaiCfg config.OpenAIConfig) *openai.Client {
	clientCfg := openai.DefaultConfig(openaiCfg.APIKey)
	if openaiCfg.BaseURL != "" {
		clientCfg.BaseURL = openaiCfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// CreateClassifier creates a new OpenAI classifier
func (f *Factory) CreateClassifier() (core.Classifier, error) {
	openaiCfg := f.cfg.GetOpenAI()

	return NewClassifier(
		NewAPIClient(openaiCfg),
		openaiCfg.ModelName,
		openaiCfg.MaxTokens,
		openaiCfg.Temperature,
		openaiCfg.TopP,
		openaiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	), nil
}

// CreateTranscriber creates a new OpenAI transcriber
func (f *Factory) CreateTranscriber() (core.Transcriber, error) {
	openaiCfg := f.cfg.GetOpenAI()
	language := f.cfg.GetString("transcriber.language")

	return NewTranscriber(NewAPIClient(openaiCfg), openaiCfg.TranscriptionModel, language, f.logger), nil
}
