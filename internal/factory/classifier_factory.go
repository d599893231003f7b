package factory

import (
	"fmt"

	"github.com/mikey/scam-call-detector/internal/adapters/bedrock"
	"github.com/mikey/scam-call-detector/internal/adapters/gemini"
	"github.com/mikey/scam-call-detector/internal/adapters/keyword"
	"github.com/mikey/scam-call-detector/internal/adapters/modelserver"
	"github.com/mikey/scam-call-detector/internal/adapters/openai"
	"github.com/mikey/scam-call-detector/internal/config"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/utils"
	"go.uber.org/zap"
)

// ClassifierFactory creates scam classifiers
type ClassifierFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewClassifierFactory creates a new classifier factory
func NewClassifierFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *ClassifierFactory {
	return &ClassifierFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateClassifier creates a new classifier based on the configuration
func (f *ClassifierFactory) CreateClassifier() (core.Classifier, error) {
	classifierCfg, err := f.cfg.GetClassifier()
	if err != nil {
		return nil, err
	}

	f.logger.Info("Creating classifier", zap.String("provider", classifierCfg.Provider))

	switch classifierCfg.Provider {
	case "keyword":
		return keyword.NewClassifier(classifierCfg.Keywords, classifierCfg.KeywordSaturation, f.logger)
	case "model":
		client := modelserver.NewClient(classifierCfg.ModelServerURL, classifierCfg.ModelServerTimeout)
		return modelserver.NewClassifier(client), nil
	case "openai":
		if f.cfg.GetOpenAI().APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case "gemini":
		if f.cfg.GetGemini().APIKey == "" {
			return nil, fmt.Errorf("gemini API key is required")
		}
		return gemini.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	case "bedrock":
		return bedrock.NewFactory(f.cfg, f.logger, f.textProcessor).CreateClassifier()
	default:
		return nil, fmt.Errorf("unsupported classifier provider: %s", classifierCfg.Provider)
	}
}
