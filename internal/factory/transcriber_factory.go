package factory

import (
	"fmt"

	"github.com/mikey/scam-call-detector/internal/adapters/openai"
	"github.com/mikey/scam-call-detector/internal/adapters/stt"
	"github.com/mikey/scam-call-detector/internal/config"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/utils"
	"go.uber.org/zap"
)

// TranscriberFactory creates speech-to-text backends
type TranscriberFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewTranscriberFactory creates a new transcriber factory
func NewTranscriberFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *TranscriberFactory {
	return &TranscriberFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateTranscriber creates a new transcriber based on the configuration
func (f *TranscriberFactory) CreateTranscriber() (core.Transcriber, error) {
	transcriberCfg, err := f.cfg.GetTranscriber()
	if err != nil {
		return nil, err
	}

	f.logger.Info("Creating transcriber", zap.String("provider", transcriberCfg.Provider))

	switch transcriberCfg.Provider {
	case "openai":
		if f.cfg.GetOpenAI().APIKey == "" {
			return nil, fmt.Errorf("openai API key is required")
		}
		return openai.NewFactory(f.cfg, f.logger, f.textProcessor).CreateTranscriber()
	case "exec":
		return stt.NewExecTranscriber(
			transcriberCfg.ExecCommand,
			transcriberCfg.ExecModelPath,
			transcriberCfg.Language,
			f.logger,
		)
	case "remote":
		return stt.NewRemoteTranscriber(
			transcriberCfg.RemoteURL,
			transcriberCfg.Language,
			transcriberCfg.RemoteTimeout,
			transcriberCfg.MaxRetryTime,
			f.logger,
		), nil
	case "static":
		return stt.NewStaticTranscriber(transcriberCfg.StaticText), nil
	default:
		return nil, fmt.Errorf("unsupported transcriber provider: %s", transcriberCfg.Provider)
	}
}
