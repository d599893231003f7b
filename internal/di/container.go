package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/scam-call-detector/internal/config"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/factory"
	"github.com/mikey/scam-call-detector/internal/logging"
	"github.com/mikey/scam-call-detector/internal/metrics"
	"github.com/mikey/scam-call-detector/internal/ports"
	"github.com/mikey/scam-call-detector/internal/utils"
	"github.com/mikey/scam-call-detector/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(metrics.New); err != nil {
		return nil, err
	}

	if err := provideDetection(container); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register service options
	if err := container.Provide(serviceOptions); err != nil {
		return nil, err
	}

	// Register scam detection service
	if err := container.Provide(core.NewScamDetectionService); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s *core.ScamDetectionService) ports.Detector {
		return s
	}); err != nil {
		return nil, err
	}

	// Register API server
	if err := container.Provide(factory.NewServerFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.ServerFactory) (ports.Server, error) {
		return f.CreateServer()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideDetection registers the text processor, the instrumented
// transcriber and classifier, and the trusted caller list. It expects a
// config, a logger and metrics in the container.
func provideDetection(container *dig.Container) error {
	// Register text processor
	if err := container.Provide(func(logger *zap.Logger) *utils.TextProcessor {
		return utils.NewTextProcessor(logger.Named("text"))
	}); err != nil {
		return err
	}

	// Register backend factories
	if err := container.Provide(factory.NewTranscriberFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewClassifierFactory); err != nil {
		return err
	}

	// Register transcriber
	if err := container.Provide(func(f *factory.TranscriberFactory, m *metrics.Metrics) (core.Transcriber, error) {
		transcriber, err := f.CreateTranscriber()
		if err != nil {
			return nil, err
		}
		return metrics.InstrumentTranscriber(transcriber, m), nil
	}); err != nil {
		return err
	}

	// Register classifier
	if err := container.Provide(func(f *factory.ClassifierFactory, m *metrics.Metrics) (core.Classifier, error) {
		classifier, err := f.CreateClassifier()
		if err != nil {
			return nil, err
		}
		return metrics.InstrumentClassifier(classifier, m), nil
	}); err != nil {
		return err
	}

	// Register trusted callers
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) core.CallerChecker {
		return whitelist.NewChecker(cfg.GetScam().TrustedCallers, logger)
	}); err != nil {
		return err
	}

	return nil
}

// serviceOptions derives the detection service tunables from the config
func serviceOptions(cfg *config.Config) (core.ServiceOptions, error) {
	cacheCfg, err := cfg.GetCache()
	if err != nil {
		return core.ServiceOptions{}, err
	}
	transcriberCfg, err := cfg.GetTranscriber()
	if err != nil {
		return core.ServiceOptions{}, err
	}

	return core.ServiceOptions{
		Threshold:     cfg.GetScam().Threshold,
		CacheEnabled:  cacheCfg.Enabled,
		CacheTTL:      cacheCfg.TTL,
		MinAudioBytes: transcriberCfg.MinAudioBytes,
	}, nil
}
