package factory

import (
	"github.com/gin-gonic/gin"
	"github.com/mikey/scam-call-detector/internal/adapters/httpapi"
	"github.com/mikey/scam-call-detector/internal/config"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/metrics"
	"github.com/mikey/scam-call-detector/internal/ports"
	"go.uber.org/zap"
)

// ServerFactory creates the API server
type ServerFactory struct {
	cfg        *config.Config
	logger     *zap.Logger
	metrics    *metrics.Metrics
	detector   ports.Detector
	classifier core.Classifier
}

// NewServerFactory creates a new server factory
func NewServerFactory(
	cfg *config.Config,
	logger *zap.Logger,
	m *metrics.Metrics,
	detector ports.Detector,
	classifier core.Classifier,
) *ServerFactory {
	return &ServerFactory{
		cfg:        cfg,
		logger:     logger,
		metrics:    m,
		detector:   detector,
		classifier: classifier,
	}
}

// CreateServer creates the REST API server based on the configuration
func (f *ServerFactory) CreateServer() (ports.Server, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, err
	}
	transcriberCfg, err := f.cfg.GetTranscriber()
	if err != nil {
		return nil, err
	}
	classifierCfg, err := f.cfg.GetClassifier()
	if err != nil {
		return nil, err
	}

	if serverCfg.Mode != "" {
		gin.SetMode(serverCfg.Mode)
	}

	var ready core.HealthChecker
	if hc, ok := f.classifier.(core.HealthChecker); ok {
		ready = hc
	}

	handler := httpapi.NewHandler(f.detector, ready, f.metrics, f.logger, httpapi.HandlerOptions{
		TranscriberName: transcriberCfg.Provider,
		ClassifierName:  classifierCfg.Provider,
		PCMSampleRate:   transcriberCfg.PCMSampleRate,
		PCMChannels:     transcriberCfg.PCMChannels,
	})

	router := httpapi.NewRouter(handler, f.metrics, f.logger, httpapi.RouterOptions{
		CORSOrigins:   serverCfg.CORSOrigins,
		MaxUploadSize: serverCfg.MaxUploadSize,
	})

	return httpapi.NewServer(router, f.logger, httpapi.ServerOptions{
		ListenAddress:   serverCfg.ListenAddress,
		ReadTimeout:     serverCfg.ReadTimeout,
		WriteTimeout:    serverCfg.WriteTimeout,
		ShutdownTimeout: serverCfg.ShutdownTimeout,
	}), nil
}
