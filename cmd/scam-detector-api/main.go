package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/di"
	"github.com/mikey/scam-call-detector/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	server ports.Server,
	classifier core.Classifier,
	cacheRepo core.CacheRepository,
) error {
	defer logger.Sync()

	// Start the API
	if err := server.Start(); err != nil {
		logger.Error("Failed to start server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	// Stop the API
	if err := server.Stop(); err != nil {
		logger.Error("Failed to stop server", zap.Error(err))
	}

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}

	// Stop the cache if needed
	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	logger.Info("Shutdown complete")
	return nil
}
