package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/scam-call-detector/internal/adapters/cli"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/di"
	"go.uber.org/zap"
)

func main() {
	flags, err := di.ParseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	container, err := di.BuildCLIContainer(flags)
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	if err := container.Invoke(run); err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func run(
	flags *di.CLIFlags,
	logger *zap.Logger,
	runner *cli.Runner,
	classifier core.Classifier,
) error {
	defer logger.Sync()

	// Close any resources that need closing
	defer func() {
		if closer, ok := classifier.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				logger.Error("Failed to close classifier", zap.Error(err))
			}
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var err error
	switch {
	case flags.Dataset != "":
		_, err = runner.EvaluateDataset(ctx, flags.Dataset)
	case flags.Audio != "":
		_, err = runner.AnalyzeAudio(ctx, flags.Audio, flags.Caller)
	case flags.File != "":
		_, err = runner.AnalyzeFile(ctx, flags.File, flags.Caller)
	case flags.Text != "":
		_, err = runner.AnalyzeText(ctx, flags.Text, flags.Caller)
	default:
		logger.Info("Reading transcript from stdin")
		data, readErr := io.ReadAll(os.Stdin)
		if readErr != nil {
			return fmt.Errorf("failed to read stdin: %w", readErr)
		}
		_, err = runner.AnalyzeText(ctx, string(data), flags.Caller)
	}
	return err
}
