package di

import (
	"flag"
	"os"
	"strings"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/scam-call-detector/internal/adapters/cli"
	"github.com/mikey/scam-call-detector/internal/config"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/mikey/scam-call-detector/internal/logging"
	"github.com/mikey/scam-call-detector/internal/metrics"
	"github.com/mikey/scam-call-detector/internal/utils"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Input flags
	Text    string
	File    string
	Audio   string
	Dataset string
	Caller  string

	// Backend flags
	Classifier  string
	Transcriber string
	Language    string

	// LLM flags
	MaxTokens   int
	Temperature float64
	TopP        float64
	MaxBodySize int

	// Bedrock flags
	BedrockRegion  string
	BedrockModelID string

	// Gemini flags
	GeminiAPIKey    string
	GeminiModelName string

	// OpenAI flags
	OpenAIAPIKey    string
	OpenAIModelName string
	OpenAIBaseURL   string

	// Local backend flags
	ModelServerURL string
	WhisperCommand string
	WhisperModel   string
	RemoteSTTURL   string

	// Scam detection flags
	Threshold      float64
	TrustedCallers string

	// Output flags
	Concurrency int
	JSONOutput  bool
	Verbose     bool
	JSONLog     bool
	ConfigFile  string
}

// ParseFlags parses command line arguments into a CLIFlags struct
func ParseFlags(args []string) (*CLIFlags, error) {
	flags := &CLIFlags{}
	fs := flag.NewFlagSet("scam-detector", flag.ContinueOnError)

	// Input flags
	fs.StringVar(&flags.Text, "text", "", "Transcript to analyze")
	fs.StringVar(&flags.File, "file", "", "Text file holding a transcript (use stdin if no input is given)")
	fs.StringVar(&flags.Audio, "audio", "", "Recording to transcribe and analyze")
	fs.StringVar(&flags.Dataset, "dataset", "", "Labeled .csv or .xlsx dataset to evaluate")
	fs.StringVar(&flags.Caller, "caller", "", "Caller number, checked against the trusted callers")

	// Backend flags
	fs.StringVar(&flags.Classifier, "classifier", "keyword", "Classifier (keyword, model, openai, gemini, bedrock)")
	fs.StringVar(&flags.Transcriber, "transcriber", "static", "Transcriber (openai, exec, remote, static)")
	fs.StringVar(&flags.Language, "language", "en", "Spoken language of recordings")

	// LLM flags
	fs.IntVar(&flags.MaxTokens, "max-tokens", 1000, "Maximum tokens for LLM response")
	fs.Float64Var(&flags.Temperature, "temperature", 0.1, "Temperature for LLM generation")
	fs.Float64Var(&flags.TopP, "top-p", 0.9, "Top-p for LLM generation")
	fs.IntVar(&flags.MaxBodySize, "max-body-size", 4096, "Maximum transcript size to send to LLM")

	// Bedrock flags
	fs.StringVar(&flags.BedrockRegion, "bedrock-region", "us-east-1", "AWS region for Bedrock")
	fs.StringVar(&flags.BedrockModelID, "bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	fs.StringVar(&flags.GeminiAPIKey, "gemini-api-key", os.Getenv("GEMINI_API_KEY"), "API key for Google Gemini")
	fs.StringVar(&flags.GeminiModelName, "gemini-model", "gemini-1.5-flash", "Gemini model name")

	// OpenAI flags
	fs.StringVar(&flags.OpenAIAPIKey, "openai-api-key", os.Getenv("OPENAI_API_KEY"), "API key for OpenAI")
	fs.StringVar(&flags.OpenAIModelName, "openai-model", "gpt-4o-mini", "OpenAI model name")
	fs.StringVar(&flags.OpenAIBaseURL, "openai-base-url", "", "Custom OpenAI compatible endpoint")

	// Local backend flags
	fs.StringVar(&flags.ModelServerURL, "model-server", "http://localhost:8501", "Model server URL for the model classifier")
	fs.StringVar(&flags.WhisperCommand, "whisper-command", config.DefaultExecCommand, "Speech recognizer command for the exec transcriber")
	fs.StringVar(&flags.WhisperModel, "whisper-model", "", "Model path passed to the speech recognizer")
	fs.StringVar(&flags.RemoteSTTURL, "stt-url", "http://localhost:9000", "Transcription service URL for the remote transcriber")

	// Scam detection flags
	fs.Float64Var(&flags.Threshold, "threshold", 0.6, "Score above which a call is a scam")
	fs.StringVar(&flags.TrustedCallers, "trusted", "", "Comma-separated list of trusted caller numbers")

	// Output flags
	fs.IntVar(&flags.Concurrency, "concurrency", 4, "Parallel requests when evaluating a dataset")
	fs.BoolVar(&flags.JSONOutput, "json", false, "Print results as JSON")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	fs.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides command line flags)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return flags, nil
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		// Create config from command line flags
		return createConfigFromFlags(flags), nil
	}); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(metrics.New); err != nil {
		return nil, err
	}

	if err := provideDetection(container); err != nil {
		return nil, err
	}

	// Register scam detection service with no cache
	if err := container.Provide(func(
		transcriber core.Transcriber,
		classifier core.Classifier,
		trusted core.CallerChecker,
		logger *zap.Logger,
		cfg *config.Config,
	) (*core.ScamDetectionService, error) {
		opts, err := serviceOptions(cfg)
		if err != nil {
			return nil, err
		}
		opts.CacheEnabled = false

		return core.NewScamDetectionService(
			transcriber,
			classifier,
			nil, // No cache for CLI
			trusted,
			logger,
			opts,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register CLI runner
	if err := container.Provide(func(
		service *core.ScamDetectionService,
		logger *zap.Logger,
		flags *CLIFlags,
		tp *utils.TextProcessor,
	) *cli.Runner {
		return cli.NewRunner(service, logger, os.Stdout, cli.Options{
			Verbose:       flags.Verbose,
			JSONOutput:    flags.JSONOutput,
			Concurrency:   flags.Concurrency,
			TextProcessor: tp,
		})
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set backends
	v.Set("classifier.provider", flags.Classifier)
	v.Set("classifier.model_server.url", flags.ModelServerURL)
	v.Set("transcriber.provider", flags.Transcriber)
	v.Set("transcriber.language", flags.Language)
	v.Set("transcriber.exec.command", flags.WhisperCommand)
	v.Set("transcriber.exec.model_path", flags.WhisperModel)
	v.Set("transcriber.remote.url", flags.RemoteSTTURL)

	// Set provider-specific configuration
	switch flags.Classifier {
	case "bedrock":
		v.Set("bedrock.region", flags.BedrockRegion)
		v.Set("bedrock.model_id", flags.BedrockModelID)
		v.Set("bedrock.max_tokens", flags.MaxTokens)
		v.Set("bedrock.temperature", flags.Temperature)
		v.Set("bedrock.top_p", flags.TopP)
		v.Set("bedrock.max_body_size", flags.MaxBodySize)
	case "gemini":
		v.Set("gemini.api_key", flags.GeminiAPIKey)
		v.Set("gemini.model_name", flags.GeminiModelName)
		v.Set("gemini.max_tokens", flags.MaxTokens)
		v.Set("gemini.temperature", flags.Temperature)
		v.Set("gemini.top_p", flags.TopP)
		v.Set("gemini.max_body_size", flags.MaxBodySize)
	case "openai":
		v.Set("openai.model_name", flags.OpenAIModelName)
		v.Set("openai.max_tokens", flags.MaxTokens)
		v.Set("openai.temperature", flags.Temperature)
		v.Set("openai.top_p", flags.TopP)
		v.Set("openai.max_body_size", flags.MaxBodySize)
	}

	// The Whisper transcriber shares the OpenAI credentials
	v.Set("openai.api_key", flags.OpenAIAPIKey)
	v.Set("openai.base_url", flags.OpenAIBaseURL)

	// Set scam threshold and trusted callers
	v.Set("scam.threshold", flags.Threshold)
	v.Set("scam.trusted_callers", splitList(flags.TrustedCallers))

	return config.NewFromViper(v)
}

func splitList(value string) []string {
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
