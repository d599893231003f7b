package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// DefaultScamKeywords are the phrases the keyword classifier looks for
var DefaultScamKeywords = []string{
	"money", "pay", "bank", "account", "password", "verify", "confirm",
	"urgent", "claim", "prize", "winner", "refund", "transfer", "crypto",
	"update", "click", "link", "confirm identity", "social security",
}

// DefaultStaticTranscript is returned by the static transcriber
const DefaultStaticTranscript = "Hey, I'm calling about your bank account verification. Please provide your password."

// DefaultExecCommand runs whisper.cpp so that only the transcript is
// printed to stdout. The exec transcriber appends --model and --language.
const DefaultExecCommand = "whisper-cli --no-timestamps --no-prints -f {audio}"

// New creates a new configuration instance
func New() (*Config, error) {
	// A missing .env file is not an error
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/scam-detector/")
	v.AddConfigPath("$HOME/.scam-detector")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file
func NewFromFile(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)
	bindEnv(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix("SCAM_DETECTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.listen_address", "0.0.0.0:5000")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.max_upload_size", 25<<20)
	v.SetDefault("server.cors_origins", []string{"*"})

	// Transcriber defaults
	v.SetDefault("transcriber.provider", "openai")
	v.SetDefault("transcriber.language", "en")
	v.SetDefault("transcriber.min_audio_bytes", 100)
	v.SetDefault("transcriber.pcm_sample_rate", 16000)
	v.SetDefault("transcriber.pcm_channels", 1)
	v.SetDefault("transcriber.exec.command", DefaultExecCommand)
	v.SetDefault("transcriber.exec.model_path", "")
	v.SetDefault("transcriber.remote.url", "http://localhost:9000")
	v.SetDefault("transcriber.remote.timeout", "60s")
	v.SetDefault("transcriber.remote.max_retry_time", "30s")
	v.SetDefault("transcriber.static.text", DefaultStaticTranscript)

	// Classifier defaults
	v.SetDefault("classifier.provider", "keyword")
	v.SetDefault("classifier.keywords", DefaultScamKeywords)
	v.SetDefault("classifier.keyword_saturation", 5)
	v.SetDefault("classifier.model_server.url", "http://localhost:8501")
	v.SetDefault("classifier.model_server.timeout", "10s")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-v2")
	v.SetDefault("bedrock.max_tokens", 1000)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.top_p", 0.9)
	v.SetDefault("bedrock.max_body_size", 4096)

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 1000)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.top_p", 0.9)
	v.SetDefault("gemini.max_body_size", 4096)

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.transcription_model", "whisper-1")
	v.SetDefault("openai.max_tokens", 1000)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.top_p", 0.9)
	v.SetDefault("openai.max_body_size", 4096)

	// Scam defaults
	v.SetDefault("scam.threshold", 0.6)
	v.SetDefault("scam.trusted_callers", []string{})

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/scam_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/scam_detector?parseTime=true")
	v.SetDefault("cache.redis_address", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
