package config

import (
	"fmt"
	"time"
)

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	ListenAddress   string
	Mode            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxUploadSize   int64
	CORSOrigins     []string
}

// TranscriberConfig represents the speech-to-text configuration
type TranscriberConfig struct {
	Provider      string
	Language      string
	MinAudioBytes int
	PCMSampleRate int
	PCMChannels   int
	ExecCommand   string
	ExecModelPath string
	RemoteURL     string
	RemoteTimeout time.Duration
	MaxRetryTime  time.Duration
	StaticText    string
}

// ClassifierConfig represents the scam classifier configuration
type ClassifierConfig struct {
	Provider           string
	Keywords           []string
	KeywordSaturation  int
	ModelServerURL     string
	ModelServerTimeout time.Duration
}

// ScamConfig represents the verdict configuration
type ScamConfig struct {
	Threshold      float64
	TrustedCallers []string
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey             string
	BaseURL            string
	ModelName          string
	TranscriptionModel string
	MaxTokens          int
	Temperature        float32
	TopP               float32
	MaxBodySize        int
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() (ServerConfig, error) {
	readTimeout, err := c.GetDuration("server.read_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server read timeout: %w", err)
	}
	writeTimeout, err := c.GetDuration("server.write_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server write timeout: %w", err)
	}
	shutdownTimeout, err := c.GetDuration("server.shutdown_timeout")
	if err != nil {
		return ServerConfig{}, fmt.Errorf("invalid server shutdown timeout: %w", err)
	}

	return ServerConfig{
		ListenAddress:   c.GetString("server.listen_address"),
		Mode:            c.GetString("server.mode"),
		ReadTimeout:     readTimeout,
		WriteTimeout:    writeTimeout,
		ShutdownTimeout: shutdownTimeout,
		MaxUploadSize:   c.GetInt64("server.max_upload_size"),
		CORSOrigins:     c.GetStringSlice("server.cors_origins"),
	}, nil
}

// GetTranscriber returns the speech-to-text configuration
func (c *Config) GetTranscriber() (TranscriberConfig, error) {
	remoteTimeout, err := c.GetDuration("transcriber.remote.timeout")
	if err != nil {
		return TranscriberConfig{}, fmt.Errorf("invalid transcriber remote timeout: %w", err)
	}
	maxRetry, err := c.GetDuration("transcriber.remote.max_retry_time")
	if err != nil {
		return TranscriberConfig{}, fmt.Errorf("invalid transcriber max retry time: %w", err)
	}
	if maxRetry < 0 {
		return TranscriberConfig{}, fmt.Errorf("transcriber max retry time must not be negative: %s", maxRetry)
	}

	return TranscriberConfig{
		Provider:      c.GetString("transcriber.provider"),
		Language:      c.GetString("transcriber.language"),
		MinAudioBytes: c.GetInt("transcriber.min_audio_bytes"),
		PCMSampleRate: c.GetInt("transcriber.pcm_sample_rate"),
		PCMChannels:   c.GetInt("transcriber.pcm_channels"),
		ExecCommand:   c.GetString("transcriber.exec.command"),
		ExecModelPath: c.GetString("transcriber.exec.model_path"),
		RemoteURL:     c.GetString("transcriber.remote.url"),
		RemoteTimeout: remoteTimeout,
		MaxRetryTime:  maxRetry,
		StaticText:    c.GetString("transcriber.static.text"),
	}, nil
}

// GetClassifier returns the scam classifier configuration
func (c *Config) GetClassifier() (ClassifierConfig, error) {
	timeout, err := c.GetDuration("classifier.model_server.timeout")
	if err != nil {
		return ClassifierConfig{}, fmt.Errorf("invalid model server timeout: %w", err)
	}

	return ClassifierConfig{
		Provider:           c.GetString("classifier.provider"),
		Keywords:           c.GetStringSlice("classifier.keywords"),
		KeywordSaturation:  c.GetInt("classifier.keyword_saturation"),
		ModelServerURL:     c.GetString("classifier.model_server.url"),
		ModelServerTimeout: timeout,
	}, nil
}

// GetScam returns the verdict configuration
func (c *Config) GetScam() ScamConfig {
	return ScamConfig{
		Threshold:      c.GetFloat64("scam.threshold"),
		TrustedCallers: c.GetStringSlice("scam.trusted_callers"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:             c.GetString("openai.api_key"),
		BaseURL:            c.GetString("openai.base_url"),
		ModelName:          c.GetString("openai.model_name"),
		TranscriptionModel: c.GetString("openai.transcription_model"),
		MaxTokens:          c.GetInt("openai.max_tokens"),
		Temperature:        float32(c.GetFloat64("openai.temperature")),
		TopP:               float32(c.GetFloat64("openai.top_p")),
		MaxBodySize:        c.GetInt("openai.max_body_size"),
	}
}

// CacheConfig represents the verdict cache configuration
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisAddress     string
	RedisPassword    string
	RedisDB          int
}

// GetCache returns the verdict cache configuration
func (c *Config) GetCache() (CacheConfig, error) {
	ttl, err := c.GetDuration("cache.ttl")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache ttl: %w", err)
	}
	cleanupFreq, err := c.GetDuration("cache.cleanup_frequency")
	if err != nil {
		return CacheConfig{}, fmt.Errorf("invalid cache cleanup frequency: %w", err)
	}

	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanupFreq,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		RedisAddress:     c.GetString("cache.redis_address"),
		RedisPassword:    c.GetString("cache.redis_password"),
		RedisDB:          c.GetInt("cache.redis_db"),
	}, nil
}
