package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEmptyViper(t *testing.T) {
	t.Run("loads default configuration", func(t *testing.T) {
		cfg := NewFromViper(NewEmptyViper())

		server, err := cfg.GetServer()
		require.NoError(t, err)
		assert.Equal(t, "0.0.0.0:5000", server.ListenAddress)
		assert.Equal(t, 30*time.Second, server.ReadTimeout)
		assert.Equal(t, int64(25<<20), server.MaxUploadSize)

		transcriber, err := cfg.GetTranscriber()
		require.NoError(t, err)
		assert.Equal(t, "openai", transcriber.Provider)
		assert.Equal(t, 100, transcriber.MinAudioBytes)
		assert.Equal(t, DefaultStaticTranscript, transcriber.StaticText)
		assert.Equal(t, "whisper-cli --no-timestamps --no-prints -f {audio}", transcriber.ExecCommand)

		classifier, err := cfg.GetClassifier()
		require.NoError(t, err)
		assert.Equal(t, "keyword", classifier.Provider)
		assert.Equal(t, 5, classifier.KeywordSaturation)
		assert.Len(t, classifier.Keywords, len(DefaultScamKeywords))

		scam := cfg.GetScam()
		assert.Equal(t, 0.6, scam.Threshold)
		assert.Empty(t, scam.TrustedCallers)

		assert.Equal(t, "memory", cfg.GetString("cache.type"))
		assert.Equal(t, "info", cfg.GetString("logging.level"))
		assert.Equal(t, "whisper-1", cfg.GetOpenAI().TranscriptionModel)
	})

	t.Run("invalid durations are reported", func(t *testing.T) {
		v := NewEmptyViper()
		v.Set("server.read_timeout", "soon")
		cfg := NewFromViper(v)

		_, err := cfg.GetServer()
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "read timeout")
	})
}

func TestNewFromFile(t *testing.T) {
	t.Run("reads yaml values over defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := []byte(`
classifier:
  provider: model
  model_server:
    url: http://models:8501
scam:
  threshold: 0.75
  trusted_callers:
    - "+15550001111"
`)
		require.NoError(t, os.WriteFile(path, content, 0o600))

		cfg, err := NewFromFile(path)
		require.NoError(t, err)

		classifier, err := cfg.GetClassifier()
		require.NoError(t, err)
		assert.Equal(t, "model", classifier.Provider)
		assert.Equal(t, "http://models:8501", classifier.ModelServerURL)
		assert.Equal(t, 10*time.Second, classifier.ModelServerTimeout)

		scam := cfg.GetScam()
		assert.Equal(t, 0.75, scam.Threshold)
		assert.Equal(t, []string{"+15550001111"}, scam.TrustedCallers)
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := NewFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
		assert.Error(t, err)
	})

	t.Run("environment overrides file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scam:\n  threshold: 0.7\n"), 0o600))
		t.Setenv("SCAM_DETECTOR_SCAM_THRESHOLD", "0.9")

		cfg, err := NewFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, 0.9, cfg.GetScam().Threshold)
	})
}

func TestGetCache(t *testing.T) {
	v := NewEmptyViper()
	v.Set("cache.type", "redis")
	v.Set("cache.ttl", "2h")
	v.Set("cache.redis_db", 3)

	cacheCfg, err := NewFromViper(v).GetCache()
	require.NoError(t, err)
	assert.Equal(t, "redis", cacheCfg.Type)
	assert.True(t, cacheCfg.Enabled)
	assert.Equal(t, 2*time.Hour, cacheCfg.TTL)
	assert.Equal(t, time.Hour, cacheCfg.CleanupFrequency)
	assert.Equal(t, "localhost:6379", cacheCfg.RedisAddress)
	assert.Equal(t, 3, cacheCfg.RedisDB)

	v.Set("cache.ttl", "forever")
	_, err = NewFromViper(v).GetCache()
	assert.Error(t, err)
}

func TestGetTranscriber_MaxRetryTime(t *testing.T) {
	v := NewEmptyViper()
	v.Set("transcriber.remote.max_retry_time", "0s")

	transcriber, err := NewFromViper(v).GetTranscriber()
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), transcriber.MaxRetryTime)

	v.Set("transcriber.remote.max_retry_time", "-5s")
	_, err = NewFromViper(v).GetTranscriber()
	assert.ErrorContains(t, err, "must not be negative")
}
