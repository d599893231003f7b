package stt

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExecTranscriber_PlainText(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	transcriber, err := NewExecTranscriber("cat {audio}", "", "", zap.NewNop())
	require.NoError(t, err)

	text, err := transcriber.Transcribe(context.Background(), &core.Audio{
		Filename: "call.wav",
		Data:     []byte("  please confirm your account  \n"),
	})

	require.NoError(t, err)
	assert.Equal(t, "please confirm your account", text)
}

func TestExecTranscriber_JSONOutput(t *testing.T) {
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not available")
	}

	transcriber, err := NewExecTranscriber("cat", "", "", zap.NewNop())
	require.NoError(t, err)

	text, err := transcriber.Transcribe(context.Background(), &core.Audio{
		Filename: "call.wav",
		Data:     []byte(`{"text": " hello there "}`),
	})

	require.NoError(t, err)
	assert.Equal(t, "hello there", text)
}

func TestExecTranscriber_RemovesTempFile(t *testing.T) {
	if _, err := exec.LookPath("false"); err != nil {
		t.Skip("false not available")
	}

	transcriber, err := NewExecTranscriber("false", "", "", zap.NewNop())
	require.NoError(t, err)

	args := transcriber.buildArgs("/tmp/x.wav")
	assert.Equal(t, []string{"false", "/tmp/x.wav"}, args)

	_, err = transcriber.Transcribe(context.Background(), &core.Audio{Filename: "a.wav", Data: []byte("x")})
	assert.ErrorContains(t, err, "stt command failed")

	matches, _ := os.ReadDir(os.TempDir())
	for _, m := range matches {
		assert.NotRegexp(t, `^scam_stt_.*\.wav$`, m.Name())
	}
}

func TestExecTranscriber_BuildArgs(t *testing.T) {
	transcriber, err := NewExecTranscriber("whisper-cli --no-timestamps --no-prints -f {audio}", "/models/base.bin", "en", zap.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"whisper-cli", "--no-timestamps", "--no-prints", "-f", "/tmp/a.wav",
		"--model", "/models/base.bin",
		"--language", "en",
	}, transcriber.buildArgs("/tmp/a.wav"))
}

func TestParseOutput_WhisperCPP(t *testing.T) {
	out := []byte(" Hello, this is the fraud department.\n Please read me the code.\n\n")
	assert.Equal(t, "Hello, this is the fraud department.\n Please read me the code.", parseOutput(out))
}

func TestNewExecTranscriber_Invalid(t *testing.T) {
	_, err := NewExecTranscriber("   ", "", "", zap.NewNop())
	assert.Error(t, err)

	_, err = NewExecTranscriber(`whisper "unterminated`, "", "", zap.NewNop())
	assert.Error(t, err)
}

func TestRemoteTranscriber(t *testing.T) {
	t.Run("retries server errors", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/transcribe", r.URL.Path)
			if atomic.AddInt32(&calls, 1) == 1 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}

			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "en", r.FormValue("language"))
			file, header, err := r.FormFile("file")
			require.NoError(t, err)
			defer file.Close()
			data, _ := io.ReadAll(file)
			assert.Equal(t, "chunk.wav", header.Filename)
			assert.Equal(t, []byte("RIFF"), data)

			_, _ = w.Write([]byte(`{"text":"your car warranty is expiring"}`))
		}))
		defer server.Close()

		transcriber := NewRemoteTranscriber(server.URL+"/", "en", 5*time.Second, 10*time.Second, zap.NewNop())
		text, err := transcriber.Transcribe(context.Background(), &core.Audio{Filename: "chunk.wav", Data: []byte("RIFF")})

		require.NoError(t, err)
		assert.Equal(t, "your car warranty is expiring", text)
		assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	})

	t.Run("client errors are not retried", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusUnsupportedMediaType)
			_, _ = w.Write([]byte("unsupported format"))
		}))
		defer server.Close()

		transcriber := NewRemoteTranscriber(server.URL, "", 5*time.Second, 10*time.Second, zap.NewNop())
		_, err := transcriber.Transcribe(context.Background(), &core.Audio{Filename: "a.ogg", Data: []byte("x")})

		assert.ErrorContains(t, err, "415")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})

	t.Run("gives up after max retry time", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		transcriber := NewRemoteTranscriber(server.URL, "", time.Second, 300*time.Millisecond, zap.NewNop())
		_, err := transcriber.Transcribe(context.Background(), &core.Audio{Data: []byte("x")})

		assert.ErrorContains(t, err, "500")
	})

	t.Run("zero max retry time makes one attempt", func(t *testing.T) {
		var calls int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			atomic.AddInt32(&calls, 1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		transcriber := NewRemoteTranscriber(server.URL, "", time.Second, 0, zap.NewNop())
		_, err := transcriber.Transcribe(context.Background(), &core.Audio{Data: []byte("x")})

		assert.ErrorContains(t, err, "503")
		assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	})
}

func TestStaticTranscriber(t *testing.T) {
	transcriber := NewStaticTranscriber("fixed words")

	text, err := transcriber.Transcribe(context.Background(), &core.Audio{Data: []byte("ignored")})

	require.NoError(t, err)
	assert.Equal(t, "fixed words", text)
}
