package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestID(t *testing.T) {
	t.Run("generates new request ID when not provided", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			assert.Equal(t, c.GetString(requestIDKey), core.RequestIDFromContext(c.Request.Context()))
			c.String(http.StatusOK, c.GetString(requestIDKey))
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NotEmpty(t, w.Body.String())
		assert.Equal(t, w.Body.String(), w.Header().Get(requestIDHeader))
	})

	t.Run("uses provided request ID", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, c.GetString(requestIDKey))
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(requestIDHeader, "custom-request-id-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "custom-request-id-123", w.Body.String())
		assert.Equal(t, "custom-request-id-123", w.Header().Get(requestIDHeader))
	})
}

func TestLogger(t *testing.T) {
	logger := zap.NewNop()

	for _, status := range []int{http.StatusOK, http.StatusBadRequest, http.StatusInternalServerError} {
		router := gin.New()
		router.Use(RequestID())
		router.Use(Logger(logger))
		router.GET("/test", func(c *gin.Context) {
			c.String(status, "body")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, status, w.Code)
	}
}

func TestRecovery(t *testing.T) {
	t.Run("recovers from panic", func(t *testing.T) {
		router := gin.New()
		router.Use(RequestID())
		router.Use(Recovery(zap.NewNop()))
		router.GET("/test", func(c *gin.Context) {
			panic("test panic")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, w.Body.String(), "Internal server error")
		assert.Contains(t, w.Body.String(), "request_id")
	})

	t.Run("passes through when no panic", func(t *testing.T) {
		router := gin.New()
		router.Use(Recovery(zap.NewNop()))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestCORS(t *testing.T) {
	t.Run("wildcard origin", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"*"}))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
		assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Content-Type")
	})

	t.Run("explicit origins", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS([]string{"https://app.example.com"}))
		router.GET("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req, _ := http.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://app.example.com")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))

		req, _ = http.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Origin", "https://evil.example.com")
		w = httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("handles OPTIONS preflight", func(t *testing.T) {
		router := gin.New()
		router.Use(CORS(nil))
		router.POST("/test", func(c *gin.Context) {
			c.String(http.StatusOK, "ok")
		})

		req, _ := http.NewRequest(http.MethodOptions, "/test", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestBodyLimit(t *testing.T) {
	router := gin.New()
	router.Use(RequestID())
	router.POST("/test", BodyLimit(8), func(c *gin.Context) {
		var body struct {
			Text string `json:"text"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			handleError(c, err)
			return
		}
		c.String(http.StatusOK, body.Text)
	})

	req, _ := http.NewRequest(http.MethodPost, "/test", strings.NewReader(`{"text":"this is far too long"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}
