package httpapi

import (
	"github.com/gin-gonic/gin"
	"github.com/mikey/scam-call-detector/internal/metrics"
	"go.uber.org/zap"
)

// RouterOptions configures the middleware stack
type RouterOptions struct {
	CORSOrigins   []string
	MaxUploadSize int64
}

// NewRouter creates and configures the Gin router
func NewRouter(h *Handler, m *metrics.Metrics, logger *zap.Logger, opts RouterOptions) *gin.Engine {
	router := gin.New()

	router.Use(RequestID())
	router.Use(Logger(logger))
	router.Use(Recovery(logger))
	router.Use(CORS(opts.CORSOrigins))
	router.Use(Metrics(m))

	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)
	router.GET("/metrics", gin.WrapH(m.Handler()))

	analysis := router.Group("/", BodyLimit(opts.MaxUploadSize))
	{
		analysis.POST("/predict", h.Predict)
		analysis.POST("/stream", h.Stream)
		analysis.POST("/detect", h.Detect)
	}

	return router
}
