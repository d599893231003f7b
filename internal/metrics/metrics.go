package metrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/mikey/scam-call-detector/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scam_detector"

// Metrics holds the Prometheus collectors of the service
type Metrics struct {
	registry        *prometheus.Registry
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	verdictsTotal   *prometheus.CounterVec
	stageDuration   *prometheus.HistogramVec
	stageErrors     *prometheus.CounterVec
}

// New creates the collectors on a dedicated registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status code.",
		}, []string{"endpoint", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by endpoint.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		verdictsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "verdicts_total",
			Help:      "Verdicts returned by outcome.",
		}, []string{"outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Latency of the transcription and classification backends.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"stage"}),
		stageErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_errors_total",
			Help:      "Backend failures by stage.",
		}, []string{"stage"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.verdictsTotal,
		m.stageDuration,
		m.stageErrors,
	)
	return m
}

// Handler exposes the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records a finished HTTP request
func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration) {
	m.requestsTotal.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// ObserveVerdict records a verdict returned to a client
func (m *Metrics) ObserveVerdict(isScam bool) {
	outcome := "legitimate"
	if isScam {
		outcome = "scam"
	}
	m.verdictsTotal.WithLabelValues(outcome).Inc()
}

func (m *Metrics) observeStage(stage string, start time.Time, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

type instrumentedTranscriber struct {
	next    core.Transcriber
	metrics *Metrics
}

// InstrumentTranscriber records latency and failures of a transcriber
func InstrumentTranscriber(next core.Transcriber, m *Metrics) core.Transcriber {
	return &instrumentedTranscriber{next: next, metrics: m}
}

func (t *instrumentedTranscriber) Transcribe(ctx context.Context, audio *core.Audio) (string, error) {
	start := time.Now()
	text, err := t.next.Transcribe(ctx, audio)
	t.metrics.observeStage("transcribe", start, err)
	return text, err
}

type instrumentedClassifier struct {
	next    core.Classifier
	metrics *Metrics
}

// InstrumentClassifier records latency and failures of a classifier. The
// wrapper stays a HealthChecker when the wrapped classifier is one.
func InstrumentClassifier(next core.Classifier, m *Metrics) core.Classifier {
	return &instrumentedClassifier{next: next, metrics: m}
}

func (c *instrumentedClassifier) Classify(ctx context.Context, transcript string) (*core.ClassificationResult, error) {
	start := time.Now()
	result, err := c.next.Classify(ctx, transcript)
	c.metrics.observeStage("classify", start, err)
	return result, err
}

func (c *instrumentedClassifier) Healthy(ctx context.Context) error {
	if hc, ok := c.next.(core.HealthChecker); ok {
		return hc.Healthy(ctx)
	}
	return nil
}

// Close releases the wrapped classifier's client, if it holds one
func (c *instrumentedClassifier) Close() error {
	if closer, ok := c.next.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}
