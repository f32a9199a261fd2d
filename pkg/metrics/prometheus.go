package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector owns a private registry so tests can build as many
// collectors as they like.
type MetricsCollector struct {
	registry          *prometheus.Registry
	scoresComputed    *prometheus.CounterVec
	scoresRejected    *prometheus.CounterVec
	metricFailures    *prometheus.CounterVec
	scoreDuration     *prometheus.HistogramVec
	scoreDistribution *prometheus.HistogramVec
	riskLevels        *prometheus.CounterVec
	logger            *slog.Logger
}

func NewMetricsCollector(logger *slog.Logger) *MetricsCollector {
	if logger == nil {
		logger = slog.Default()
	}

	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &MetricsCollector{
		registry: registry,
		scoresComputed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_scores_computed_total",
			Help: "Total number of computed credit scores",
		}, []string{"source", "branch"}),
		scoresRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_scores_rejected_total",
			Help: "Scoring requests rejected before scoring",
		}, []string{"source", "reason"}),
		metricFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_metric_failures_total",
			Help: "Metrics that recorded an error, by category",
		}, []string{"source", "category"}),
		scoreDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credit_score_duration_seconds",
			Help:    "Time taken to score one request",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}, []string{"source"}),
		scoreDistribution: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credit_score_distribution",
			Help:    "Distribution of final credit scores",
			Buckets: []float64{300, 500, 560, 650, 740, 800, 870, 900},
		}, []string{"source"}),
		riskLevels: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "credit_risk_levels_total",
			Help: "Risk levels assigned to scored users",
		}, []string{"source", "level"}),
		logger: logger,
	}
}

func (m *MetricsCollector) RecordScore(source, branch string, score float64, duration time.Duration) {
	m.scoresComputed.WithLabelValues(source, branch).Inc()
	m.scoreDistribution.WithLabelValues(source).Observe(score)
	m.scoreDuration.WithLabelValues(source).Observe(duration.Seconds())
}

func (m *MetricsCollector) RecordRejected(source, reason string) {
	m.scoresRejected.WithLabelValues(source, reason).Inc()
}

func (m *MetricsCollector) RecordMetricFailure(source, category string) {
	m.metricFailures.WithLabelValues(source, category).Inc()
}

func (m *MetricsCollector) RecordRisk(source, level string) {
	m.riskLevels.WithLabelValues(source, level).Inc()
}

// Registry exposes the private registry, mainly for tests.
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

func (m *MetricsCollector) GetHandler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsCollector) StartMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.GetHandler())

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		m.logger.Info("Starting metrics server", slog.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			m.logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()

	return server
}

func (m *MetricsCollector) Shutdown(ctx context.Context, server *http.Server) error {
	if server == nil {
		return nil
	}
	if err := server.Shutdown(ctx); err != nil {
		return err
	}
	m.logger.Info("Metrics server stopped")
	return nil
}
