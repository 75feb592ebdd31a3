// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "churnshield_predictions_total",
			Help: "Total number of predictions served, by risk level",
		},
		[]string{"risk_level"},
	)

	PredictionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "churnshield_prediction_errors_total",
			Help: "Total number of rejected prediction requests, by error code",
		},
		[]string{"error_code"},
	)

	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "churnshield_prediction_duration_seconds",
			Help: "Duration of the clean-encode-score-explain chain in seconds",
		},
	)

	ModelLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "churnshield_model_loaded",
			Help: "1 when a fitted pipeline is loaded, 0 in degraded mode",
		},
	)

	LogWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "churnshield_log_write_failures_total",
			Help: "Total number of swallowed prediction log write failures",
		},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "churnshield_http_requests_total",
			Help: "Total HTTP requests, by path and status",
		},
		[]string{"path", "status"},
	)
)
