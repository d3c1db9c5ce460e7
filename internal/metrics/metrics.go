// Package metrics exposes prometheus collectors for the response pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for Responses.
const (
	OutcomeOK       = "ok"
	OutcomeCrisis   = "crisis"
	OutcomeOffTopic = "off_topic"
	OutcomeNoKey    = "no_api_key"
	OutcomeError    = "error"
)

var (
	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warda_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "warda_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method", "endpoint"},
	)

	Responses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warda_responses_total",
			Help: "Generated responses by outcome",
		},
		[]string{"outcome"},
	)

	Emotions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "warda_emotions_total",
			Help: "Classified emotions by label and method",
		},
		[]string{"emotion", "method"},
	)

	CompletionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warda_completion_latency_seconds",
			Help:    "Completion service latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		},
	)

	RetrievalTopK = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "warda_retrieval_top_k",
			Help:    "Passages requested per retrieval",
			Buckets: prometheus.LinearBuckets(3, 1, 10),
		},
	)

	ActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "warda_active_websocket_streams",
			Help: "Number of open chat WebSocket connections",
		},
	)
)
