// Package metrics provides Prometheus metrics instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestDuration tracks HTTP request duration.
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	// RequestsTotal tracks total HTTP requests.
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// DialogueRunsTotal tracks completed dialogue runs by outcome.
	DialogueRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dialogue_runs_total",
			Help: "Total dialogue runs",
		},
		[]string{"trigger", "status"},
	)

	// DialogueRunDuration tracks full dialogue run duration.
	DialogueRunDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "dialogue_run_duration_seconds",
			Help:    "Dialogue run duration in seconds",
			Buckets: []float64{5, 10, 30, 60, 120, 300, 600, 1200},
		},
		[]string{"status"},
	)

	// CompletionDuration tracks individual model completion duration.
	CompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "llm_completion_duration_seconds",
			Help:    "Model completion call duration",
			Buckets: []float64{1, 2, 5, 10, 20, 30, 45, 60, 90, 120},
		},
		[]string{"model", "status"},
	)

	// CompletionTokensTotal tracks tokens processed by model completions.
	CompletionTokensTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "llm_completion_tokens_total",
			Help: "Total tokens processed by model completions",
		},
		[]string{"model", "direction"},
	)

	// ArchiveRecordsTotal tracks records appended to the archive.
	ArchiveRecordsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_records_total",
			Help: "Total records appended to the archive",
		},
		[]string{"backend"},
	)

	// ArchiveAppendErrors tracks failed archive appends.
	ArchiveAppendErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archive_append_errors_total",
			Help: "Total failed archive appends",
		},
		[]string{"backend"},
	)

	// MemoryCallsTotal tracks memory backend calls by operation and outcome.
	MemoryCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "memory_calls_total",
			Help: "Total memory backend calls",
		},
		[]string{"operation", "status"},
	)
)

// RecordRequest records metrics for an HTTP request.
func RecordRequest(method, path, status string, duration float64) {
	RequestDuration.WithLabelValues(method, path, status).Observe(duration)
	RequestsTotal.WithLabelValues(method, path, status).Inc()
}

// RecordCompletion records metrics for a model completion call.
func RecordCompletion(model, status string, duration float64, tokensIn, tokensOut int) {
	CompletionDuration.WithLabelValues(model, status).Observe(duration)
	CompletionTokensTotal.WithLabelValues(model, "in").Add(float64(tokensIn))
	CompletionTokensTotal.WithLabelValues(model, "out").Add(float64(tokensOut))
}

// RecordDialogueRun records metrics for a full dialogue run.
func RecordDialogueRun(trigger, status string, duration float64) {
	DialogueRunsTotal.WithLabelValues(trigger, status).Inc()
	DialogueRunDuration.WithLabelValues(status).Observe(duration)
}
