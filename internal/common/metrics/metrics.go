// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Submission outcomes used as the "outcome" label.
const (
	OutcomeSuccess  = "success"
	OutcomeFailure  = "failure"
	OutcomeRejected = "rejected"
	OutcomeStale    = "stale"
)

var (
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_submissions_total",
			Help: "Total number of prediction submissions by outcome",
		},
		[]string{"outcome"},
	)

	SubmissionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dashboard_submission_duration_seconds",
			Help:    "Duration of prediction submissions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	PredictionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_predictions_total",
			Help: "Predictions applied to a view, by label",
		},
		[]string{"label"},
	)

	FieldUpdatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dashboard_field_updates_total",
			Help: "Form field updates by field name",
		},
		[]string{"field"},
	)

	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dashboard_sessions_active",
			Help: "Number of live dashboard sessions",
		},
	)
)
