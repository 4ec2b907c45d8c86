// Package metrics holds the Prometheus collectors for analysis runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "compliance"

var (
	pipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by result",
		},
		[]string{"result"},
	)

	evaluations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "evaluations_total",
			Help:      "Framework evaluations by outcome (assessed or fallback)",
		},
		[]string{"framework", "outcome"},
	)

	evaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "evaluation_duration_seconds",
			Help:      "Framework evaluation latency including the model call",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 0.5s to ~4m
		},
		[]string{"framework"},
	)

	compositeScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "composite_score",
			Help:      "Distribution of UK Alignment Scores",
			Buckets:   prometheus.LinearBuckets(10, 10, 10),
		},
	)

	crossFrameworkGaps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "cross_framework_gaps_total",
			Help:      "Cross-framework gaps reported, by issue",
		},
		[]string{"issue"},
	)
)

// RecordRun counts a finished run; result is "success" or "failure".
func RecordRun(result string) {
	pipelineRuns.WithLabelValues(result).Inc()
}

// RecordEvaluation records one evaluator invocation.
func RecordEvaluation(framework string, assessed bool, elapsed time.Duration) {
	outcome := "fallback"
	if assessed {
		outcome = "assessed"
	}
	evaluations.WithLabelValues(framework, outcome).Inc()
	evaluationDuration.WithLabelValues(framework).Observe(elapsed.Seconds())
}

func RecordComposite(score int) {
	compositeScore.Observe(float64(score))
}

func RecordCrossFrameworkGap(issue string) {
	crossFrameworkGaps.WithLabelValues(issue).Inc()
}
