package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TasksCompleted counts scoring tasks that reached completed.
	TasksCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "score_tasks_completed_total",
		Help: "Total number of scoring tasks completed successfully",
	})

	// TasksFailed counts scoring tasks that reached failed, by error code.
	TasksFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "score_tasks_failed_total",
		Help: "Total number of scoring tasks that failed",
	}, []string{"error_code"})

	// TaskDuration tracks end-to-end scoring task duration.
	TaskDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "score_task_duration_seconds",
		Help:    "Duration of scoring tasks from submission to terminal state",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	})

	// TasksActive tracks tasks currently pending or processing.
	TasksActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "score_tasks_active",
		Help: "Number of scoring tasks currently pending or processing",
	})

	// UpstreamRequests counts requests to external APIs by target and outcome.
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "score_upstream_requests_total",
		Help: "Total requests to upstream APIs",
	}, []string{"target", "outcome"})
)
