// Package metrics exposes prometheus collectors for task runs and alert delivery.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TaskRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_task_runs_total",
			Help: "Task invocations by final status",
		},
		[]string{"task", "status"},
	)

	TaskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pipeline_task_duration_seconds",
			Help:    "Wall time of task invocations, including skipped ones",
			Buckets: []float64{0.1, 1, 10, 60, 300, 900, 1800, 3600, 7200},
		},
		[]string{"task"},
	)

	Alerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_alerts_total",
			Help: "Failure alerts by delivery result",
		},
		[]string{"result"},
	)
)

func RecordTaskRun(task, status string, duration time.Duration) {
	TaskRuns.WithLabelValues(task, status).Inc()
	TaskDuration.WithLabelValues(task).Observe(duration.Seconds())
}

func RecordAlert(result string) {
	Alerts.WithLabelValues(result).Inc()
}
