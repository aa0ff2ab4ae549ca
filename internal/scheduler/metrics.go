package scheduler

import (
	"shopee/internal/task"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	taskRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopee_task_runs_total",
			Help: "Snapshot task runs by task, trigger and result",
		},
		[]string{"task", "trigger", "result"},
	)

	taskDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopee_task_duration_seconds",
			Help:    "Snapshot task run duration",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300},
		},
		[]string{"task"},
	)

	taskLastSuccess = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "shopee_task_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run per task",
		},
		[]string{"task"},
	)
)

func observeRun(r task.TaskResult) {
	outcome := "success"
	if !r.Success {
		outcome = "error"
	}
	taskRunsTotal.WithLabelValues(r.TaskName, r.Trigger, outcome).Inc()
	taskDuration.WithLabelValues(r.TaskName).Observe(r.Duration.Seconds())
	if r.Success {
		taskLastSuccess.WithLabelValues(r.TaskName).Set(float64(r.EndTime.Unix()))
	}
}
