package listing

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 降级类型标签
const (
	degradedAccountTruncated = "account_truncated"
	degradedMissingBase      = "missing_base"
	degradedExtraFailed      = "extra_failed"
	degradedModelsFailed     = "models_failed"
	degradedCountFailed      = "count_failed"
)

var (
	pipelineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopee_pipeline_duration_seconds",
			Help:    "Aggregation pipeline latency by operation",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"op"},
	)

	degradedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopee_pipeline_degraded_total",
			Help: "Partial failures absorbed by the aggregation pipeline",
		},
		[]string{"kind"},
	)
)

func observeDegraded(kind string, n int) {
	if n > 0 {
		degradedTotal.WithLabelValues(kind).Add(float64(n))
	}
}

func observeDuration(op string, start time.Time) {
	pipelineDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
