package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 请求结果标签
const (
	outcomeOK        = "ok"
	outcomeTransport = "transport_error"
	outcomeHTTP      = "http_error"
	outcomeDecode    = "decode_error"
	outcomeAPI       = "api_error"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shopee_api_requests_total",
			Help: "Total number of Shopee Open API requests by path and outcome",
		},
		[]string{"path", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "shopee_api_request_duration_seconds",
			Help:    "Shopee Open API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)
