package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// GatewayAttempts counts every HTTP attempt against the pricing gateway.
	GatewayAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedgegate_gateway_attempts_total",
		Help: "Gateway HTTP attempts by endpoint, outcome and error code",
	}, []string{"endpoint", "status", "error_code"})

	GatewayAttemptLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hedgegate_gateway_attempt_latency_seconds",
		Help:    "Latency of single gateway HTTP attempts",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	LatencyBucket = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "hedgegate_http_latency_seconds",
		Help:    "Request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	OrdersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedgegate_execution_orders_total",
		Help: "Execution orders submitted through the BFF",
	}, []string{"status", "side"})

	RiskRejects = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "hedgegate_risk_rejects_total",
		Help: "Total pre-trade risk rejections",
	}, []string{"reason"})

	TelemetryDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "hedgegate_telemetry_dropped_total",
		Help: "Telemetry events dropped because the recorder buffer was full",
	})
)
