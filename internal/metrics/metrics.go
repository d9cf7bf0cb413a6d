package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UnknownEvent labels realtime events outside the chat protocol
const UnknownEvent = "unknown"

var (
	// HTTP リクエスト数
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	// HTTP リクエスト処理時間（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "route"},
	)

	// 現在の WebSocket 接続数
	RealtimeConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "realtime_connections",
			Help: "Number of open realtime connections on this instance",
		},
	)

	// 受信した realtime イベント数
	RealtimeEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "realtime_events_total",
			Help: "Total number of realtime events received from clients",
		},
		[]string{"event"},
	)

	// AI completion 呼び出し時間（秒）
	AICompletionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_completion_duration_seconds",
			Help:    "AI completion call latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10), // 100ms to ~50s
		},
		[]string{"status"},
	)
)

// RecordHTTPRequest records one finished HTTP request
func RecordHTTPRequest(method, route, status string, d time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// RecordRealtimeEvent counts one inbound realtime event
func RecordRealtimeEvent(event string) {
	RealtimeEventsTotal.WithLabelValues(event).Inc()
}

// RecordAICompletion records latency of one completion call
func RecordAICompletion(status string, d time.Duration) {
	AICompletionDuration.WithLabelValues(status).Observe(d.Seconds())
}
