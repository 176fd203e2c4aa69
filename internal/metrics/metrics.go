package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "classifieds_http_requests_total", Help: "HTTP requests by route and status"},
		[]string{"method", "route", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifieds_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "route"},
	)
	TokensIssued = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "classifieds_tokens_issued_total", Help: "Tokens issued at login"},
	)
	TokenRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "classifieds_token_rejections_total", Help: "Rejected X-Token values"},
		[]string{"reason"},
	)
	LoginFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "classifieds_login_failures_total", Help: "Failed login attempts"},
	)
	TokensPurged = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "classifieds_tokens_purged_total", Help: "Expired tokens removed by cleanup"},
	)
	FeedClients = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "classifieds_feed_clients", Help: "Connected advertisement feed websocket clients"},
	)
	FeedDropped = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "classifieds_feed_dropped_total", Help: "Feed events dropped because the hub was busy"},
	)
)

var registerOnce sync.Once

// Register регистрирует коллекторы в глобальном реестре. Повторный вызов ничего не делает.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequests,
			HTTPDuration,
			TokensIssued,
			TokenRejections,
			LoginFailures,
			TokensPurged,
			FeedClients,
			FeedDropped,
		)
	})
}
