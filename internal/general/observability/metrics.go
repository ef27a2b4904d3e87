package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_share", Name: "transitions_total", Help: "Committed state transitions by type"},
		[]string{"type"},
	)
	SeatContentionTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "ride_share", Name: "seat_contention_total", Help: "Seat debits refused because the ride ran out of seats",
	})
	SeatsDebitedTotal  = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_share", Name: "seats_debited_total", Help: "Seats taken from rides"})
	SeatsCreditedTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: "ride_share", Name: "seats_credited_total", Help: "Seats returned to rides"})

	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_share", Name: "notifications_sent_total", Help: "Notifications handed to the sink"},
		[]string{"type"},
	)
	NotificationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_share", Name: "notification_failures_total", Help: "Notifications the sink failed to deliver"},
		[]string{"type"},
	)

	NotificationsConsumedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_share", Name: "notifications_consumed_total", Help: "Queued notifications settled by the consumer"},
		[]string{"outcome"},
	)

	WSConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ride_share", Name: "ws_connections", Help: "Open notification sockets",
	})
	WSPushedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_share", Name: "ws_pushed_total", Help: "Notifications pushed over websockets by outcome"},
		[]string{"outcome"},
	)

	BrokerReconnectsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_share", Name: "broker_reconnects_total", Help: "RabbitMQ reconnect attempts by outcome"},
		[]string{"outcome"},
	)

	EstimatorCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_share", Name: "estimator_cache_total", Help: "Travel time cache lookups"},
		[]string{"result"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ride_share", Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ride_share",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

// statusRecorder captures the response status for the HTTP metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

// InstrumentHTTP records request count and latency labelled by the matched route pattern.
func InstrumentHTTP(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		path := r.Pattern
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(rec.status)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, status).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
	})
}
