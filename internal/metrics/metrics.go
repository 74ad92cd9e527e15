package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	WsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "studyhub_ws_connections",
		Help: "Current number of active websocket connections",
	})
	MessagesFannedOut = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studyhub_messages_fanned_out_total",
		Help: "Total number of message deliveries to room members",
	})
	MessagesPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studyhub_messages_published_total",
		Help: "Total number of envelopes published to rooms",
	})
	TypingRelays = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "studyhub_typing_relays_total",
		Help: "Total number of typing signals relayed",
	})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func init() {
	prometheus.MustRegister(
		WsConnections,
		MessagesFannedOut,
		MessagesPublished,
		TypingRelays,
		HTTPRequestsTotal,
		HTTPRequestDuration,
	)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// HTTPMiddleware records basic request metrics for Prometheus to scrape.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		labels := prometheus.Labels{
			"method": r.Method,
			"path":   r.URL.Path,
			"status": strconv.Itoa(rec.status),
		}
		HTTPRequestsTotal.With(labels).Inc()
		HTTPRequestDuration.With(labels).Observe(time.Since(start).Seconds())
	})
}
