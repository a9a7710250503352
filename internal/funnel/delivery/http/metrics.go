package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the Prometheus collectors the funnel handler feeds
type Metrics struct {
	requestCounter  *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	requestSummary  *prometheus.SummaryVec
	ordersPlaced    prometheus.Counter
	orderValue      prometheus.Counter
	wishlistChanges *prometheus.CounterVec
	viewsRecorded   *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "funnel_service_requests_total",
				Help: "Total number of requests to funnel service",
			},
			[]string{"method", "endpoint", "status"},
		),
		requestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "funnel_service_request_duration_seconds",
				Help:    "Duration of funnel service requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
		// Summary metric for percentile calculation (p50, p90, p95, p99)
		requestSummary: prometheus.NewSummaryVec(
			prometheus.SummaryOpts{
				Name: "funnel_service_request_duration_summary",
				Help: "Summary of request durations with percentiles (client-side quantiles)",
				Objectives: map[float64]float64{
					0.5:  0.05,
					0.9:  0.01,
					0.95: 0.01,
					0.99: 0.001,
				},
				MaxAge: 10 * time.Minute,
			},
			[]string{"method", "endpoint"},
		),
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "funnel_orders_placed_total",
			Help: "Orders created from carts",
		}),
		orderValue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "funnel_order_value_total",
			Help: "Sum of placed order totals",
		}),
		wishlistChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_wishlist_changes_total",
			Help: "Wishlist entries created or removed",
		}, []string{"op"}),
		viewsRecorded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "funnel_views_total",
			Help: "Product views by outcome",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.requestCounter,
		m.requestLatency,
		m.requestSummary,
		m.ordersPlaced,
		m.orderValue,
		m.wishlistChanges,
		m.viewsRecorded,
	)
	return m
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// instrument wraps handlers with Prometheus metrics
func (m *Metrics) instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(rw, r)

		duration := time.Since(start).Seconds()
		m.requestCounter.WithLabelValues(r.Method, endpoint, strconv.Itoa(rw.statusCode)).Inc()
		m.requestLatency.WithLabelValues(r.Method, endpoint).Observe(duration)
		m.requestSummary.WithLabelValues(r.Method, endpoint).Observe(duration)
	}
}
