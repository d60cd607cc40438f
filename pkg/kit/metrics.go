package kit

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// unmatchedRoute labels requests no route matched, so arbitrary URLs do not
// become label values.
const unmatchedRoute = "unmatched"

// Metrics holds the per-service HTTP collectors, labelled by chi route
// pattern rather than raw path.
type Metrics struct {
	Requests *prometheus.CounterVec
	Latency  *prometheus.HistogramVec
	InFlight *prometheus.GaugeVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by route and status",
		}, []string{"service", "method", "route", "status"}),
		Latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP latency by route",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"service", "method", "route"}),
		InFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "HTTP requests being served",
		}, []string{"service"}),
	}

	reg.MustRegister(m.Requests, m.Latency, m.InFlight)
	return m
}

// Middleware must be mounted on the chi router so the route pattern is known
// once the handler returns.
func (m *Metrics) Middleware(service string) func(http.Handler) http.Handler {
	inFlight := m.InFlight.WithLabelValues(service)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inFlight.Inc()
			defer inFlight.Dec()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			route := RoutePattern(r)
			m.Latency.WithLabelValues(service, r.Method, route).Observe(time.Since(start).Seconds())
			m.Requests.WithLabelValues(service, r.Method, route, strconv.Itoa(status)).Inc()
		})
	}
}

// RoutePattern is the chi pattern that served r, or "unmatched".
func RoutePattern(r *http.Request) string {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		return unmatchedRoute
	}
	if rp := rctx.RoutePattern(); rp != "" {
		return rp
	}
	return unmatchedRoute
}

// MetricsHandler exposes reg behind MetricsAuth(token).
func MetricsHandler(reg *prometheus.Registry, token string) http.Handler {
	return MetricsAuth(token)(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
}
