package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "propertyd",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propertyd",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "propertyd",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	contractTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propertyd",
			Subsystem: "contracts",
			Name:      "transitions_total",
			Help:      "Total number of contract state transitions.",
		},
		[]string{"to_status"},
	)

	paymentsApplied = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "propertyd",
			Subsystem: "payments",
			Name:      "applied_total",
			Help:      "Total number of payments applied to contracts.",
		},
		[]string{"settled"},
	)

	paymentAmount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "propertyd",
			Subsystem: "payments",
			Name:      "amount",
			Help:      "Distribution of applied payment amounts.",
			Buckets:   prometheus.ExponentialBuckets(10, 2.5, 10),
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		contractTransitions,
		paymentsApplied,
		paymentAmount,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// InstrumentHandler wraps the provided handler with HTTP metrics collection.
func InstrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()

		httpInFlight.Inc()
		defer httpInFlight.Dec()

		next.ServeHTTP(rec, r)

		duration := time.Since(start)
		path := canonicalPath(r.URL.Path)
		method := strings.ToUpper(r.Method)

		httpRequests.WithLabelValues(method, path, strconv.Itoa(rec.status)).Inc()
		httpDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	})
}

// RecordContractTransition counts a completed lifecycle transition.
func RecordContractTransition(toStatus string) {
	if toStatus == "" {
		toStatus = "unknown"
	}
	contractTransitions.WithLabelValues(toStatus).Inc()
}

// RecordPaymentApplied counts an applied payment and its amount.
func RecordPaymentApplied(amount float64, settled bool) {
	result := "false"
	if settled {
		result = "true"
	}
	paymentsApplied.WithLabelValues(result).Inc()
	paymentAmount.Observe(amount)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

// canonicalPath collapses resource identifiers so metric label cardinality
// stays bounded.
func canonicalPath(raw string) string {
	if raw == "" || raw == "/" {
		return "/"
	}
	trimmed := strings.Trim(raw, "/")
	if trimmed == "" {
		return "/"
	}
	parts := strings.Split(trimmed, "/")

	switch parts[0] {
	case "contracts":
		if len(parts) == 1 {
			return "/contracts"
		}
		if len(parts) == 2 {
			return "/contracts/:id"
		}
		return "/contracts/:id/" + parts[2]
	case "payments":
		if len(parts) >= 2 && parts[1] == "contract" {
			return "/payments/contract/:id"
		}
		return "/payments"
	case "properties":
		if len(parts) >= 2 && parts[1] == "units" {
			return "/properties/units/:id"
		}
		return "/properties"
	case "tickets":
		if len(parts) > 1 {
			return "/tickets/:id"
		}
		return "/tickets"
	case "documents":
		if len(parts) >= 2 && parts[1] == "user" {
			return "/documents/user/:id"
		}
		if len(parts) == 3 && parts[2] == "status" {
			return "/documents/:id/status"
		}
		if len(parts) == 2 {
			return "/documents/" + parts[1]
		}
		return "/documents"
	default:
		return "/" + parts[0]
	}
}
