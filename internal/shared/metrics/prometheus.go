package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	httpRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)

	// Business metrics
	firsRegistered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firs_registered_total",
			Help: "Total number of FIRs registered",
		},
		[]string{"station"},
	)

	firsStatusChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "firs_status_changed_total",
			Help: "Total number of FIR status changes",
		},
		[]string{"from_status", "to_status"},
	)

	progressEntries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fir_progress_entries_total",
			Help: "Total number of progress entries appended",
		},
		[]string{"with_culprit"},
	)

	escalationsSubmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalations_submitted_total",
			Help: "Total number of escalation submissions",
		},
		[]string{"outcome"},
	)

	escalationsStatusChanged = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalations_status_changed_total",
			Help: "Total number of escalation status changes",
		},
		[]string{"to_status"},
	)

	authorizationDecisions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "authorization_decisions_total",
			Help: "Total number of authorization decisions",
		},
		[]string{"resource_type", "action", "decision"},
	)

	loginAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "login_attempts_total",
			Help: "Total number of credential checks",
		},
		[]string{"role", "result"},
	)

	rateLimited = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limited_requests_total",
			Help: "Total number of requests rejected by the rate limiter",
		},
		[]string{"path"},
	)

	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domain_events_published_total",
			Help: "Total number of domain events handed to the event store",
		},
		[]string{"type", "result"},
	)
)

// Handler returns the Prometheus metrics HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware creates HTTP metrics middleware
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpRequestsInFlight.Inc()
		defer httpRequestsInFlight.Dec()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		duration := time.Since(start).Seconds()
		path := routePattern(r)

		httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
		httpRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
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

// routePattern labels requests by the matched chi pattern (/fir/detail/{fir_id})
// rather than the raw path, which would carry FIR ids into label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// --- Business metric helpers ---

// RecordFIRRegistered records a new FIR at a station
func RecordFIRRegistered(stationID int64) {
	firsRegistered.WithLabelValues(strconv.FormatInt(stationID, 10)).Inc()
}

// RecordFIRStatusChange records an FIR status change
func RecordFIRStatusChange(fromStatus, toStatus string) {
	firsStatusChanged.WithLabelValues(fromStatus, toStatus).Inc()
}

func RecordProgressAdded(withCulprit bool) {
	progressEntries.WithLabelValues(strconv.FormatBool(withCulprit)).Inc()
}

// RecordEscalationSubmitted records an escalation upsert; created is false when
// an existing escalation had its reason replaced.
func RecordEscalationSubmitted(created bool) {
	outcome := "updated"
	if created {
		outcome = "created"
	}
	escalationsSubmitted.WithLabelValues(outcome).Inc()
}

func RecordEscalationStatusChange(toStatus string) {
	escalationsStatusChanged.WithLabelValues(toStatus).Inc()
}

// RecordAuthorizationDecision records an authorization decision
func RecordAuthorizationDecision(resourceType, action string, allowed bool) {
	decision := "deny"
	if allowed {
		decision = "allow"
	}
	authorizationDecisions.WithLabelValues(resourceType, action, decision).Inc()
}

func RecordLoginAttempt(role string, success bool) {
	result := "failure"
	if success {
		result = "success"
	}
	loginAttempts.WithLabelValues(role, result).Inc()
}

func RecordRateLimited(path string) {
	rateLimited.WithLabelValues(path).Inc()
}

func RecordEventPublished(eventType string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	eventsPublished.WithLabelValues(eventType, result).Inc()
}
