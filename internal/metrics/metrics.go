package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tutoring",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route pattern.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	classEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutoring",
		Name:      "class_events_total",
		Help:      "Scheduled class mutations by kind.",
	}, []string{"event"})

	rollupRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutoring",
		Name:      "hours_rollup_runs_total",
		Help:      "Hours rollup job runs by result.",
	}, []string{"result"})

	loginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tutoring",
		Name:      "login_attempts_total",
		Help:      "Login attempts by result.",
	}, []string{"result"})
)

const (
	ClassCreated   = "created"
	ClassUpdated   = "updated"
	ClassDeleted   = "deleted"
	ClassBookedOff = "booked_off"
)

func RecordClassEvent(event string) {
	classEvents.WithLabelValues(event).Inc()
}

func RecordRollup(err error) {
	if err != nil {
		rollupRuns.WithLabelValues("error").Inc()
		return
	}
	rollupRuns.WithLabelValues("ok").Inc()
}

func RecordLogin(result string) {
	loginAttempts.WithLabelValues(result).Inc()
}

// Middleware observes request latency labelled with the chi route pattern,
// so path parameters do not explode cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		requestDuration.WithLabelValues(r.Method, route, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
