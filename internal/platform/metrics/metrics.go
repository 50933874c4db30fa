// Package metrics owns the Prometheus collectors shared by every Kanvas binary.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kanvas_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
	eventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanvas_events_published_total",
			Help: "Envelopes written to the bus by topic",
		},
		[]string{"topic"},
	)
	eventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanvas_events_consumed_total",
			Help: "Envelopes handled by consumers by topic, group and outcome",
		},
		[]string{"topic", "group", "outcome"},
	)
	roleLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanvas_gateway_role_lookups_total",
			Help: "Gateway board role lookups by outcome",
		},
		[]string{"outcome"},
	)
	authRejections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kanvas_gateway_auth_rejections_total",
			Help: "Requests rejected by the gateway authentication filter",
		},
		[]string{"reason"},
	)
	liveSubscribers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kanvas_realtime_subscribers",
			Help: "Open realtime streams",
		},
	)
)

// Middleware records request duration labelled by the matched chi route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		httpRequestDuration.
			WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).
			Observe(time.Since(start).Seconds())
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func RecordPublished(topic string) {
	eventsPublished.WithLabelValues(topic).Inc()
}

func RecordConsumed(topic string, group string, outcome string) {
	eventsConsumed.WithLabelValues(topic, group, outcome).Inc()
}

func RecordRoleLookup(outcome string) {
	roleLookups.WithLabelValues(outcome).Inc()
}

func RecordAuthRejection(reason string) {
	authRejections.WithLabelValues(reason).Inc()
}

func SubscriberOpened() {
	liveSubscribers.Inc()
}

func SubscriberClosed() {
	liveSubscribers.Dec()
}
