package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "order_events_consumed_total",
		Help: "Order lifecycle events pulled from the bus, by event type.",
	}, []string{"type"})

	ReconcileFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stock_reconcile_failures_total",
		Help: "Handler-level failures while applying stock adjustments.",
	})

	EventsDeadLettered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "order_events_dead_lettered_total",
		Help: "Messages routed to the dead-letter topic after exhausting retries.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests served, by method and status class.",
	}, []string{"service", "method", "status"})
)

func Handler() http.Handler { return promhttp.Handler() }
