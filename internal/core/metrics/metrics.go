package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "proposal_ai"

// Generation outcomes
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

type collectors struct {
	generationsTotal   *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	lineItems          prometheus.Histogram
	unsavedTotal       *prometheus.CounterVec
	chatMessagesTotal  prometheus.Counter
	expiredTotal       prometheus.Counter

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

var get = sync.OnceValue(func() *collectors {
	return &collectors{
		generationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Generation requests by kind and outcome.",
		}, []string{"kind", "outcome"}),
		generationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Latency of text generation calls.",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60, 120},
		}, []string{"kind", "outcome"}),
		lineItems: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "quotation_line_items",
			Help:      "Line items recognised per generated quotation.",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		}),
		unsavedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unsaved_results_total",
			Help:      "Generated results returned to the caller but not persisted.",
		}, []string{"kind"}),
		chatMessagesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chat_messages_total",
			Help:      "Chat messages accepted by the store.",
		}),
		expiredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "quotations_expired_total",
			Help:      "Quotations moved to expired by the sweep.",
		}),
		httpRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status class.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
})

// ObserveGeneration records one generation call
func ObserveGeneration(kind, outcome string, d time.Duration) {
	m := get()
	m.generationsTotal.WithLabelValues(kind, outcome).Inc()
	m.generationDuration.WithLabelValues(kind, outcome).Observe(d.Seconds())
}

// ObserveLineItems records how many line items a quotation parsed into
func ObserveLineItems(n int) {
	get().lineItems.Observe(float64(n))
}

// IncUnsaved counts a generated result whose persistence failed
func IncUnsaved(kind string) {
	get().unsavedTotal.WithLabelValues(kind).Inc()
}

// IncChatMessages counts one stored chat message
func IncChatMessages() {
	get().chatMessagesTotal.Inc()
}

// AddExpired counts quotations expired by one sweep
func AddExpired(n int64) {
	if n > 0 {
		get().expiredTotal.Add(float64(n))
	}
}

// Middleware records request counts and latency. The route label is the
// registered pattern, not the raw path, to keep cardinality bounded.
func Middleware() fiber.Handler {
	m := get()
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}

		// Without a matching handler the route is still the middleware's own "/"
		route := c.Route().Path
		if route == "/" && c.Path() != "/" {
			route = "unmatched"
		}

		method := c.Method()
		m.httpRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
		m.httpRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler serves the default registry in the Prometheus text format
func Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}

func statusClass(code int) string {
	if code < 100 || code > 599 {
		return "unknown"
	}
	return strconv.Itoa(code/100) + "xx"
}
