package observability

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Append sources for the entries_appended_total counter.
const (
	SourceHTTP = "http"
	SourceMLLP = "mllp"
)

// Metrics stores Prometheus collectors for the API and the MLLP listener.
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	entriesAppendedTotal *prometheus.CounterVec
	appendRejectedTotal  *prometheus.CounterVec
	queryDuration        *prometheus.HistogramVec
	mllpMessagesTotal    *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routing_log",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests processed by method, path, and status.",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "routing_log",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds by method and path.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		entriesAppendedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routing_log",
				Name:      "entries_appended_total",
				Help:      "Total number of routing log entries appended by status and source.",
			},
			[]string{"status", "source"},
		),
		appendRejectedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routing_log",
				Name:      "append_rejected_total",
				Help:      "Total number of rejected appends by failure kind.",
			},
			[]string{"kind"},
		),
		queryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "routing_log",
				Name:      "query_duration_seconds",
				Help:      "Routing log query duration in seconds by operation.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
			},
			[]string{"operation"},
		),
		mllpMessagesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "routing_log",
				Name:      "mllp_messages_total",
				Help:      "Total number of MLLP messages received by acknowledgment code.",
			},
			[]string{"ack"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.entriesAppendedTotal,
		m.appendRejectedTotal,
		m.queryDuration,
		m.mllpMessagesTotal,
	)

	return m
}

func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) HTTPMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		path := routePath(c)
		// Avoid self-scrape noise for request counters.
		if path == "/metrics" {
			return err
		}

		m.recordHTTPRequest(c.Method(), path, statusFromResult(c, err), time.Since(start))
		return err
	}
}

func (m *Metrics) IncEntryAppended(status string, source string) {
	if m == nil {
		return
	}
	m.entriesAppendedTotal.WithLabelValues(normalizeLabel(status), normalizeLabel(source)).Inc()
}

func (m *Metrics) IncAppendRejected(kind string) {
	if m == nil {
		return
	}
	m.appendRejectedTotal.WithLabelValues(normalizeLabel(kind)).Inc()
}

func (m *Metrics) ObserveQueryDuration(operation string, duration time.Duration) {
	if m == nil {
		return
	}
	seconds := duration.Seconds()
	if seconds < 0 {
		seconds = 0
	}
	m.queryDuration.WithLabelValues(normalizeLabel(operation)).Observe(seconds)
}

func (m *Metrics) IncMLLPMessage(ack string) {
	if m == nil {
		return
	}
	label := strings.ToUpper(strings.TrimSpace(ack))
	if label == "" {
		label = "NONE"
	}
	m.mllpMessagesTotal.WithLabelValues(label).Inc()
}

func (m *Metrics) recordHTTPRequest(method string, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}

	methodLabel := strings.ToUpper(strings.TrimSpace(method))
	if methodLabel == "" {
		methodLabel = "UNKNOWN"
	}
	pathLabel := strings.TrimSpace(path)
	if pathLabel == "" {
		pathLabel = "unmatched"
	}

	m.httpRequestsTotal.WithLabelValues(methodLabel, pathLabel, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(methodLabel, pathLabel).Observe(duration.Seconds())
}

func routePath(c *fiber.Ctx) string {
	if c == nil {
		return "unmatched"
	}

	if route := c.Route(); route != nil {
		if path := strings.TrimSpace(route.Path); path != "" {
			return path
		}
	}
	return "unmatched"
}

func statusFromResult(c *fiber.Ctx, err error) int {
	if err != nil {
		if fiberErr, ok := err.(*fiber.Error); ok {
			return fiberErr.Code
		}
		return fiber.StatusInternalServerError
	}

	if c == nil {
		return fiber.StatusOK
	}

	status := c.Response().StatusCode()
	if status == 0 {
		return fiber.StatusOK
	}
	return status
}

func normalizeLabel(value string) string {
	normalized := strings.ToLower(strings.TrimSpace(value))
	if normalized == "" {
		return "unknown"
	}
	return normalized
}
