package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SscSPs/ledger_core/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Workflow operation labels.
const (
	OpPost          = "post"
	OpReverse       = "reverse"
	OpCreateAccount = "create_account"
	OpRenameAccount = "rename_account"
)

// Metrics collects the Prometheus collectors of the ledger service.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	entries         *prometheus.CounterVec
	failures        *prometheus.CounterVec
	conflicts       *prometheus.CounterVec
	commitDuration  *prometheus.HistogramVec
}

// New initialises a dedicated registry with the ledger collectors.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	m := &Metrics{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_http_request_duration_seconds",
			Help:    "HTTP request duration by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_entries_recorded_total",
			Help: "Journal entries committed, by workflow.",
		}, []string{"operation"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_workflow_failures_total",
			Help: "Workflow failures by operation and reason.",
		}, []string{"operation", "reason"}),
		conflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ledger_commit_conflicts_total",
			Help: "Commits rejected because a touched account changed concurrently.",
		}, []string{"operation"}),
		commitDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ledger_commit_duration_seconds",
			Help:    "Duration of the atomic commit step.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	registry.MustRegister(
		m.requestsTotal, m.requestDuration,
		m.entries, m.failures, m.conflicts, m.commitDuration,
	)
	return m
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// Registerer exposes the registry for extra collectors.
func (m *Metrics) Registerer() prometheus.Registerer {
	if m == nil {
		return prometheus.DefaultRegisterer
	}
	return m.registry
}

// Gatherer exposes the registry for scraping and tests.
func (m *Metrics) Gatherer() prometheus.Gatherer {
	if m == nil {
		return prometheus.DefaultGatherer
	}
	return m.registry
}

// GinMiddleware records request counts and latency per matched route.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.requestsTotal.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}

// EntryRecorded counts a committed journal entry.
func (m *Metrics) EntryRecorded(operation string) {
	if m == nil {
		return
	}
	m.entries.WithLabelValues(operation).Inc()
}

// WorkflowFailed counts a failed workflow, labelled by the class of err.
func (m *Metrics) WorkflowFailed(operation string, err error) {
	if m == nil || err == nil {
		return
	}
	m.failures.WithLabelValues(operation, Reason(err)).Inc()
}

// CommitConflict counts a commit rejected by a concurrent update.
func (m *Metrics) CommitConflict(operation string) {
	if m == nil {
		return
	}
	m.conflicts.WithLabelValues(operation).Inc()
}

// ObserveCommit records how long a commit took.
func (m *Metrics) ObserveCommit(operation string, d time.Duration) {
	if m == nil {
		return
	}
	m.commitDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// Reason maps an error onto a low-cardinality label.
func Reason(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrInvalidValue):
		return "invalid"
	case errors.Is(err, apperrors.ErrUnbalancedEntry):
		return "unbalanced"
	case errors.Is(err, apperrors.ErrCurrencyMismatch):
		return "currency"
	case errors.Is(err, apperrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, apperrors.ErrDuplicate):
		return "duplicate"
	case errors.Is(err, apperrors.ErrConflict):
		return "conflict"
	case errors.Is(err, apperrors.ErrPersistence):
		return "persistence"
	default:
		return "other"
	}
}
