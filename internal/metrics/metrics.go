// Package metrics provides Prometheus instrumentation for the settlement engine.
package metrics

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SettlementsTotal counts settlement previews, partitioned by balance status.
	SettlementsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_settlements_total",
		Help: "Total number of settlements computed",
	}, []string{"status"})

	// SettlementsCommitted counts settlements written to the ledger.
	SettlementsCommitted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_settlements_committed_total",
		Help: "Settlements committed to the ledger",
	})

	// BalanceResidual tracks the absolute residual of computed settlements.
	BalanceResidual = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "poker_balance_residual_points",
		Help:    "Absolute balance residual of computed settlements, in points",
		Buckets: []float64{0, 0.1, 1, 10, 100, 500, 1000, 5000},
	})

	// LedgerRecordsAppended counts rows appended to the ledger.
	LedgerRecordsAppended = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_ledger_records_appended_total",
		Help: "Ledger records appended",
	})

	// LedgerPurges counts full ledger purges.
	LedgerPurges = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_ledger_purges_total",
		Help: "Full ledger purges",
	})

	// LedgerCorruptReads counts reads that found unparseable data and fell
	// back to an empty ledger.
	LedgerCorruptReads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "poker_ledger_corrupt_reads_total",
		Help: "Ledger reads that hit corrupt data",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "poker_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "poker_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "poker_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		HTTPRequestsTotal.WithLabelValues(r.Method, routePattern(r), strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, routePattern(r)).Observe(duration)
	})
}

// unmatchedRoute labels requests that hit no registered route.
const unmatchedRoute = "unmatched"

// routePattern uses the matched chi route (e.g. /settlements/{previewID}/commit)
// so preview ids do not blow up label cardinality.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return unmatchedRoute
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// Hijack lets WebSocket upgrades pass through the middleware.
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("metrics: response writer does not support hijacking")
	}
	w.status = http.StatusSwitchingProtocols
	return h.Hijack()
}
