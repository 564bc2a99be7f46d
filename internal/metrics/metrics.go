package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Outcome labels.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds Prometheus metrics for the dashboard engine.
type Metrics struct {
	// Analytics refresh, one series per view
	FetchesTotal  *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	// Upload, reset, chat and snapshot runs
	WorkflowsTotal *prometheus.CounterVec

	// Size of the current transaction list
	Transactions prometheus.Gauge
}

// New creates and registers the dashboard metrics once per process.
//
// Metrics:
//   - dashboard_fetches_total{view,outcome} - analytics view fetches
//   - dashboard_fetch_duration_seconds{view} - analytics view fetch latency
//   - dashboard_workflows_total{workflow,outcome} - upload/reset/chat/snapshot runs
//   - dashboard_transactions - transactions currently held
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			FetchesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dashboard_fetches_total",
					Help: "Total number of analytics view fetches",
				},
				[]string{"view", "outcome"},
			),
			FetchDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "dashboard_fetch_duration_seconds",
					Help:    "Duration of analytics view fetches in seconds",
					Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				},
				[]string{"view"},
			),
			WorkflowsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "dashboard_workflows_total",
					Help: "Total number of upload, reset, chat and snapshot runs",
				},
				[]string{"workflow", "outcome"},
			),
			Transactions: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "dashboard_transactions",
					Help: "Number of transactions currently held by the dashboard",
				},
			),
		}
	})
	return globalMetrics
}

// ObserveFetch records one analytics view fetch.
func (m *Metrics) ObserveFetch(view string, err error, elapsed time.Duration) {
	m.FetchesTotal.WithLabelValues(view, outcome(err)).Inc()
	m.FetchDuration.WithLabelValues(view).Observe(elapsed.Seconds())
}

// ObserveWorkflow records one workflow run.
func (m *Metrics) ObserveWorkflow(workflow string, err error) {
	m.WorkflowsTotal.WithLabelValues(workflow, outcome(err)).Inc()
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

func outcome(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
