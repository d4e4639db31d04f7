package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Error stages used as the "stage" label of ErrorsTotal.
const (
	StageMesh      = "mesh"
	StageAttribute = "attribute"
	StageVerify    = "verify"
	StageOutput    = "output"
)

// Metrics holds the Prometheus collectors for a Manning's n edit run.
type Metrics struct {
	MeshNodes      prometheus.Gauge
	RecordsScanned prometheus.Counter
	NodesModified  prometheus.Counter
	ErrorsTotal    *prometheus.CounterVec // labels: stage={mesh,attribute,verify,output}

	RewriteDuration prometheus.Histogram

	ReportsPublished *prometheus.CounterVec // labels: sink, outcome={success,error}
}

// NewMetrics creates all run metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := newMetrics()
	reg.MustRegister(
		m.MeshNodes,
		m.RecordsScanned,
		m.NodesModified,
		m.ErrorsTotal,
		m.RewriteDuration,
		m.ReportsPublished,
	)
	return m
}

// NewMetricsForTesting creates Metrics that are not registered anywhere, so
// tests can build as many as they like.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		MeshNodes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mannings",
			Name:      "mesh_nodes",
			Help:      "Number of nodes loaded from the fort.14 mesh.",
		}),
		RecordsScanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mannings",
			Name:      "records_scanned_total",
			Help:      "Per-node Manning's n records read from the fort.13 block.",
		}),
		NodesModified: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mannings",
			Name:      "nodes_modified_total",
			Help:      "Per-node Manning's n records rewritten.",
		}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mannings",
			Name:      "errors_total",
			Help:      "Run failures by stage.",
		}, []string{"stage"}),
		RewriteDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mannings",
			Name:      "rewrite_duration_seconds",
			Help:      "Duration of a complete load-rewrite-rename cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		}),
		ReportsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mannings",
			Name:      "reports_published_total",
			Help:      "Run reports handed to sinks by sink and outcome.",
		}, []string{"sink", "outcome"}),
	}
}
