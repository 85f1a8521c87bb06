package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config holds configuration for the Prometheus metrics.
type Config struct {
	// Namespace prefixes every metric name.
	Namespace string `mapstructure:"namespace" default:"travel_ops"`
	// Path is where the scrape endpoint is mounted.
	Path string `mapstructure:"path" default:"/metrics"`
}

// Metrics holds all prometheus metrics.
type Metrics struct {
	Reconciliations  *prometheus.CounterVec
	DepartureActions *prometheus.CounterVec
	Migrations       *prometheus.CounterVec
	SnapshotWrites   *prometheus.CounterVec
	ReconcileTime    prometheus.Histogram

	gatherer prometheus.Gatherer
}

// New registers the metrics on reg. Pass prometheus.NewRegistry() in tests to
// avoid duplicate registration on the default registry.
func New(namespace string, reg *prometheus.Registry) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Reconciliations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciliations_total",
			Help:      "Flight list reconciliations by source and outcome (changed, unchanged).",
		}, []string{"source", "outcome"}),
		DepartureActions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "departure_actions_total",
			Help:      "Departure create, update and delete actions applied.",
		}, []string{"source", "type"}),
		Migrations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_migrations_total",
			Help:      "Snapshot migrations applied, by migration name.",
		}, []string{"migration"}),
		SnapshotWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "snapshot_writes_total",
			Help:      "Snapshot persistence attempts by result.",
		}, []string{"result"}),
		ReconcileTime: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "reconcile_duration_seconds",
			Help:      "Time taken to plan and apply a reconciliation.",
			Buckets:   prometheus.DefBuckets,
		}),
		gatherer: reg,
	}
}

// NewNop returns metrics on a private registry, for tests and CLI runs.
func NewNop() *Metrics {
	return New("travel_ops", prometheus.NewRegistry())
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{}))
}
