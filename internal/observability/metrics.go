// Package observability wires the simulation's counters into Prometheus.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/talgya/tempest/internal/weather"
)

// Metrics holds the Prometheus collectors for the weather engine.
type Metrics struct {
	TicksTotal     prometheus.Counter
	UpdateDuration prometheus.Histogram
	QueryDuration  *prometheus.HistogramVec // label: query={wind,weather}
}

// NewMetrics creates and registers all engine metrics with the default
// Prometheus registry. The per-system gauges and counters read straight from
// the system's own stats, so they never drift from the simulation.
func NewMetrics(sys *weather.System) *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "ticks_total",
			Help:      "Total simulation ticks processed.",
		}),
		UpdateDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "tempest",
			Name:      "update_duration_seconds",
			Help:      "Duration of a complete simulation update pass.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		}),
		QueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "tempest",
			Name:      "query_duration_seconds",
			Help:      "Duration of point queries served over the API.",
			Buckets:   []float64{0.00001, 0.0001, 0.001, 0.01},
		}, []string{"query"}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.UpdateDuration,
		m.QueryDuration,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tempest",
			Name:      "active_storms",
			Help:      "Number of storms currently active.",
		}, func() float64 { return float64(sys.Stats().ActiveStorms) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tempest",
			Name:      "active_cells",
			Help:      "Number of weather cells currently active.",
		}, func() float64 { return float64(sys.Stats().ActiveCells) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "storms_spawned_total",
			Help:      "Total storms spawned since start.",
		}, func() float64 { return float64(sys.Stats().StormsSpawned) }),
		prometheus.NewCounterFunc(prometheus.CounterOpts{
			Namespace: "tempest",
			Name:      "storms_expired_total",
			Help:      "Total storms dissipated since start.",
		}, func() float64 { return float64(sys.Stats().StormsExpired) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "tempest",
			Name:      "wave_height_meters",
			Help:      "Current open-water wave height estimate.",
		}, sys.WaveHeight),
	)

	return m
}
