package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// catalog fetch, station selection, and UP.DAT export stages.
type Metrics struct {
	StationsListed    prometheus.Gauge
	ListFetchErrors   prometheus.Counter
	ListFetchDuration prometheus.Histogram

	SelectionQueries *prometheus.CounterVec // labels: mode, outcome

	ProfilesFetched      prometheus.Counter
	ProfileFetchErrors   prometheus.Counter
	ProfileFetchDuration prometheus.Histogram

	Exports        *prometheus.CounterVec // labels: outcome={success,error}
	ExportDuration prometheus.Histogram
	ExportedLevels prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(
		m.StationsListed,
		m.ListFetchErrors,
		m.ListFetchDuration,
		m.SelectionQueries,
		m.ProfilesFetched,
		m.ProfileFetchErrors,
		m.ProfileFetchDuration,
		m.Exports,
		m.ExportDuration,
		m.ExportedLevels,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them, avoiding
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		StationsListed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "upperair",
			Name:      "stations_listed",
			Help:      "Number of stations in the most recently loaded catalog.",
		}),
		ListFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "upperair",
			Name:      "station_list_fetch_errors_total",
			Help:      "Total failed station listing fetches.",
		}),
		ListFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "upperair",
			Name:      "station_list_fetch_duration_seconds",
			Help:      "Duration of station listing fetch and parse.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		SelectionQueries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upperair",
			Name:      "selection_queries_total",
			Help:      "Station selection queries by mode and outcome.",
		}, []string{"mode", "outcome"}),
		ProfilesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "upperair",
			Name:      "profiles_fetched_total",
			Help:      "Total sounding profiles retrieved from the archive.",
		}),
		ProfileFetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "upperair",
			Name:      "profile_fetch_errors_total",
			Help:      "Total failed sounding fetches.",
		}),
		ProfileFetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "upperair",
			Name:      "profile_fetch_duration_seconds",
			Help:      "Duration of sounding fetch and parse per station.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
		Exports: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "upperair",
			Name:      "exports_total",
			Help:      "UP.DAT export attempts by outcome.",
		}, []string{"outcome"}),
		ExportDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "upperair",
			Name:      "export_duration_seconds",
			Help:      "Duration of a complete UP.DAT export.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}),
		ExportedLevels: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "upperair",
			Name:      "exported_levels_total",
			Help:      "Total level records written to UP.DAT files.",
		}),
	}
}
