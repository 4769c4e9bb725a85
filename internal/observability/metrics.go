package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters and histograms for archive loading,
// aggregation, map rendering, and summary publishing.
type Metrics struct {
	FilesLoaded  *prometheus.CounterVec // labels: outcome={success,not_found,error}
	RowsRead     prometheus.Counter
	LoadDuration prometheus.Histogram
	YearsSkipped prometheus.Counter

	MapsRendered       *prometheus.CounterVec // labels: outcome={rendered,empty,error}
	SummariesPublished prometheus.Counter
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()

	prometheus.MustRegister(
		m.FilesLoaded,
		m.RowsRead,
		m.LoadDuration,
		m.YearsSkipped,
		m.MapsRendered,
		m.SummariesPublished,
	)

	return m
}

// NewMetricsForTesting creates Metrics without registering them, to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		FilesLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "files_loaded_total",
			Help:      "Archive file load attempts by outcome.",
		}, []string{"outcome"}),
		RowsRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "rows_read_total",
			Help:      "Total accident rows parsed from archive files.",
		}),
		LoadDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fars",
			Name:      "load_duration_seconds",
			Help:      "Time to decompress and parse one archive file.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		YearsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "years_skipped_total",
			Help:      "Years dropped from multi-year requests because they failed to load.",
		}),
		MapsRendered: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "maps_rendered_total",
			Help:      "State map requests by outcome.",
		}, []string{"outcome"}),
		SummariesPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fars",
			Name:      "summaries_published_total",
			Help:      "Monthly summary cells written to the sink topic.",
		}),
	}
}
