package export

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aluiziolira/go-scrape-bestsellers/config"
)

// Metrics bundles the export collectors. Series share the scraper's
// namespace and its "error_type" label name.
type Metrics struct {
	FilesTotal            *prometheus.CounterVec
	LocationFailuresTotal *prometheus.CounterVec
	RowsTotal             *prometheus.CounterVec
}

// NewMetrics builds the export collectors, registering them on reg when it
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Subsystem: "export",
			Name:      name,
			Help:      help,
		}
	}

	return &Metrics{
		FilesTotal: factory.NewCounterVec(
			opts("files_total", "Export attempts by file format and result."),
			[]string{"format", "result"},
		),
		LocationFailuresTotal: factory.NewCounterVec(
			opts("location_failures_total", "Candidate directories that rejected the spreadsheet, by error type."),
			[]string{"error_type"},
		),
		RowsTotal: factory.NewCounterVec(
			opts("rows_total", "Rows written to export files."),
			[]string{"format"},
		),
	}
}

// IncFile counts one export outcome.
func (m *Metrics) IncFile(format, result string) {
	if m == nil {
		return
	}
	m.FilesTotal.WithLabelValues(format, result).Inc()
}

// IncLocationFailure counts a rejected candidate directory.
func (m *Metrics) IncLocationFailure(errorType string) {
	if m == nil {
		return
	}
	m.LocationFailuresTotal.WithLabelValues(errorType).Inc()
}

// AddRows adds n rows written in format.
func (m *Metrics) AddRows(format string, n int) {
	if m == nil {
		return
	}
	m.RowsTotal.WithLabelValues(format).Add(float64(n))
}
