package scraper

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/aluiziolira/go-scrape-bestsellers/config"
)

const (
	pageList   = "list"
	pageDetail = "detail"
)

// Metrics bundles the scraper collectors. Every series carries a "page"
// label ("list" or "detail") so listing and product-page traffic can be
// told apart.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ProductsTotal   *prometheus.CounterVec
	RetriesTotal    *prometheus.CounterVec
	ErrorsTotal     *prometheus.CounterVec
}

// NewMetrics builds the scraper collectors, registering them on reg when it
// is non-nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	opts := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{
			Namespace: config.MetricsNamespace,
			Subsystem: "scraper",
			Name:      name,
			Help:      help,
		}
	}

	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			opts("requests_total", "HTTP requests issued by the scraper."),
			[]string{"page"},
		),
		RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: config.MetricsNamespace,
			Subsystem: "scraper",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"page"}),
		ProductsTotal: factory.NewCounterVec(
			opts("products_total", "Products handed to the pipeline, by the page that completed them."),
			[]string{"page"},
		),
		RetriesTotal: factory.NewCounterVec(
			opts("retries_total", "Retry attempts scheduled."),
			[]string{"page"},
		),
		ErrorsTotal: factory.NewCounterVec(
			opts("errors_total", "Failed requests by error type."),
			[]string{"page", "error_type"},
		),
	}
}

func (m *Metrics) IncRequest(page string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(page).Inc()
}

func (m *Metrics) ObserveDuration(page string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestDuration.WithLabelValues(page).Observe(d.Seconds())
}

func (m *Metrics) IncProducts(page string) {
	if m == nil {
		return
	}
	m.ProductsTotal.WithLabelValues(page).Inc()
}

func (m *Metrics) IncRetries(page string) {
	if m == nil {
		return
	}
	m.RetriesTotal.WithLabelValues(page).Inc()
}

func (m *Metrics) IncError(page, errorType string) {
	if m == nil {
		return
	}
	m.ErrorsTotal.WithLabelValues(page, errorType).Inc()
}
