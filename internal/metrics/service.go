package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var _ Metrics = (*Service)(nil)

// NewMetricsHandler returns an http.Handler for the given Gatherer.
// If no gatherer is provided, it uses the default one.
func NewMetricsHandler(gatherer ...prometheus.Gatherer) http.Handler {
	gath := prometheus.DefaultGatherer
	if len(gatherer) > 0 {
		gath = gatherer[0]
	}
	return promhttp.HandlerFor(gath, promhttp.HandlerOpts{})
}

// NewService creates and registers the Prometheus metrics.
// If no registerer is provided, it uses the default Prometheus registerer.
func NewService(registerer ...prometheus.Registerer) *Service {
	reg := prometheus.DefaultRegisterer
	if len(registerer) > 0 {
		reg = registerer[0]
	}

	s := &Service{
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nuvla_scraper_cycles_total",
			Help: "The total number of collection cycles run.",
		}),
		OperationFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nuvla_scraper_operation_failures_total",
			Help: "The total number of failed collection operations, by operation.",
		}, []string{"operation"}),
		PublishFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nuvla_scraper_publish_failures_total",
			Help: "The total number of snapshots that could not be published.",
		}),
		CycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nuvla_scraper_cycle_duration_seconds",
			Help:    "The duration of a collection cycle, publish included.",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		StartupTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "nuvla_scraper_startup_duration_seconds",
			Help: "The duration of the application startup in seconds.",
		}),
	}

	reg.MustRegister(
		s.Cycles,
		s.OperationFailures,
		s.PublishFailures,
		s.CycleDuration,
		s.StartupTime,
	)

	return s
}

func (s *Service) IncCycles() {
	s.Cycles.Inc()
}

func (s *Service) IncOperationFailures(operation string) {
	s.OperationFailures.WithLabelValues(operation).Inc()
}

func (s *Service) IncPublishFailures() {
	s.PublishFailures.Inc()
}

func (s *Service) ObserveCycleDuration(duration float64) {
	s.CycleDuration.Observe(duration)
}

func (s *Service) SetStartupTime(duration float64) {
	s.StartupTime.Set(duration)
}
