package metrics

import "github.com/prometheus/client_golang/prometheus"

// Service holds all the Prometheus metrics describing the scraper itself.
type Service struct {
	Cycles            prometheus.Counter
	OperationFailures *prometheus.CounterVec
	PublishFailures   prometheus.Counter
	CycleDuration     prometheus.Histogram
	StartupTime       prometheus.Gauge
}
