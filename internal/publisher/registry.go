package publisher

import (
	"fmt"

	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
	"github.com/prometheus/client_golang/prometheus"
)

type family struct {
	help   string
	labels []string
}

var families = map[string]family{
	stats.JobsMetric: {
		help:   "Total count of Nuvla jobs",
		labels: []string{stats.LabelState, stats.LabelExecutionMode},
	},
	stats.PushJobsDurationMetric: {
		help:   "Moving duration stats of executed Nuvla jobs",
		labels: []string{stats.LabelAggregation},
	},
	stats.PullJobsDurationMetric: {
		help:   "Moving duration stats of executed Nuvla jobs",
		labels: []string{stats.LabelAggregation},
	},
}

// Registry builds a fresh registry holding one gauge per snapshot point.
// Metric families without points are not registered.
func Registry(snap *stats.Snapshot) (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if snap == nil {
		return reg, nil
	}

	vecs := make(map[string]*prometheus.GaugeVec)
	for _, m := range snap.Metrics {
		vec, ok := vecs[m.Name]
		if !ok {
			fam, known := families[m.Name]
			if !known {
				return nil, fmt.Errorf("unknown metric %q", m.Name)
			}
			vec = prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Name: m.Name,
				Help: fam.help,
			}, fam.labels)
			if err := reg.Register(vec); err != nil {
				return nil, fmt.Errorf("failed to register %s: %w", m.Name, err)
			}
			vecs[m.Name] = vec
		}
		gauge, err := vec.GetMetricWith(prometheus.Labels(m.Labels))
		if err != nil {
			return nil, fmt.Errorf("invalid labels for %s: %w", m.Name, err)
		}
		gauge.Set(m.Value)
	}
	return reg, nil
}
