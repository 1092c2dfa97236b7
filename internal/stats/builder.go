package stats

import (
	"fmt"

	"github.com/mauv0809/nuvla-job-stats-scraper/internal/nuvla"
)

// CountPoints maps a job count search result to nuvla_jobs points.
//
// Each state bucket becomes (state=<key>, execution_mode=na) and each execution-mode
// bucket becomes (state=na, execution_mode=<key>). States and modes are reported
// independently; no cross product is computed.
func CountPoints(result *nuvla.SearchResult) ([]Metric, error) {
	states, err := result.Terms(StateTermsAggregation)
	if err != nil {
		return nil, err
	}
	modes, err := result.Terms(ModeTermsAggregation)
	if err != nil {
		return nil, err
	}

	points := make([]Metric, 0, len(states.Buckets)+len(modes.Buckets))
	for _, b := range states.Buckets {
		points = append(points, countPoint(b.Key, NotApplicable, b.DocCount))
	}
	for _, b := range modes.Buckets {
		points = append(points, countPoint(NotApplicable, b.Key, b.DocCount))
	}
	return points, nil
}

func countPoint(state, mode string, count int64) Metric {
	return Metric{
		Name: JobsMetric,
		Labels: map[string]string{
			LabelState:         state,
			LabelExecutionMode: mode,
		},
		Value: float64(count),
	}
}

// DurationPoints maps a job duration search result to the nine points of the mode's
// duration metric. Any missing value fails the whole mapping: a partial set of
// duration points is never returned.
func DurationPoints(mode ExecutionMode, result *nuvla.SearchResult) ([]Metric, error) {
	avg, err := result.Value(AvgDurationAggregation)
	if err != nil {
		return nil, err
	}
	maxDuration, err := result.Value(MaxDurationAggregation)
	if err != nil {
		return nil, err
	}
	percentiles, err := result.Percentiles(PercentilesDurationAggregation)
	if err != nil {
		return nil, err
	}

	name := mode.MetricName()
	points := make([]Metric, 0, len(durationAggregations))
	for _, agg := range durationAggregations {
		var value float64
		switch agg.label {
		case "average-job-duration":
			value = avg
		case "max-job-duration":
			value = maxDuration
		default:
			v, ok := percentiles[agg.percentile]
			if !ok {
				return nil, fmt.Errorf("%w: %s.values[%s]", nuvla.ErrMissingAggregation, PercentilesDurationAggregation, agg.percentile)
			}
			value = v
		}
		points = append(points, Metric{
			Name:   name,
			Labels: map[string]string{LabelAggregation: agg.label},
			Value:  value,
		})
	}
	return points, nil
}
