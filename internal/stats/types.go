package stats

import "time"

// Names of the metrics pushed to the gateway.
const (
	JobsMetric             = "nuvla_jobs"
	PushJobsDurationMetric = "nuvla_push_jobs_duration"
	PullJobsDurationMetric = "nuvla_pull_jobs_duration"
)

// Label names.
const (
	LabelState         = "state"
	LabelExecutionMode = "execution_mode"
	LabelAggregation   = "aggregation"
)

// NotApplicable fills the label of the dimension a count point does not report.
const NotApplicable = "na"

// Aggregations requested from the job API, named the way the API keys them in a response.
const (
	StateTermsAggregation          = "terms:state"
	ModeTermsAggregation           = "terms:execution-mode"
	AvgDurationAggregation         = "avg:duration"
	MaxDurationAggregation         = "max:duration"
	PercentilesDurationAggregation = "percentiles:duration"
)

// ExecutionMode splits duration statistics. Any mode other than pull is reported as push.
type ExecutionMode string

const (
	ModePush ExecutionMode = "push"
	ModePull ExecutionMode = "pull"
)

// MetricName returns the duration metric a mode is reported under.
func (m ExecutionMode) MetricName() string {
	if m == ModePull {
		return PullJobsDurationMetric
	}
	return PushJobsDurationMetric
}

// durationAggregation maps one aggregation label value to where it is read from.
// percentile is empty for the avg and max aggregations.
type durationAggregation struct {
	label      string
	percentile string
}

// durationAggregations lists the nine points of a duration metric, in publication order.
var durationAggregations = []durationAggregation{
	{label: "average-job-duration"},
	{label: "max-job-duration"},
	{label: "1-percent-duration", percentile: "1.0"},
	{label: "5-percent-duration", percentile: "5.0"},
	{label: "25-percent-duration", percentile: "25.0"},
	{label: "50-percent-duration", percentile: "50.0"},
	{label: "75-percent-duration", percentile: "75.0"},
	{label: "95-percent-duration", percentile: "95.0"},
	{label: "99-percent-duration", percentile: "99.0"},
}

// DurationAggregationLabels returns the aggregation label values of a duration metric.
func DurationAggregationLabels() []string {
	labels := make([]string, 0, len(durationAggregations))
	for _, a := range durationAggregations {
		labels = append(labels, a.label)
	}
	return labels
}

// Metric is a single labelled value.
type Metric struct {
	Name   string            `msgpack:"name"`
	Labels map[string]string `msgpack:"labels"`
	Value  float64           `msgpack:"value"`
}

// Snapshot holds the metrics computed during one collection cycle.
// A snapshot is never reused across cycles.
type Snapshot struct {
	CreatedAt time.Time
	Metrics   []Metric
}

// NewSnapshot creates an empty snapshot for a cycle started at createdAt.
func NewSnapshot(createdAt time.Time) *Snapshot {
	return &Snapshot{
		CreatedAt: createdAt,
		Metrics:   make([]Metric, 0),
	}
}

// Add appends points in order.
func (s *Snapshot) Add(points ...Metric) {
	s.Metrics = append(s.Metrics, points...)
}

// Len returns the number of points in the snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Metrics)
}

// ByName returns the points of one metric, in order.
func (s *Snapshot) ByName(name string) []Metric {
	var points []Metric
	for _, m := range s.Metrics {
		if m.Name == name {
			points = append(points, m)
		}
	}
	return points
}
