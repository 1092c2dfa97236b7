package collector

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/metrics"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/nuvla"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
)

// Names of the collection operations, used in logs and failure maps.
const (
	OpJobCounts        = "job-counts"
	OpPushJobDurations = "push-job-durations"
	OpPullJobDurations = "pull-job-durations"
)

const (
	jobResource         = "job"
	durationWindow      = "now-12h"
	countsAggregation   = stats.StateTermsAggregation + "," + stats.ModeTermsAggregation
	durationAggregation = stats.AvgDurationAggregation + "," + stats.MaxDurationAggregation + "," + stats.PercentilesDurationAggregation
)

// Collector queries the job API and turns the results into snapshot points.
type Collector struct {
	client  nuvla.JobSearcher
	metrics metrics.Metrics
}

// New creates a new Collector.
func New(client nuvla.JobSearcher, metrics metrics.Metrics) *Collector {
	return &Collector{
		client:  client,
		metrics: metrics,
	}
}

type operation struct {
	name string
	run  func(ctx context.Context) ([]stats.Metric, error)
}

func (c *Collector) operations() []operation {
	return []operation{
		{name: OpJobCounts, run: c.CollectJobCounts},
		{name: OpPushJobDurations, run: func(ctx context.Context) ([]stats.Metric, error) {
			return c.CollectJobDurations(ctx, stats.ModePush)
		}},
		{name: OpPullJobDurations, run: func(ctx context.Context) ([]stats.Metric, error) {
			return c.CollectJobDurations(ctx, stats.ModePull)
		}},
	}
}

// Collect runs the three collection operations in order and adds their points to snap.
// A failing operation is logged and contributes nothing; the others still run.
// The returned map holds the error of every failed operation, keyed by operation name.
func (c *Collector) Collect(ctx context.Context, snap *stats.Snapshot) map[string]error {
	failures := make(map[string]error)
	for _, op := range c.operations() {
		points, err := op.run(ctx)
		if err != nil {
			log.Error("Collection operation failed", "operation", op.name, "error", err)
			c.metrics.IncOperationFailures(op.name)
			failures[op.name] = err
			continue
		}
		snap.Add(points...)
		log.Debug("Collection operation succeeded", "operation", op.name, "points", len(points))
	}
	return failures
}

// CollectJobCounts counts every job by state and by execution mode.
func (c *Collector) CollectJobCounts(ctx context.Context) ([]stats.Metric, error) {
	result, err := c.client.Search(ctx, jobResource, nuvla.SearchParams{
		Aggregation: countsAggregation,
		Last:        0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search job counts: %w", err)
	}
	points, err := stats.CountPoints(result)
	if err != nil {
		return nil, fmt.Errorf("failed to map job counts: %w", err)
	}
	return points, nil
}

// CollectJobDurations computes duration statistics of the jobs of one execution mode
// finished in the last 12 hours.
func (c *Collector) CollectJobDurations(ctx context.Context, mode stats.ExecutionMode) ([]stats.Metric, error) {
	result, err := c.client.Search(ctx, jobResource, nuvla.SearchParams{
		Filter:      DurationFilter(mode),
		Aggregation: durationAggregation,
		Last:        0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s job durations: %w", mode, err)
	}
	points, err := stats.DurationPoints(mode, result)
	if err != nil {
		return nil, fmt.Errorf("failed to map %s job durations: %w", mode, err)
	}
	return points, nil
}

// DurationFilter returns the job filter of a duration query.
func DurationFilter(mode stats.ExecutionMode) string {
	modeFilter := `execution-mode!="pull"`
	if mode == stats.ModePull {
		modeFilter = `execution-mode="pull"`
	}
	return fmt.Sprintf(`%s and created>="%s" and (state="FAILED" or state="SUCCESS")`, modeFilter, durationWindow)
}
