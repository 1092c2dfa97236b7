package metrics

// Metrics defines the interface for the scraper's own operational metrics.
// These are served on the ops endpoint and never pushed with a job statistics snapshot.
type Metrics interface {
	IncCycles()
	IncOperationFailures(operation string)
	IncPublishFailures()
	ObserveCycleDuration(duration float64)
	SetStartupTime(duration float64)
}
