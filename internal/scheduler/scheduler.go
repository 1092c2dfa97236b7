package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/metrics"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/publisher"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
)

// DefaultPeriod is the time between the start of two cycles.
const DefaultPeriod = 30 * time.Second

// Collector fills a snapshot and reports the operations that failed.
type Collector interface {
	Collect(ctx context.Context, snap *stats.Snapshot) map[string]error
}

// Scheduler runs collection cycles one after the other, forever.
type Scheduler struct {
	collector Collector
	publisher publisher.Publisher
	metrics   metrics.Metrics
	clock     clockwork.Clock
	period    time.Duration

	mu   sync.RWMutex
	last *CycleReport
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the real clock, for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Scheduler) {
		s.clock = clock
	}
}

// New creates a new Scheduler. A non-positive period falls back to DefaultPeriod.
func New(collector Collector, publisher publisher.Publisher, metrics metrics.Metrics, period time.Duration, opts ...Option) *Scheduler {
	if period <= 0 {
		period = DefaultPeriod
	}
	s := &Scheduler{
		collector: collector,
		publisher: publisher,
		metrics:   metrics,
		clock:     clockwork.NewRealClock(),
		period:    period,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CycleReport describes one finished cycle.
type CycleReport struct {
	ID         string
	Start      time.Time
	Elapsed    time.Duration
	Points     int
	Failures   map[string]error
	PublishErr error
}

// RunCycle collects a fresh snapshot and publishes it exactly once, whatever the
// number of failed operations.
func (s *Scheduler) RunCycle(ctx context.Context) CycleReport {
	report := CycleReport{
		ID:    uuid.NewString(),
		Start: s.clock.Now(),
	}
	logger := log.With("cycle_id", report.ID)
	logger.Debug("Starting collection cycle")

	snap := stats.NewSnapshot(report.Start)
	report.Failures = s.collector.Collect(ctx, snap)
	report.Points = snap.Len()

	if err := s.publisher.Publish(ctx, snap); err != nil {
		logger.Error("Failed to publish snapshot, dropping it", "error", err, "points", report.Points)
		s.metrics.IncPublishFailures()
		report.PublishErr = err
	}

	report.Elapsed = s.clock.Since(report.Start)
	s.metrics.IncCycles()
	s.metrics.ObserveCycleDuration(report.Elapsed.Seconds())

	s.mu.Lock()
	s.last = &report
	s.mu.Unlock()
	return report
}

// LastCycle returns the report of the most recent finished cycle. ok is false
// until the first cycle finished.
func (s *Scheduler) LastCycle() (report CycleReport, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.last == nil {
		return CycleReport{}, false
	}
	return *s.last, true
}

// Run alternates between running a cycle and sleeping for the rest of the period.
// It only returns when ctx is canceled, with ctx.Err(). A cycle in progress is
// allowed to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	log.Info("Starting scheduler", "period", s.period)
	for {
		report := s.RunCycle(ctx)
		sleep := NextSleep(s.period, report.Elapsed)
		log.Info("Collection cycle finished",
			"cycle_id", report.ID,
			"points", report.Points,
			"failed_operations", len(report.Failures),
			"published", report.PublishErr == nil,
			"elapsed", report.Elapsed,
			"sleep", sleep,
		)

		if sleep == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			log.Info("Scheduler stopped")
			return ctx.Err()
		case <-s.clock.After(sleep):
		}
	}
}

// NextSleep returns how long to wait before the next cycle: the period minus the
// whole seconds the cycle took, never negative.
func NextSleep(period, elapsed time.Duration) time.Duration {
	sleep := period - elapsed.Truncate(time.Second)
	if sleep < 0 {
		return 0
	}
	return sleep
}
