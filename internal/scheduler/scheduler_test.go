package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/metrics"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/publisher"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectorFunc adapts a function to the Collector interface.
type collectorFunc func(ctx context.Context, snap *stats.Snapshot) map[string]error

func (f collectorFunc) Collect(ctx context.Context, snap *stats.Snapshot) map[string]error {
	return f(ctx, snap)
}

type advancer interface {
	Advance(d time.Duration)
}

// slowCollector adds one count point and takes d on the fake clock.
func slowCollector(clock advancer, d time.Duration) Collector {
	return collectorFunc(func(ctx context.Context, snap *stats.Snapshot) map[string]error {
		clock.Advance(d)
		snap.Add(stats.Metric{
			Name:   stats.JobsMetric,
			Labels: map[string]string{stats.LabelState: "SUCCESS", stats.LabelExecutionMode: stats.NotApplicable},
			Value:  10,
		})
		return map[string]error{}
	})
}

func TestNextSleep(t *testing.T) {
	tests := []struct {
		name     string
		period   time.Duration
		elapsed  time.Duration
		expected time.Duration
	}{
		{"short cycle", 30 * time.Second, 5 * time.Second, 25 * time.Second},
		{"cycle longer than period", 30 * time.Second, 35 * time.Second, 0},
		{"cycle as long as period", 30 * time.Second, 30 * time.Second, 0},
		{"partial seconds are floored", 30 * time.Second, 5900 * time.Millisecond, 25 * time.Second},
		{"instant cycle", 30 * time.Second, 0, 30 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NextSleep(tt.period, tt.elapsed))
		})
	}
}

func TestRunCycle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pub := publisher.NewMock()
	metr := metrics.NewMock()
	s := New(slowCollector(clock, 5*time.Second), pub, metr, 30*time.Second, WithClock(clock))

	report := s.RunCycle(context.Background())

	assert.NotEmpty(t, report.ID)
	assert.Equal(t, 5*time.Second, report.Elapsed)
	assert.Equal(t, 1, report.Points)
	assert.NoError(t, report.PublishErr)
	require.Len(t, pub.Calls(), 1)
	assert.Equal(t, 1, pub.Calls()[0].Len())
	assert.Equal(t, 1, metr.Cycles())
	assert.Equal(t, []float64{5}, metr.CycleDurations())
	assert.Equal(t, 25*time.Second, NextSleep(30*time.Second, report.Elapsed))
}

func TestRunCycle_TotalFailureStillPublishesOnce(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pub := publisher.NewMock()
	collector := collectorFunc(func(ctx context.Context, snap *stats.Snapshot) map[string]error {
		return map[string]error{
			"job-counts":         errors.New("down"),
			"push-job-durations": errors.New("down"),
			"pull-job-durations": errors.New("down"),
		}
	})
	s := New(collector, pub, metrics.NewMock(), 30*time.Second, WithClock(clock))

	report := s.RunCycle(context.Background())

	assert.Len(t, report.Failures, 3)
	require.Len(t, pub.Calls(), 1, "the publisher is invoked exactly once")
	assert.Equal(t, 0, pub.Calls()[0].Len(), "with an empty snapshot")
}

func TestRunCycle_PublishFailureIsRecoverable(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pub := publisher.NewMock()
	pubErr := errors.New("gateway unreachable")
	pub.PublishFunc = func(snap *stats.Snapshot) error { return pubErr }
	metr := metrics.NewMock()
	s := New(slowCollector(clock, time.Second), pub, metr, 30*time.Second, WithClock(clock))

	report := s.RunCycle(context.Background())

	assert.ErrorIs(t, report.PublishErr, pubErr)
	assert.Equal(t, 1, metr.PublishFailures())
	assert.Equal(t, time.Second, report.Elapsed, "timing still comes from the failed cycle")
}

func TestRunCycle_FreshSnapshotEachCycle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pub := publisher.NewMock()
	s := New(slowCollector(clock, time.Second), pub, metrics.NewMock(), 30*time.Second, WithClock(clock))

	s.RunCycle(context.Background())
	s.RunCycle(context.Background())

	calls := pub.Calls()
	require.Len(t, calls, 2)
	assert.NotSame(t, calls[0], calls[1])
	assert.Equal(t, 1, calls[0].Len(), "points do not accumulate across cycles")
	assert.Equal(t, 1, calls[1].Len())
	assert.True(t, calls[1].CreatedAt.After(calls[0].CreatedAt))
}

func TestRun_SleepsForTheRestOfThePeriod(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pub := publisher.NewMock()
	s := New(slowCollector(clock, 5*time.Second), pub, metrics.NewMock(), 30*time.Second, WithClock(clock))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()

	// First cycle took 5s: the loop now sleeps 25s.
	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	assert.Len(t, pub.Calls(), 1)

	clock.Advance(24 * time.Second)
	assert.Len(t, pub.Calls(), 1, "the next cycle must not start before the period is over")

	clock.Advance(time.Second)
	require.Eventually(t, func() bool { return len(pub.Calls()) == 2 }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, clock.BlockUntilContext(waitCtx, 1))
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func TestRun_LongCycleStartsNextImmediately(t *testing.T) {
	clock := clockwork.NewFakeClock()
	pub := publisher.NewMock()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cycles := 0
	collector := collectorFunc(func(_ context.Context, snap *stats.Snapshot) map[string]error {
		cycles++
		clock.Advance(35 * time.Second)
		if cycles == 2 {
			cancel()
		}
		return map[string]error{}
	})
	s := New(collector, pub, metrics.NewMock(), 30*time.Second, WithClock(clock))

	// No clock advance is needed between the two cycles: the sleep is zero.
	err := s.Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, cycles)
	assert.Len(t, pub.Calls(), 2)
}

func TestNew_DefaultPeriod(t *testing.T) {
	s := New(collectorFunc(nil), publisher.NewMock(), metrics.NewMock(), 0)
	assert.Equal(t, DefaultPeriod, s.period)
}

func TestLastCycle(t *testing.T) {
	clock := clockwork.NewFakeClock()
	s := New(slowCollector(clock, 2*time.Second), publisher.NewMock(), metrics.NewMock(), 30*time.Second, WithClock(clock))

	_, ok := s.LastCycle()
	assert.False(t, ok, "no cycle has run yet")

	report := s.RunCycle(context.Background())
	last, ok := s.LastCycle()
	require.True(t, ok)
	assert.Equal(t, report.ID, last.ID)
	assert.Equal(t, 2*time.Second, last.Elapsed)
}
