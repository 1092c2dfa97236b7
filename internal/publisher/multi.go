package publisher

import (
	"context"
	"errors"

	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
)

// Multi publishes a snapshot to several sinks, in order. Every sink is attempted;
// the errors of the failing ones are joined.
type Multi struct {
	publishers []Publisher
}

// Ensure Multi implements the Publisher interface.
var _ Publisher = (*Multi)(nil)

func NewMulti(publishers ...Publisher) *Multi {
	return &Multi{publishers: publishers}
}

func (m *Multi) Publish(ctx context.Context, snap *stats.Snapshot) error {
	var errs []error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, snap); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
