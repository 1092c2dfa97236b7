package publisher

import (
	"context"

	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
)

// Publisher transmits a completed snapshot. A snapshot is either accepted as a whole
// or Publish returns an error; nothing is retried or queued.
type Publisher interface {
	Publish(ctx context.Context, snap *stats.Snapshot) error
}
