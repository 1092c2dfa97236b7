package publisher

import (
	"context"
	"fmt"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
	"github.com/prometheus/client_golang/prometheus/push"
)

// JobName groups the pushed metrics on the gateway. Each push replaces the previous one.
const JobName = "nuvla-job-stats-scraper"

// Pushgateway publishes snapshots to a Prometheus Pushgateway.
type Pushgateway struct {
	url        string
	job        string
	httpClient *http.Client
}

// Ensure Pushgateway implements the Publisher interface.
var _ Publisher = (*Pushgateway)(nil)

// NewPushgateway creates a publisher for the gateway at url, e.g. "localhost:9091".
func NewPushgateway(url, job string, httpClient *http.Client) *Pushgateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Pushgateway{
		url:        url,
		job:        job,
		httpClient: httpClient,
	}
}

// Publish replaces everything previously pushed under the job with the snapshot, empty or not.
func (p *Pushgateway) Publish(ctx context.Context, snap *stats.Snapshot) error {
	reg, err := Registry(snap)
	if err != nil {
		return fmt.Errorf("failed to build registry: %w", err)
	}

	pusher := push.New(p.url, p.job).Gatherer(reg).Client(p.httpClient)
	if err := pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push to %s: %w", p.url, err)
	}
	log.Info("Pushed snapshot to gateway", "gateway", p.url, "job", p.job, "points", snap.Len())
	return nil
}
