package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/pubsub"
	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
)

// SnapshotMessage is the payload published on the Pub/Sub topic.
type SnapshotMessage struct {
	Job         string         `msgpack:"job"`
	CollectedAt time.Time      `msgpack:"collected_at"`
	Metrics     []stats.Metric `msgpack:"metrics"`
}

// PubSub publishes snapshots to a Google Cloud Pub/Sub topic.
type PubSub struct {
	client pubsub.PubSubClient
	topic  string
	job    string
}

// Ensure PubSub implements the Publisher interface.
var _ Publisher = (*PubSub)(nil)

// NewPubSub creates a publisher sending every snapshot as one message on topic.
func NewPubSub(client pubsub.PubSubClient, topic, job string) *PubSub {
	return &PubSub{
		client: client,
		topic:  topic,
		job:    job,
	}
}

func (p *PubSub) Publish(ctx context.Context, snap *stats.Snapshot) error {
	msg := SnapshotMessage{
		Job:     p.job,
		Metrics: make([]stats.Metric, 0),
	}
	if snap != nil {
		msg.CollectedAt = snap.CreatedAt
		msg.Metrics = snap.Metrics
	}
	if err := p.client.SendMessage(ctx, p.topic, msg); err != nil {
		return fmt.Errorf("failed to publish to topic %s: %w", p.topic, err)
	}
	log.Info("Published snapshot to topic", "topic", p.topic, "points", snap.Len())
	return nil
}
