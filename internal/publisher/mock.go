package publisher

import (
	"context"
	"sync"

	"github.com/mauv0809/nuvla-job-stats-scraper/internal/stats"
)

// Mock is a mock implementation of the Publisher interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	// Spies for method calls
	PublishFunc func(snap *stats.Snapshot) error

	// Call records
	PublishCalls []*stats.Snapshot
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

func (m *Mock) Publish(ctx context.Context, snap *stats.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PublishCalls = append(m.PublishCalls, snap)
	if m.PublishFunc != nil {
		return m.PublishFunc(snap)
	}
	return nil
}

// Calls returns the snapshots published so far.
func (m *Mock) Calls() []*stats.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*stats.Snapshot(nil), m.PublishCalls...)
}
