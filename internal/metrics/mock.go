package metrics

import "sync"

// Mock is a mock implementation of the Metrics interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu                sync.Mutex
	cycles            int
	operationFailures map[string]int
	publishFailures   int
	cycleDurations    []float64
	startupTime       float64
}

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{
		operationFailures: make(map[string]int),
		cycleDurations:    make([]float64, 0),
	}
}

func (m *Mock) IncCycles() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycles++
}

func (m *Mock) IncOperationFailures(operation string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operationFailures[operation]++
}

func (m *Mock) IncPublishFailures() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.publishFailures++
}

func (m *Mock) ObserveCycleDuration(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cycleDurations = append(m.cycleDurations, duration)
}

func (m *Mock) SetStartupTime(duration float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.startupTime = duration
}

// Cycles returns the number of times IncCycles was called.
func (m *Mock) Cycles() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cycles
}

// OperationFailures returns the number of failures recorded for an operation.
func (m *Mock) OperationFailures(operation string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.operationFailures[operation]
}

// PublishFailures returns the number of times IncPublishFailures was called.
func (m *Mock) PublishFailures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.publishFailures
}

// CycleDurations returns every observed cycle duration, in seconds.
func (m *Mock) CycleDurations() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]float64(nil), m.cycleDurations...)
}
