package nuvla

import (
	"context"
	"sync"
)

// MockClient is a mock implementation of the JobSearcher interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	SearchFunc func(resource string, params SearchParams) (*SearchResult, error)

	// Call records
	SearchCalls []SearchCall
}

// SearchCall holds the arguments for a call to Search.
type SearchCall struct {
	Resource string
	Params   SearchParams
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls = nil
}

func (m *MockClient) Search(ctx context.Context, resource string, params SearchParams) (*SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SearchCalls = append(m.SearchCalls, SearchCall{Resource: resource, Params: params})
	if m.SearchFunc != nil {
		return m.SearchFunc(resource, params)
	}
	return &SearchResult{}, nil
}
