package nuvla

import "context"

// JobSearcher defines the read-only part of the Nuvla API used to compute job statistics.
// This allows for mock implementations to be used in tests.
type JobSearcher interface {
	Search(ctx context.Context, resource string, params SearchParams) (*SearchResult, error)
}
