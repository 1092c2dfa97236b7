package nuvla

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized is returned when the API rejects the session or the API key.
	ErrUnauthorized = errors.New("nuvla: unauthorized")
	// ErrMissingAggregation is returned when a requested aggregation is absent or null in a search response.
	ErrMissingAggregation = errors.New("nuvla: missing aggregation")
)

// SearchParams defines the parameters of a search over a Nuvla collection.
type SearchParams struct {
	// Filter is a CIMI filter expression, e.g. `state="SUCCESS" and created>="now-12h"`.
	Filter string
	// Aggregation is a comma separated list of <function>:<field> pairs.
	Aggregation string
	// Last limits the number of returned resources. 0 returns aggregations only.
	Last int
}

// SearchResult is the decoded body of a search response.
// Aggregations are kept raw and decoded on demand with Terms, Value and Percentiles.
type SearchResult struct {
	Count        int64                      `json:"count"`
	Aggregations map[string]json.RawMessage `json:"aggregations"`
}

// TermsAggregation is the payload of a terms:<field> aggregation.
type TermsAggregation struct {
	Buckets []Bucket `json:"buckets"`
}

// Bucket is one term of a terms aggregation.
type Bucket struct {
	Key      string `json:"key"`
	DocCount int64  `json:"doc_count"`
}

type valueAggregation struct {
	Value *float64 `json:"value"`
}

type percentilesAggregation struct {
	Values map[string]*float64 `json:"values"`
}

func (r *SearchResult) raw(name string) (json.RawMessage, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: %s (empty result)", ErrMissingAggregation, name)
	}
	raw, ok := r.Aggregations[name]
	if !ok || len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("%w: %s", ErrMissingAggregation, name)
	}
	return raw, nil
}

// Terms decodes the terms aggregation with the given name.
func (r *SearchResult) Terms(name string) (TermsAggregation, error) {
	raw, err := r.raw(name)
	if err != nil {
		return TermsAggregation{}, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return TermsAggregation{}, fmt.Errorf("failed to decode aggregation %s: %w", name, err)
	}
	if _, ok := fields["buckets"]; !ok {
		return TermsAggregation{}, fmt.Errorf("%w: %s.buckets", ErrMissingAggregation, name)
	}
	var terms TermsAggregation
	if err := json.Unmarshal(raw, &terms); err != nil {
		return TermsAggregation{}, fmt.Errorf("failed to decode aggregation %s: %w", name, err)
	}
	return terms, nil
}

// Value decodes a single-value aggregation (avg, max, min, sum...).
// A null value, which the API returns when no document matched, is reported as missing.
func (r *SearchResult) Value(name string) (float64, error) {
	raw, err := r.raw(name)
	if err != nil {
		return 0, err
	}
	var agg valueAggregation
	if err := json.Unmarshal(raw, &agg); err != nil {
		return 0, fmt.Errorf("failed to decode aggregation %s: %w", name, err)
	}
	if agg.Value == nil {
		return 0, fmt.Errorf("%w: %s.value", ErrMissingAggregation, name)
	}
	return *agg.Value, nil
}

// Percentiles decodes a percentiles aggregation, keyed by percentile ("1.0", "50.0"...).
// Null percentiles are left out of the returned map.
func (r *SearchResult) Percentiles(name string) (map[string]float64, error) {
	raw, err := r.raw(name)
	if err != nil {
		return nil, err
	}
	var agg percentilesAggregation
	if err := json.Unmarshal(raw, &agg); err != nil {
		return nil, fmt.Errorf("failed to decode aggregation %s: %w", name, err)
	}
	if agg.Values == nil {
		return nil, fmt.Errorf("%w: %s.values", ErrMissingAggregation, name)
	}
	values := make(map[string]float64, len(agg.Values))
	for k, v := range agg.Values {
		if v != nil {
			values[k] = *v
		}
	}
	return values, nil
}
