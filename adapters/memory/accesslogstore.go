package memory

import (
	"context"
	"sync"

	"mediavault/domain/asset"
	"mediavault/domain/bandwidth"
	"mediavault/ports"
)

// AccessLogStore is an in-memory implementation of ports.AccessLogStore.
// Aggregation runs in-process through the pure domain reducers, which
// keeps it behaviorally identical to the SQL adapter.
type AccessLogStore struct {
	mu      sync.RWMutex
	records []bandwidth.Record
}

// NewAccessLogStore creates a new in-memory access-log store.
func NewAccessLogStore() *AccessLogStore {
	return &AccessLogStore{}
}

// RecordBatch appends log records.
func (s *AccessLogStore) RecordBatch(ctx context.Context, records []bandwidth.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = append(s.records, records...)
	return nil
}

// Totals aggregates matching records under the standard classification.
func (s *AccessLogStore) Totals(ctx context.Context, f ports.LogFilter) (bandwidth.Totals, error) {
	return bandwidth.Sum(s.matching(f)), nil
}

// TotalsByAssetID aggregates records by asset reference with the narrow
// hit rule.
func (s *AccessLogStore) TotalsByAssetID(ctx context.Context, assetID string) (bandwidth.AssetTotals, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []bandwidth.Record
	for _, r := range s.records {
		if r.AssetID == assetID {
			matched = append(matched, r)
		}
	}
	return bandwidth.SumForAsset(matched), nil
}

// GroupByPeriod buckets matching records by calendar period.
func (s *AccessLogStore) GroupByPeriod(ctx context.Context, f ports.LogFilter, g bandwidth.Granularity) ([]bandwidth.Bucket, error) {
	return bandwidth.GroupByPeriod(s.matching(f), g), nil
}

func (s *AccessLogStore) matching(f ports.LogFilter) []bandwidth.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []bandwidth.Record
	for _, r := range s.records {
		if f.AssetID != "" {
			if r.AssetID != f.AssetID {
				continue
			}
		} else if !asset.MatchesAnyPath(f.Keys, r.Path) {
			continue
		}
		if f.Start != nil && r.Timestamp.Before(*f.Start) {
			continue
		}
		if f.End != nil && r.Timestamp.After(*f.End) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

// Ensure interface compliance.
var _ ports.AccessLogStore = (*AccessLogStore)(nil)
