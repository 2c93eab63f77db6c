// Package bandwidth provides CDN access-log record types, edge-result
// classification and time-bucketed aggregation. All functions are pure -
// no side effects.
package bandwidth

import "time"

// Known edge result tags. The field is an open string: edge log pipelines
// have historically emitted numeric status codes here as well.
const (
	EdgeHit        = "Hit"
	EdgeMiss       = "Miss"
	EdgeError      = "Error"
	EdgeRefreshHit = "RefreshHit"
)

// Record is a single CDN access-log entry (immutable once written).
// AssetID is empty for records that predate asset linking.
type Record struct {
	ID           string
	AssetID      string
	Path         string
	Bytes        int64
	RequestBytes int64
	EdgeResult   string
	Distribution string
	Status       int
	ClientIP     string
	Country      string
	Timestamp    time.Time
}

// Class buckets an edge result into exactly one of hit, miss or error.
type Class int

const (
	ClassHit Class = iota
	ClassMiss
	ClassError
)

// Classify maps an edge result tag to its class. Anything unrecognized
// (legacy numeric codes included) counts as an error, not a miss.
func Classify(edgeResult string) Class {
	switch edgeResult {
	case EdgeHit, EdgeRefreshHit:
		return ClassHit
	case EdgeMiss:
		return ClassMiss
	default:
		return ClassError
	}
}

// Totals is the aggregate of a set of records under the standard
// classification rule (RefreshHit counts as a hit).
type Totals struct {
	Bytes       int64
	Requests    int64
	CacheHits   int64
	CacheMisses int64
	Errors      int64
}

// HitRatio returns the cache hit percentage, 0 when there are no requests.
func (t Totals) HitRatio() float64 {
	if t.Requests == 0 {
		return 0
	}
	return float64(t.CacheHits) / float64(t.Requests) * 100
}

// Sum reduces records into Totals. Every record lands in exactly one of
// the hit/miss/error counters.
func Sum(records []Record) Totals {
	var t Totals
	for _, r := range records {
		t.Bytes += r.Bytes
		t.Requests++
		switch Classify(r.EdgeResult) {
		case ClassHit:
			t.CacheHits++
		case ClassMiss:
			t.CacheMisses++
		default:
			t.Errors++
		}
	}
	return t
}

// AssetTotals is the aggregate used by the per-asset stats path, which
// predates the shared classification rule: only a plain "Hit" counts.
type AssetTotals struct {
	Bytes    int64
	Requests int64
	Hits     int64
}

// HitRatio returns the hit percentage, 0 when there are no requests.
func (t AssetTotals) HitRatio() float64 {
	if t.Requests == 0 {
		return 0
	}
	return float64(t.Hits) / float64(t.Requests) * 100
}

// SumForAsset reduces records with the narrow hit rule (RefreshHit excluded).
func SumForAsset(records []Record) AssetTotals {
	var t AssetTotals
	for _, r := range records {
		t.Bytes += r.Bytes
		t.Requests++
		if r.EdgeResult == EdgeHit {
			t.Hits++
		}
	}
	return t
}
