package bandwidth

import (
	"fmt"
	"sort"
	"time"
)

// Granularity selects the calendar truncation used for bucket keys.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
	ByYear  Granularity = "year"
)

// ParseGranularity accepts day, month or year (case as given).
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case ByDay, ByMonth, ByYear:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("bandwidth: invalid granularity %q", s)
}

// Layout returns the time layout producing the bucket key for g.
func (g Granularity) Layout() string {
	switch g {
	case ByYear:
		return "2006"
	case ByMonth:
		return "2006-01"
	default:
		return "2006-01-02"
	}
}

// BucketKey truncates t to g's calendar granularity in the timestamp's
// own location. Records are stored in UTC; no conversion is applied here.
func BucketKey(t time.Time, g Granularity) string {
	return t.Format(g.Layout())
}

// Bucket is the aggregate of all records sharing one bucket key.
type Bucket struct {
	Key    string
	Totals Totals
}

// GroupByPeriod buckets records by calendar period, ascending by key.
// Only periods with at least one record appear; gaps are not zero-filled.
func GroupByPeriod(records []Record, g Granularity) []Bucket {
	byKey := make(map[string]Totals)
	for _, r := range records {
		key := BucketKey(r.Timestamp, g)
		t := byKey[key]
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
		byKey[key] = t
	}

	buckets := make([]Bucket, 0, len(byKey))
	for key, t := range byKey {
		buckets = append(buckets, Bucket{Key: key, Totals: t})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Key < buckets[j].Key })
	return buckets
}
