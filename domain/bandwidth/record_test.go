package bandwidth_test

import (
	"testing"
	"time"

	"mediavault/domain/bandwidth"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		edgeResult string
		want       bandwidth.Class
	}{
		{"Hit", bandwidth.ClassHit},
		{"RefreshHit", bandwidth.ClassHit},
		{"Miss", bandwidth.ClassMiss},
		{"Error", bandwidth.ClassError},
		{"500", bandwidth.ClassError},
		{"REDIRECT", bandwidth.ClassError},
		{"", bandwidth.ClassError},
		{"hit", bandwidth.ClassError}, // tags are case sensitive
	}

	for _, tt := range tests {
		t.Run(tt.edgeResult, func(t *testing.T) {
			if got := bandwidth.Classify(tt.edgeResult); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.edgeResult, got, tt.want)
			}
		})
	}
}

func TestSum(t *testing.T) {
	records := []bandwidth.Record{
		{Bytes: 1000, EdgeResult: "Hit"},
		{Bytes: 2000, EdgeResult: "RefreshHit"},
		{Bytes: 3000, EdgeResult: "Miss"},
		{Bytes: 4000, EdgeResult: "Error"},
		{Bytes: 5000, EdgeResult: "503"},
	}

	totals := bandwidth.Sum(records)

	if totals.Bytes != 15000 {
		t.Errorf("Bytes = %d, want 15000", totals.Bytes)
	}
	if totals.Requests != 5 {
		t.Errorf("Requests = %d, want 5", totals.Requests)
	}
	if totals.CacheHits != 2 {
		t.Errorf("CacheHits = %d, want 2", totals.CacheHits)
	}
	if totals.CacheMisses != 1 {
		t.Errorf("CacheMisses = %d, want 1", totals.CacheMisses)
	}
	if totals.Errors != 2 {
		t.Errorf("Errors = %d, want 2", totals.Errors)
	}
	// Exhaustiveness: every record is counted exactly once.
	if totals.CacheHits+totals.CacheMisses+totals.Errors != totals.Requests {
		t.Errorf("classification not exhaustive: %d+%d+%d != %d",
			totals.CacheHits, totals.CacheMisses, totals.Errors, totals.Requests)
	}
}

func TestSum_Empty(t *testing.T) {
	totals := bandwidth.Sum(nil)

	if totals != (bandwidth.Totals{}) {
		t.Errorf("Sum(nil) = %+v, want zero totals", totals)
	}
	if totals.HitRatio() != 0 {
		t.Errorf("HitRatio() = %f, want 0", totals.HitRatio())
	}
}

func TestHitRatio_Bounds(t *testing.T) {
	totals := bandwidth.Sum([]bandwidth.Record{
		{EdgeResult: "Hit"},
		{EdgeResult: "Miss"},
	})

	ratio := totals.HitRatio()
	if ratio < 0 || ratio > 100 {
		t.Errorf("HitRatio() = %f, out of [0,100]", ratio)
	}
	if ratio != 50 {
		t.Errorf("HitRatio() = %f, want 50", ratio)
	}
}

func TestSumForAsset_ExcludesRefreshHit(t *testing.T) {
	records := []bandwidth.Record{
		{Bytes: 100, EdgeResult: "Hit"},
		{Bytes: 200, EdgeResult: "RefreshHit"},
		{Bytes: 300, EdgeResult: "Miss"},
	}

	totals := bandwidth.SumForAsset(records)

	if totals.Bytes != 600 || totals.Requests != 3 {
		t.Errorf("totals = %+v, want bytes=600 requests=3", totals)
	}
	if totals.Hits != 1 {
		t.Errorf("Hits = %d, want 1 (RefreshHit must not count)", totals.Hits)
	}
}

func TestParseGranularity(t *testing.T) {
	for _, valid := range []string{"day", "month", "year"} {
		if _, err := bandwidth.ParseGranularity(valid); err != nil {
			t.Errorf("ParseGranularity(%q) = %v, want nil", valid, err)
		}
	}
	for _, invalid := range []string{"week", "Day", "hour", ""} {
		if _, err := bandwidth.ParseGranularity(invalid); err == nil {
			t.Errorf("ParseGranularity(%q) = nil error, want error", invalid)
		}
	}
}

func TestBucketKey(t *testing.T) {
	ts := time.Date(2024, 3, 7, 15, 42, 1, 0, time.UTC)

	tests := []struct {
		g    bandwidth.Granularity
		want string
	}{
		{bandwidth.ByDay, "2024-03-07"},
		{bandwidth.ByMonth, "2024-03"},
		{bandwidth.ByYear, "2024"},
	}
	for _, tt := range tests {
		if got := bandwidth.BucketKey(ts, tt.g); got != tt.want {
			t.Errorf("BucketKey(%v) = %q, want %q", tt.g, got, tt.want)
		}
	}
}

func TestGroupByPeriod(t *testing.T) {
	day1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	day3 := time.Date(2024, 1, 3, 20, 0, 0, 0, time.UTC)

	records := []bandwidth.Record{
		{Bytes: 500, EdgeResult: "Hit", Timestamp: day3},
		{Bytes: 500, EdgeResult: "Miss", Timestamp: day1},
		{Bytes: 1000, EdgeResult: "Hit", Timestamp: day1},
	}

	buckets := bandwidth.GroupByPeriod(records, bandwidth.ByDay)

	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2 (no zero-filled gap)", len(buckets))
	}
	if buckets[0].Key != "2024-01-01" || buckets[1].Key != "2024-01-03" {
		t.Errorf("bucket keys = %q, %q; want ascending 2024-01-01, 2024-01-03", buckets[0].Key, buckets[1].Key)
	}
	if buckets[0].Totals.Bytes != 1500 || buckets[0].Totals.Requests != 2 {
		t.Errorf("day1 totals = %+v, want bytes=1500 requests=2", buckets[0].Totals)
	}
	if buckets[0].Totals.CacheHits != 1 || buckets[0].Totals.CacheMisses != 1 {
		t.Errorf("day1 classification = %+v, want 1 hit 1 miss", buckets[0].Totals)
	}
	if buckets[1].Totals.Bytes != 500 || buckets[1].Totals.Requests != 1 {
		t.Errorf("day3 totals = %+v, want bytes=500 requests=1", buckets[1].Totals)
	}
}

func TestGroupByPeriod_Monthly(t *testing.T) {
	records := []bandwidth.Record{
		{Bytes: 1, EdgeResult: "Hit", Timestamp: time.Date(2023, 12, 31, 23, 59, 0, 0, time.UTC)},
		{Bytes: 2, EdgeResult: "Hit", Timestamp: time.Date(2024, 1, 1, 0, 1, 0, 0, time.UTC)},
	}

	buckets := bandwidth.GroupByPeriod(records, bandwidth.ByMonth)

	if len(buckets) != 2 {
		t.Fatalf("got %d buckets, want 2", len(buckets))
	}
	if buckets[0].Key != "2023-12" || buckets[1].Key != "2024-01" {
		t.Errorf("bucket keys = %q, %q", buckets[0].Key, buckets[1].Key)
	}
}
