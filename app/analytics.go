// Package app contains orchestration services that tie domain logic to
// the store and external-service ports. Services are safe for concurrent
// use.
package app

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"mediavault/domain/asset"
	"mediavault/domain/bandwidth"
	"mediavault/domain/pricing"
	"mediavault/ports"
)

// perAssetFanout caps concurrent per-asset log queries in the breakdown path.
const perAssetFanout = 8

// UserBandwidthStats is the account-wide bandwidth rollup.
type UserBandwidthStats struct {
	TotalBytes    int64                    `json:"totalBytes"`
	TotalGB       string                   `json:"totalGB"`
	TotalTB       string                   `json:"totalTB"`
	TotalRequests int64                    `json:"totalRequests"`
	CacheHits     int64                    `json:"cacheHits"`
	CacheMisses   int64                    `json:"cacheMisses"`
	Errors        int64                    `json:"errors"`
	CacheHitRatio string                   `json:"cacheHitRatio"`
	CostUSD       float64                  `json:"costUSD"`
	CostBreakdown []pricing.BreakdownEntry `json:"costBreakdown"`
}

// AssetBandwidthStats is one asset's share of the per-asset breakdown.
type AssetBandwidthStats struct {
	AssetID       string  `json:"assetId"`
	Name          string  `json:"name"`
	S3Key         string  `json:"s3Key"`
	CDNURL        string  `json:"cdnUrl"`
	TotalBytes    int64   `json:"totalBytes"`
	TotalGB       string  `json:"totalGB"`
	Requests      int64   `json:"requests"`
	CacheHits     int64   `json:"cacheHits"`
	CacheHitRatio string  `json:"cacheHitRatio"`
	CostUSD       float64 `json:"costUSD"`
}

// AssetBreakdown is one page of per-asset stats plus the owner's total
// non-deleted asset count (for pagination metadata, independent of any
// date range).
type AssetBreakdown struct {
	Assets []AssetBandwidthStats `json:"assets"`
	Total  int64                 `json:"total"`
}

// DailyBandwidth is one day's bucket in the daily series.
type DailyBandwidth struct {
	Date     string  `json:"date"`
	Bytes    int64   `json:"bytes"`
	Requests int64   `json:"requests"`
	CostUSD  float64 `json:"costUSD"`
}

// ChartData carries parallel arrays aligned by index: Labels[i] is the
// bucket whose records sum to Requests[i], Bytes[i] and so on.
type ChartData struct {
	Labels      []string  `json:"labels"`
	Requests    []int64   `json:"requests"`
	Bytes       []int64   `json:"bytes"`
	CostUSD     []float64 `json:"costUSD"`
	CacheHits   []int64   `json:"cacheHits"`
	CacheMisses []int64   `json:"cacheMisses"`
	Errors      []int64   `json:"errors"`
}

// AnalyticsService produces bandwidth and cost rollups from the access
// log. All operations are read-only; empty results are never errors.
type AnalyticsService struct {
	assets ports.AssetStore
	logs   ports.AccessLogStore
	logger zerolog.Logger

	mu    sync.RWMutex
	tiers pricing.Schedule
}

// NewAnalyticsService creates the analytics service.
func NewAnalyticsService(assets ports.AssetStore, logs ports.AccessLogStore, tiers pricing.Schedule, logger zerolog.Logger) *AnalyticsService {
	return &AnalyticsService{
		assets: assets,
		logs:   logs,
		tiers:  tiers,
		logger: logger.With().Str("service", "analytics").Logger(),
	}
}

// SetSchedule swaps the pricing schedule at runtime (config reload).
func (s *AnalyticsService) SetSchedule(tiers pricing.Schedule) {
	s.mu.Lock()
	s.tiers = tiers
	s.mu.Unlock()
}

func (s *AnalyticsService) schedule() pricing.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tiers
}

// UserTotals aggregates all bandwidth attributed to the user's assets,
// deleted ones included so totals keep history. Bounds are optional and
// inclusive. A user with no assets gets zero stats, not an error.
func (s *AnalyticsService) UserTotals(ctx context.Context, userID string, start, end *time.Time) (UserBandwidthStats, error) {
	owned, err := s.assets.ListByOwner(ctx, userID, true)
	if err != nil {
		return UserBandwidthStats{}, fmt.Errorf("list assets: %w", err)
	}
	if len(owned) == 0 {
		return zeroUserStats(), nil
	}

	totals, err := s.logs.Totals(ctx, ports.LogFilter{
		Keys:  asset.Keys(owned),
		Start: start,
		End:   end,
	})
	if err != nil {
		return UserBandwidthStats{}, fmt.Errorf("aggregate logs: %w", err)
	}

	cost := s.schedule().Cost(totals.Bytes)
	totalGB := float64(totals.Bytes) / (1 << 30)

	return UserBandwidthStats{
		TotalBytes:    totals.Bytes,
		TotalGB:       strconv.FormatFloat(totalGB, 'f', 2, 64),
		TotalTB:       strconv.FormatFloat(totalGB/1024, 'f', 3, 64),
		TotalRequests: totals.Requests,
		CacheHits:     totals.CacheHits,
		CacheMisses:   totals.CacheMisses,
		Errors:        totals.Errors,
		CacheHitRatio: formatRatio(totals.HitRatio()),
		CostUSD:       cost.TotalUSD,
		CostBreakdown: cost.Breakdown,
	}, nil
}

// PerAssetBreakdown returns one page of per-asset bandwidth stats.
// Pagination selects assets by creation time descending; the returned
// page is then re-sorted by usage. Each asset's cost is tiered against
// its own bytes alone, not the user's combined total.
func (s *AnalyticsService) PerAssetBreakdown(ctx context.Context, userID string, start, end *time.Time, page, limit int) (AssetBreakdown, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}

	total, err := s.assets.CountByOwner(ctx, userID)
	if err != nil {
		return AssetBreakdown{}, fmt.Errorf("count assets: %w", err)
	}

	pageAssets, err := s.assets.ListPage(ctx, userID, ports.AssetPage{Page: page, Limit: limit})
	if err != nil {
		return AssetBreakdown{}, fmt.Errorf("list assets: %w", err)
	}
	if len(pageAssets) == 0 {
		return AssetBreakdown{Assets: []AssetBandwidthStats{}, Total: total}, nil
	}

	tiers := s.schedule()
	stats := make([]AssetBandwidthStats, len(pageAssets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(perAssetFanout)

	for i, a := range pageAssets {
		i, a := i, a
		g.Go(func() error {
			t, err := s.logs.Totals(gctx, ports.LogFilter{
				Keys:  []string{a.S3Key},
				Start: start,
				End:   end,
			})
			if err != nil {
				return fmt.Errorf("aggregate logs for asset %s: %w", a.ID, err)
			}

			stats[i] = AssetBandwidthStats{
				AssetID:       a.ID,
				Name:          a.Name,
				S3Key:         a.S3Key,
				CDNURL:        a.CDNURL,
				TotalBytes:    t.Bytes,
				TotalGB:       strconv.FormatFloat(float64(t.Bytes)/(1<<30), 'f', 4, 64),
				Requests:      t.Requests,
				CacheHits:     t.CacheHits,
				CacheHitRatio: formatRatio(t.HitRatio()),
				CostUSD:       tiers.Cost(t.Bytes).TotalUSD,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return AssetBreakdown{}, err
	}

	// Display order within the page is by usage, highest first.
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].TotalBytes > stats[j].TotalBytes
	})

	return AssetBreakdown{Assets: stats, Total: total}, nil
}

// DailySeries buckets the user's bandwidth by calendar day between the
// required inclusive bounds. Days without records are omitted. Cost is
// tiered per day independently.
func (s *AnalyticsService) DailySeries(ctx context.Context, userID string, start, end time.Time) ([]DailyBandwidth, error) {
	buckets, err := s.userBuckets(ctx, userID, start, end, bandwidth.ByDay)
	if err != nil {
		return nil, err
	}

	tiers := s.schedule()
	series := make([]DailyBandwidth, len(buckets))
	for i, b := range buckets {
		series[i] = DailyBandwidth{
			Date:     b.Key,
			Bytes:    b.Totals.Bytes,
			Requests: b.Totals.Requests,
			CostUSD:  tiers.Cost(b.Totals.Bytes).TotalUSD,
		}
	}
	return series, nil
}

// ChartSeries buckets the user's bandwidth at the given granularity and
// returns chart-friendly parallel arrays. Cost is tiered per bucket
// independently.
func (s *AnalyticsService) ChartSeries(ctx context.Context, userID string, start, end time.Time, g bandwidth.Granularity) (ChartData, error) {
	data := ChartData{
		Labels:      []string{},
		Requests:    []int64{},
		Bytes:       []int64{},
		CostUSD:     []float64{},
		CacheHits:   []int64{},
		CacheMisses: []int64{},
		Errors:      []int64{},
	}

	buckets, err := s.userBuckets(ctx, userID, start, end, g)
	if err != nil {
		return ChartData{}, err
	}

	tiers := s.schedule()
	for _, b := range buckets {
		data.Labels = append(data.Labels, b.Key)
		data.Requests = append(data.Requests, b.Totals.Requests)
		data.Bytes = append(data.Bytes, b.Totals.Bytes)
		data.CostUSD = append(data.CostUSD, tiers.Cost(b.Totals.Bytes).TotalUSD)
		data.CacheHits = append(data.CacheHits, b.Totals.CacheHits)
		data.CacheMisses = append(data.CacheMisses, b.Totals.CacheMisses)
		data.Errors = append(data.Errors, b.Totals.Errors)
	}
	return data, nil
}

func (s *AnalyticsService) userBuckets(ctx context.Context, userID string, start, end time.Time, g bandwidth.Granularity) ([]bandwidth.Bucket, error) {
	owned, err := s.assets.ListByOwner(ctx, userID, true)
	if err != nil {
		return nil, fmt.Errorf("list assets: %w", err)
	}
	if len(owned) == 0 {
		return nil, nil
	}

	buckets, err := s.logs.GroupByPeriod(ctx, ports.LogFilter{
		Keys:  asset.Keys(owned),
		Start: &start,
		End:   &end,
	}, g)
	if err != nil {
		return nil, fmt.Errorf("group logs: %w", err)
	}
	return buckets, nil
}

func zeroUserStats() UserBandwidthStats {
	return UserBandwidthStats{
		TotalGB:       "0.00",
		TotalTB:       "0.000",
		CacheHitRatio: "0.00%",
		CostBreakdown: []pricing.BreakdownEntry{},
	}
}

func formatRatio(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 2, 64) + "%"
}
