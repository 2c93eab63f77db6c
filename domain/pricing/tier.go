// Package pricing implements marginal tiered pricing for bandwidth.
// All functions are pure - no side effects.
package pricing

import (
	"fmt"
	"math"
)

const bytesPerGB = 1 << 30

// Tier is one band of a tiered pricing schedule.
// MaxGB is the cumulative upper bound (in GB) at which the band ends.
// MaxGB <= 0 marks the final, unbounded tier.
type Tier struct {
	Name       string
	MaxGB      float64
	PricePerGB float64
}

// Unbounded reports whether the tier has no upper bound.
func (t Tier) Unbounded() bool {
	return t.MaxGB <= 0
}

// Schedule is an ordered list of pricing tiers.
// Bands are [previous MaxGB, MaxGB); the last tier is unbounded.
type Schedule []Tier

// BreakdownEntry records the usage and cost that fell into one tier.
type BreakdownEntry struct {
	Tier       string  `json:"tier"`
	GBUsed     float64 `json:"gbUsed"`
	PricePerGB float64 `json:"pricePerGB"`
	Cost       float64 `json:"cost"`
}

// Cost is the result of pricing a byte count.
type Cost struct {
	TotalUSD  float64          `json:"costUSD"`
	Breakdown []BreakdownEntry `json:"breakdown"`
}

// Validate checks that the schedule is well formed: at least one tier,
// ascending cumulative bounds, non-negative prices, and exactly the last
// tier unbounded.
func (s Schedule) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("pricing: schedule has no tiers")
	}
	previousMax := 0.0
	for i, t := range s {
		if t.PricePerGB < 0 {
			return fmt.Errorf("pricing: tier %q has negative price", t.Name)
		}
		last := i == len(s)-1
		if last {
			if !t.Unbounded() {
				return fmt.Errorf("pricing: final tier %q must be unbounded", t.Name)
			}
			continue
		}
		if t.Unbounded() {
			return fmt.Errorf("pricing: tier %q is unbounded but not last", t.Name)
		}
		if t.MaxGB <= previousMax {
			return fmt.Errorf("pricing: tier %q bound %.0f GB does not exceed previous bound %.0f GB", t.Name, t.MaxGB, previousMax)
		}
		previousMax = t.MaxGB
	}
	return nil
}

// Cost prices a byte count under marginal tiered pricing: usage fills each
// band in order and is charged at that band's rate. Intermediate math is
// float64; only output fields are rounded, to 6 decimal places.
func (s Schedule) Cost(bytes int64) Cost {
	remaining := float64(bytes) / bytesPerGB
	previousMax := 0.0
	var (
		breakdown []BreakdownEntry
		total     float64
	)

	for _, t := range s {
		if remaining <= 0 {
			break
		}

		capacity := math.Inf(1)
		if !t.Unbounded() {
			capacity = t.MaxGB - previousMax
		}
		gbInTier := math.Min(remaining, capacity)

		if gbInTier > 0 {
			cost := gbInTier * t.PricePerGB
			breakdown = append(breakdown, BreakdownEntry{
				Tier:       t.Name,
				GBUsed:     round6(gbInTier),
				PricePerGB: t.PricePerGB,
				Cost:       round6(cost),
			})
			total += cost
		}

		remaining -= gbInTier
		previousMax = t.MaxGB
	}

	return Cost{TotalUSD: round6(total), Breakdown: breakdown}
}

// Default returns the standard CDN egress schedule: cumulative bands at
// 10 TB, 50 TB, 150 TB and 500 TB, then a flat rate beyond.
func Default() Schedule {
	return Schedule{
		{Name: "First 10 TB", MaxGB: 10240, PricePerGB: 0.085},
		{Name: "Next 40 TB", MaxGB: 51200, PricePerGB: 0.080},
		{Name: "Next 100 TB", MaxGB: 153600, PricePerGB: 0.060},
		{Name: "Next 350 TB", MaxGB: 512000, PricePerGB: 0.040},
		{Name: "Over 500 TB", PricePerGB: 0.030},
	}
}

func round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}
