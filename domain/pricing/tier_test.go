package pricing_test

import (
	"math"
	"testing"

	"mediavault/domain/pricing"
)

func threeTiers() pricing.Schedule {
	return pricing.Schedule{
		{Name: "tier1", MaxGB: 10, PricePerGB: 0.085},
		{Name: "tier2", MaxGB: 50, PricePerGB: 0.08},
		{Name: "tier3", PricePerGB: 0.03},
	}
}

func TestCost_ZeroBytes(t *testing.T) {
	c := threeTiers().Cost(0)

	if c.TotalUSD != 0 {
		t.Errorf("TotalUSD = %f, want 0", c.TotalUSD)
	}
	if len(c.Breakdown) != 0 {
		t.Errorf("Breakdown has %d entries, want 0", len(c.Breakdown))
	}
}

func TestCost_SpansTiers(t *testing.T) {
	// 15 GB: 10 GB at 0.085, 5 GB at 0.08.
	c := threeTiers().Cost(15 << 30)

	if c.TotalUSD != 1.25 {
		t.Errorf("TotalUSD = %f, want 1.25", c.TotalUSD)
	}
	if len(c.Breakdown) != 2 {
		t.Fatalf("Breakdown has %d entries, want 2", len(c.Breakdown))
	}
	if c.Breakdown[0].GBUsed != 10 || c.Breakdown[0].Cost != 0.85 {
		t.Errorf("Breakdown[0] = %+v, want gbUsed=10 cost=0.85", c.Breakdown[0])
	}
	if c.Breakdown[1].GBUsed != 5 || c.Breakdown[1].Cost != 0.4 {
		t.Errorf("Breakdown[1] = %+v, want gbUsed=5 cost=0.4", c.Breakdown[1])
	}
}

func TestCost_ShortCircuits(t *testing.T) {
	// 5 GB fits entirely in the first tier; later tiers must not appear.
	c := threeTiers().Cost(5 << 30)

	if len(c.Breakdown) != 1 {
		t.Fatalf("Breakdown has %d entries, want 1", len(c.Breakdown))
	}
	if c.Breakdown[0].Tier != "tier1" {
		t.Errorf("Breakdown[0].Tier = %q, want tier1", c.Breakdown[0].Tier)
	}
}

func TestCost_FractionalGB(t *testing.T) {
	// Half a GB at the first tier rate.
	c := threeTiers().Cost(1 << 29)

	if c.TotalUSD != 0.0425 {
		t.Errorf("TotalUSD = %f, want 0.0425", c.TotalUSD)
	}
	if len(c.Breakdown) != 1 || c.Breakdown[0].GBUsed != 0.5 {
		t.Errorf("Breakdown = %+v, want single 0.5 GB entry", c.Breakdown)
	}
}

func TestCost_UnboundedTail(t *testing.T) {
	// 100 GB: 10 + 40 + 50 across the three tiers.
	c := threeTiers().Cost(100 << 30)

	want := 10*0.085 + 40*0.08 + 50*0.03
	if math.Abs(c.TotalUSD-want) > 1e-9 {
		t.Errorf("TotalUSD = %f, want %f", c.TotalUSD, want)
	}
	if len(c.Breakdown) != 3 {
		t.Errorf("Breakdown has %d entries, want 3", len(c.Breakdown))
	}
}

func TestCost_Monotonic(t *testing.T) {
	s := pricing.Default()

	var prev float64
	for _, gb := range []int64{1, 9, 10, 11, 100, 10240, 10241, 51200, 153600, 512000, 600000} {
		c := s.Cost(gb << 30)
		if c.TotalUSD < prev {
			t.Fatalf("cost decreased at %d GB: %f < %f", gb, c.TotalUSD, prev)
		}
		prev = c.TotalUSD
	}
}

func TestCost_ContinuousAtBoundary(t *testing.T) {
	s := pricing.Default()

	// One byte either side of the first tier boundary.
	boundary := int64(10240) << 30
	below := s.Cost(boundary - 1).TotalUSD
	at := s.Cost(boundary).TotalUSD

	if diff := at - below; diff < 0 || diff > 1e-6 {
		t.Errorf("cost jumps by %g across tier boundary", diff)
	}
}

func TestCost_BreakdownSumsToTotal(t *testing.T) {
	s := pricing.Default()

	for _, bytes := range []int64{0, 1, 1 << 20, 15 << 30, 12000 << 30, 600000 << 30} {
		c := s.Cost(bytes)
		var sum float64
		for _, e := range c.Breakdown {
			sum += e.Cost
		}
		if math.Abs(sum-c.TotalUSD) > 1e-6 {
			t.Errorf("bytes=%d: breakdown sum %f != total %f", bytes, sum, c.TotalUSD)
		}
	}
}

func TestCost_ArbitraryTierCount(t *testing.T) {
	s := pricing.Schedule{
		{Name: "only", PricePerGB: 0.05},
	}

	c := s.Cost(4 << 30)
	if c.TotalUSD != 0.2 {
		t.Errorf("TotalUSD = %f, want 0.2", c.TotalUSD)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		s       pricing.Schedule
		wantErr bool
	}{
		{"default schedule", pricing.Default(), false},
		{"single unbounded tier", pricing.Schedule{{Name: "flat", PricePerGB: 0.01}}, false},
		{"empty", pricing.Schedule{}, true},
		{"final tier bounded", pricing.Schedule{{Name: "a", MaxGB: 10, PricePerGB: 0.1}}, true},
		{"unbounded tier not last", pricing.Schedule{
			{Name: "a", PricePerGB: 0.1},
			{Name: "b", PricePerGB: 0.05},
		}, true},
		{"non-ascending bounds", pricing.Schedule{
			{Name: "a", MaxGB: 50, PricePerGB: 0.1},
			{Name: "b", MaxGB: 10, PricePerGB: 0.08},
			{Name: "c", PricePerGB: 0.05},
		}, true},
		{"negative price", pricing.Schedule{
			{Name: "a", MaxGB: 10, PricePerGB: -0.1},
			{Name: "b", PricePerGB: 0.05},
		}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.s.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
