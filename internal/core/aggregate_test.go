package core

import (
	"math/rand"
	"testing"
	"time"
)

func snapWithPercents(pcts ...float64) UsageSnapshot {
	s := UsageSnapshot{FetchedAt: time.Now()}
	for _, p := range pcts {
		s.Samples = append(s.Samples, MetricSample{Key: "m", Label: "M", Percent: p})
	}
	return s
}

func TestAggregate_RemainingPolicy(t *testing.T) {
	tests := []struct {
		pcts         []float64
		wantHeadline float64
		wantTier     Tier
	}{
		{[]float64{90, 75, 60}, 60, TierNominal},
		{[]float64{90, 25}, 25, TierWarning},
		{[]float64{90, 20}, 20, TierWarning},
		{[]float64{90, 19.9}, 19.9, TierCritical},
		{[]float64{5}, 5, TierCritical},
		{[]float64{51}, 51, TierNominal},
		{[]float64{50}, 50, TierWarning},
	}
	for _, tt := range tests {
		got := Aggregate(snapWithPercents(tt.pcts...), PolicyRemaining)
		if got.HeadlinePercent != tt.wantHeadline {
			t.Errorf("headline for %v = %v, want %v", tt.pcts, got.HeadlinePercent, tt.wantHeadline)
		}
		if got.Tier != tt.wantTier {
			t.Errorf("tier for %v = %v, want %v", tt.pcts, got.Tier, tt.wantTier)
		}
		if got.StatusLine == "" {
			t.Errorf("status line for %v is empty", tt.pcts)
		}
	}
}

func TestAggregate_ConsumptionPolicy(t *testing.T) {
	tests := []struct {
		pcts         []float64
		wantHeadline float64
		wantTier     Tier
	}{
		{[]float64{10, 40}, 40, TierNominal},
		{[]float64{10, 50}, 50, TierWarning},
		{[]float64{92, 40}, 92, TierCritical},
		{[]float64{80}, 80, TierCritical},
		{[]float64{79.9}, 79.9, TierWarning},
	}
	for _, tt := range tests {
		got := Aggregate(snapWithPercents(tt.pcts...), PolicyConsumption)
		if got.HeadlinePercent != tt.wantHeadline {
			t.Errorf("headline for %v = %v, want %v", tt.pcts, got.HeadlinePercent, tt.wantHeadline)
		}
		if got.Tier != tt.wantTier {
			t.Errorf("tier for %v = %v, want %v", tt.pcts, got.Tier, tt.wantTier)
		}
	}
}

func TestAggregate_OrderIndependent(t *testing.T) {
	pcts := []float64{12, 95, 40, 73, 5, 88}
	rng := rand.New(rand.NewSource(1))

	for _, policy := range []Policy{PolicyRemaining, PolicyConsumption} {
		want := Aggregate(snapWithPercents(pcts...), policy)
		for i := 0; i < 10; i++ {
			shuffled := append([]float64(nil), pcts...)
			rng.Shuffle(len(shuffled), func(a, b int) {
				shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
			})
			got := Aggregate(snapWithPercents(shuffled...), policy)
			if got.HeadlinePercent != want.HeadlinePercent || got.Tier != want.Tier {
				t.Fatalf("policy %s: permuted aggregate = %+v, want %+v", policy, got, want)
			}
		}
	}
}

func TestAggregate_EmptySnapshot(t *testing.T) {
	for _, policy := range []Policy{PolicyRemaining, PolicyConsumption} {
		got := Aggregate(UsageSnapshot{}, policy)
		if got.HeadlinePercent != NoData {
			t.Errorf("policy %s: empty snapshot headline = %v, want NoData sentinel", policy, got.HeadlinePercent)
		}
		if got.Tier != TierUnknown {
			t.Errorf("policy %s: empty snapshot tier = %v, want TierUnknown", policy, got.Tier)
		}
		if got.StatusLine == "" {
			t.Errorf("policy %s: empty snapshot status line is empty", policy)
		}
	}
}

func TestNewRemainingSample(t *testing.T) {
	s := NewRemainingSample("input-tokens", "Input Tokens", 1000, 250)
	if s.Used == nil || *s.Used != 750 {
		t.Errorf("Used = %v, want 750", s.Used)
	}
	if s.Percent != 25 {
		t.Errorf("Percent = %v, want 25", s.Percent)
	}

	zero := NewRemainingSample("requests", "Requests", 0, 0)
	if zero.Percent != 0 {
		t.Errorf("zero-limit Percent = %v, want 0", zero.Percent)
	}
}

func TestNewUtilizationSample(t *testing.T) {
	tests := []struct {
		util    float64
		wantPct float64
	}{
		{0.92, 92},
		{0.4, 40},
		{0.005, 1}, // round, not truncate
		{0, 0},
		{1, 100},
		{1.7, 100}, // out-of-range ratio still clamps at display
		{-0.2, 0},
	}
	for _, tt := range tests {
		s := NewUtilizationSample("five_hour", "5-hour window", tt.util)
		if s.Percent != tt.wantPct {
			t.Errorf("utilization %v → Percent = %v, want %v", tt.util, s.Percent, tt.wantPct)
		}
		if s.Limit != nil {
			t.Errorf("utilization sample should have nil Limit")
		}
		if s.Used == nil || *s.Used != tt.wantPct {
			t.Errorf("utilization %v → Used = %v, want %v", tt.util, s.Used, tt.wantPct)
		}
	}
}
