package core

import (
	"fmt"

	"github.com/samber/lo"
)

// Policy selects how per-metric percentages reduce to one headline number.
// It is an explicit input, never inferred from which normalizer ran.
type Policy string

const (
	// PolicyRemaining treats percentages as "capacity remaining": the
	// minimum across samples is the binding constraint.
	PolicyRemaining Policy = "remaining"
	// PolicyConsumption treats percentages as "capacity used": the maximum
	// across samples is the binding constraint.
	PolicyConsumption Policy = "consumption"
)

// Tier is the coarse severity band driving the status icon.
type Tier string

const (
	TierNominal  Tier = "NOMINAL"
	TierWarning  Tier = "WARNING"
	TierCritical Tier = "CRITICAL"
	TierUnknown  Tier = "UNKNOWN"
)

// Icon returns the three-glyph severity indicator for the tier.
func (t Tier) Icon() string {
	switch t {
	case TierNominal:
		return "●"
	case TierWarning:
		return "◐"
	case TierCritical:
		return "○"
	default:
		return "◉"
	}
}

// NoData is the sentinel headline for a snapshot with no parseable metrics.
const NoData = -1.0

// AggregateStatus is derived purely from a snapshot; it has no lifecycle of
// its own.
type AggregateStatus struct {
	HeadlinePercent float64 // NoData when the snapshot held no samples
	Tier            Tier
	StatusLine      string
}

// TierFor maps a headline percentage to a severity tier under this policy.
func (p Policy) TierFor(pct float64) Tier {
	if p == PolicyConsumption {
		switch {
		case pct >= 80:
			return TierCritical
		case pct >= 50:
			return TierWarning
		default:
			return TierNominal
		}
	}
	switch {
	case pct > 50:
		return TierNominal
	case pct >= 20:
		return TierWarning
	default:
		return TierCritical
	}
}

// Aggregate reduces a snapshot to its headline percentage and severity tier.
// Order of samples does not matter. An empty snapshot yields the no-data
// sentinel, never a numeric 0%.
func Aggregate(snap UsageSnapshot, policy Policy) AggregateStatus {
	if len(snap.Samples) == 0 {
		return AggregateStatus{
			HeadlinePercent: NoData,
			Tier:            TierUnknown,
			StatusLine:      "no data",
		}
	}

	pcts := lo.Map(snap.Samples, func(m MetricSample, _ int) float64 { return m.Percent })

	var headline float64
	if policy == PolicyConsumption {
		headline = lo.Max(pcts)
	} else {
		headline = lo.Min(pcts)
	}

	return AggregateStatus{
		HeadlinePercent: headline,
		Tier:            policy.TierFor(headline),
		StatusLine:      statusLine(policy, headline),
	}
}

func statusLine(policy Policy, headline float64) string {
	if policy == PolicyConsumption {
		return fmt.Sprintf("%.0f%% of plan used", headline)
	}
	return fmt.Sprintf("%.0f%% capacity left", headline)
}
