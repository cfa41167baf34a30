package core

import (
	"math"
	"time"
)

// Status tags the terminal outcome of one fetch cycle.
type Status string

const (
	StatusOK           Status = "OK"
	StatusAuth         Status = "AUTH_REQUIRED"
	StatusLimited      Status = "LIMITED"
	StatusUpstream     Status = "UPSTREAM_ERROR"
	StatusOffline      Status = "OFFLINE"
	StatusNoCredential Status = "NO_CREDENTIAL"
)

// MetricSample is one normalized capacity dimension produced by a fetch cycle.
// Percent is always clamped to [0,100]. A metric whose limit is unknown keeps
// Used and Limit nil. ResetRaw carries the upstream reset value unmodified so
// the render layer can fall back to verbatim passthrough when it never parsed.
type MetricSample struct {
	Key      string     `json:"key"`
	Label    string     `json:"label"`
	Used     *float64   `json:"used,omitempty"`
	Limit    *float64   `json:"limit,omitempty"`
	Percent  float64    `json:"percent"`
	ResetAt  *time.Time `json:"reset_at,omitempty"`
	ResetRaw string     `json:"reset_raw,omitempty"`
}

// NewRemainingSample builds a sample from a limit/remaining pair. Percent
// means "capacity remaining". A zero limit yields percent 0, not a division
// error.
func NewRemainingSample(key, label string, limit, remaining float64) MetricSample {
	pct := 0.0
	if limit > 0 {
		pct = remaining / limit * 100
	}
	used := limit - remaining
	return MetricSample{
		Key:     key,
		Label:   label,
		Used:    &used,
		Limit:   &limit,
		Percent: clamp(pct),
	}
}

// NewUtilizationSample builds a sample from a utilization ratio in [0,1].
// Percent means "capacity used"; no absolute counts exist in this shape, so
// Used mirrors the percentage and Limit stays nil.
func NewUtilizationSample(key, label string, utilization float64) MetricSample {
	pct := clamp(math.Round(utilization * 100))
	used := pct
	return MetricSample{
		Key:     key,
		Label:   label,
		Used:    &used,
		Percent: pct,
	}
}

func clamp(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// UsageSnapshot is the complete set of samples from one fetch cycle, in fixed
// display order. Built whole before publishing; never mutated afterwards.
type UsageSnapshot struct {
	Samples   []MetricSample `json:"samples"`
	FetchedAt time.Time      `json:"fetched_at"`
}

// Sample returns the sample with the given key, if present.
func (s UsageSnapshot) Sample(key string) (MetricSample, bool) {
	for _, m := range s.Samples {
		if m.Key == key {
			return m, true
		}
	}
	return MetricSample{}, false
}

// FetchOutcome is the contract a fetch cycle returns to its caller. Snapshot
// is non-nil only when Status is StatusOK. The fetch never retries itself;
// the scheduler retries by re-invoking later.
type FetchOutcome struct {
	Status   Status         `json:"status"`
	Message  string         `json:"message"`
	Snapshot *UsageSnapshot `json:"snapshot,omitempty"`
}

// MetricSpec names one metric a provider can emit, in display order. The
// render layer keeps a row per spec even when the fetch omitted the metric,
// so the layout stays stable.
type MetricSpec struct {
	Key   string
	Label string
}

// ProviderInfo describes a provider for help and diagnostics output.
type ProviderInfo struct {
	Name         string   // e.g. "Anthropic API"
	Capabilities []string // "headers", "usage_endpoint"
	DocURL       string
}
