// Package render builds the display payload from a fetch state. Everything
// here is a pure function of its inputs so the exact strings can be
// snapshot-tested; the TUI only decorates what this package produces.
package render

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/janekbaraniewski/tokenmeter/internal/core"
	"github.com/janekbaraniewski/tokenmeter/internal/format"
)

// MetricRow is one metric's pair of display lines. Absent metrics keep their
// row (Present=false, placeholder text) so the layout never shifts between
// refreshes.
type MetricRow struct {
	Key     string
	Label   string
	Text    string
	Bar     string
	Present bool
}

// Payload is the full set of named display fields the display layer writes
// into its widgets on every completed fetch.
type Payload struct {
	Title       string // severity icon + rounded headline, e.g. "◐ 25%"
	StatusLine  string
	Rows        []MetricRow
	ResetLine   string
	CheckedLine string
	Tier        core.Tier
}

// Input bundles what one render needs. Metrics fixes the row set and order;
// Snapshot may be nil before the first successful fetch.
type Input struct {
	Metrics []core.MetricSpec
	Policy  core.Policy
	State   core.State
	Now     time.Time
}

// Build produces the payload for the most recently completed fetch. The
// outcome decides title and status line; the last successful snapshot (which
// survives failed fetches) still populates the metric rows.
func Build(in Input) Payload {
	p := Payload{
		Tier:        core.TierUnknown,
		CheckedLine: checkedLine(in.State.CheckedAt),
	}

	var snap core.UsageSnapshot
	if in.State.Snapshot != nil {
		snap = *in.State.Snapshot
	}
	agg := core.Aggregate(snap, in.Policy)

	p.Rows = buildRows(in.Metrics, snap, in.Policy)
	p.ResetLine = resetLine(snap, in.Now)

	switch in.State.Outcome.Status {
	case core.StatusOK:
		if agg.HeadlinePercent == core.NoData {
			p.Title = "◉ —"
			p.StatusLine = "no data"
		} else {
			p.Tier = agg.Tier
			p.Title = fmt.Sprintf("%s %.0f%%", agg.Tier.Icon(), agg.HeadlinePercent)
			p.StatusLine = agg.StatusLine
		}
	case core.StatusAuth:
		p.Title = "◉ Bad Key"
		p.StatusLine = "⚠ Invalid API key"
	case core.StatusLimited:
		p.Tier = core.TierCritical
		p.Title = "○ 0%"
		p.StatusLine = "⚠ Rate limited"
	case core.StatusOffline:
		p.Title = "◉ offline"
		p.StatusLine = "⚠ No connection"
	case core.StatusNoCredential:
		p.Title = "◉ No Key"
		p.StatusLine = "Set an API key to begin"
	case core.StatusUpstream:
		p.Title = "◉ ⚠"
		p.StatusLine = "⚠ " + in.State.Outcome.Message
	default:
		// Before the first fetch completes.
		p.Title = "◉ —"
		p.StatusLine = "waiting for first check…"
	}

	if p.StatusLine == "" {
		p.StatusLine = string(in.State.Outcome.Status)
	}
	return p
}

func buildRows(specs []core.MetricSpec, snap core.UsageSnapshot, policy core.Policy) []MetricRow {
	return lo.Map(specs, func(spec core.MetricSpec, _ int) MetricRow {
		sample, ok := snap.Sample(spec.Key)
		if !ok {
			return MetricRow{
				Key:   spec.Key,
				Label: spec.Label,
				Text:  fmt.Sprintf("%s: —", spec.Label),
			}
		}
		return metricRow(spec, sample, policy)
	})
}

func metricRow(spec core.MetricSpec, s core.MetricSample, policy core.Policy) MetricRow {
	row := MetricRow{Key: spec.Key, Label: spec.Label, Present: true}

	if policy == core.PolicyConsumption || s.Limit == nil {
		// No absolute counts in this shape; the percentage is the story.
		row.Text = fmt.Sprintf("%s: %.0f%% used", spec.Label, s.Percent)
		row.Bar = fmt.Sprintf("  %s", format.Bar(s.Percent, format.BarWidth))
		return row
	}

	used := 0.0
	if s.Used != nil {
		used = *s.Used
	}
	remaining := *s.Limit - used
	row.Text = fmt.Sprintf("%s: %s used / %s  (%.0f%% left)",
		spec.Label, format.Abbrev(used), format.Abbrev(*s.Limit), s.Percent)
	row.Bar = fmt.Sprintf("  %s  %s remaining",
		format.Bar(s.Percent, format.BarWidth), format.Abbrev(remaining))
	return row
}

// resetLine surfaces the first reset value found in display order.
func resetLine(snap core.UsageSnapshot, now time.Time) string {
	for _, s := range snap.Samples {
		if s.ResetAt != nil {
			countdown := format.Countdown(*s.ResetAt, now)
			if countdown == "just reset" {
				return "Limit window just reset"
			}
			return "Resets " + countdown
		}
		if s.ResetRaw != "" {
			// Unparsable upstream value: verbatim passthrough, never a guess.
			return "Reset: " + s.ResetRaw
		}
	}
	return "Resets: —"
}

func checkedLine(checkedAt *time.Time) string {
	if checkedAt == nil {
		return "Last checked: never"
	}
	return "Last checked: " + checkedAt.Local().Format("3:04:05 PM")
}
