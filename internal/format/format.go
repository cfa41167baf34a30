// Package format holds the small display-formatting helpers shared by the
// render layer and the TUI: count abbreviation, block bars and reset
// countdowns.
package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// BarWidth is the default width of a metric bar in cells.
const BarWidth = 20

// Abbrev shortens large counts: 1500000 -> "1.5M", 42000 -> "42.0K".
func Abbrev(n float64) string {
	v := math.Trunc(n)
	switch {
	case v >= 1_000_000:
		return fmt.Sprintf("%.1fM", v/1_000_000)
	case v >= 1_000:
		return fmt.Sprintf("%.1fK", v/1_000)
	default:
		return strconv.FormatInt(int64(v), 10)
	}
}

// ClampPercent bounds a percentage to [0,100].
func ClampPercent(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// Bar renders a fixed-width block bar: [████████░░░░░░░░░░░░].
// The filled cell count is round(width * pct / 100).
func Bar(pct float64, width int) string {
	if width <= 0 {
		width = BarWidth
	}
	pct = ClampPercent(pct)
	filled := int(math.Round(float64(width) * pct / 100))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Countdown formats the distance from now to resetAt. Both instants are
// normalized to UTC so client and server clock offsets cancel out.
func Countdown(resetAt, now time.Time) string {
	diff := resetAt.UTC().Sub(now.UTC())
	if diff <= 0 {
		return "just reset"
	}
	secs := int(diff.Seconds())
	if secs < 3600 {
		return fmt.Sprintf("in %dm %ds", secs/60, secs%60)
	}
	return fmt.Sprintf("in %d hr %d min", secs/3600, (secs%3600)/60)
}

// ResetIn formats an optional ISO-8601 reset timestamp relative to now.
// An empty value renders nothing; a value that does not parse as RFC 3339
// (including offset-less timestamps) is passed through verbatim.
func ResetIn(raw string, now time.Time) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return raw
	}
	return Countdown(t, now)
}
