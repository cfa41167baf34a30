// Package parsers extracts rate-limit metric groups from transport metadata.
package parsers

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// RateLimitPrefix is the header namespace the Anthropic API uses for
// per-request rate-limit reporting.
const RateLimitPrefix = "anthropic-ratelimit-"

const (
	suffixLimit     = "-limit"
	suffixRemaining = "-remaining"
	suffixReset     = "-reset"
)

// Group holds the raw values collected for one metric name under the prefix.
// Limit and Remaining stay nil when absent or malformed.
type Group struct {
	Limit     *float64
	Remaining *float64
	ResetAt   *time.Time
	ResetRaw  string
}

// Complete reports whether the group can produce a sample: both limit and
// remaining were present and parseable.
func (g Group) Complete() bool {
	return g.Limit != nil && g.Remaining != nil
}

func ParseFloat(val string) *float64 {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return nil
	}
	return &f
}

// ParseResetTime accepts the reset formats seen across vendors: a unix epoch,
// an RFC 3339 timestamp, or a duration like "6m0s". Returns nil when none
// match; callers keep the raw string for verbatim passthrough.
func ParseResetTime(val string) *time.Time {
	val = strings.TrimSpace(val)
	if val == "" {
		return nil
	}

	if ts, err := strconv.ParseFloat(val, 64); err == nil && ts > 1_000_000_000 {
		t := time.Unix(int64(ts), 0)
		return &t
	}

	if t, err := time.Parse(time.RFC3339, val); err == nil {
		return &t
	}

	if d, err := time.ParseDuration(val); err == nil {
		t := time.Now().Add(d)
		return &t
	}

	return nil
}

// CollectGroups selects every header under prefix (case-insensitively),
// strips the prefix, and groups values by metric name using the -limit /
// -remaining / -reset suffixes. Metric names never seen are simply absent
// from the result; a malformed value leaves that field nil so the single
// metric drops out later without failing the fetch.
func CollectGroups(h http.Header, prefix string) map[string]Group {
	groups := make(map[string]Group)

	for key, vals := range h {
		if len(vals) == 0 {
			continue
		}
		lower := strings.ToLower(key)
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		rest := lower[len(prefix):]
		val := vals[0]

		switch {
		case strings.HasSuffix(rest, suffixLimit):
			name := strings.TrimSuffix(rest, suffixLimit)
			g := groups[name]
			g.Limit = ParseFloat(val)
			groups[name] = g
		case strings.HasSuffix(rest, suffixRemaining):
			name := strings.TrimSuffix(rest, suffixRemaining)
			g := groups[name]
			g.Remaining = ParseFloat(val)
			groups[name] = g
		case strings.HasSuffix(rest, suffixReset):
			name := strings.TrimSuffix(rest, suffixReset)
			g := groups[name]
			g.ResetRaw = val
			g.ResetAt = ParseResetTime(val)
			groups[name] = g
		}
	}

	return groups
}
