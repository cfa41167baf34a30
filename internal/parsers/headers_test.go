package parsers

import (
	"net/http"
	"testing"
	"time"
)

func TestCollectGroups(t *testing.T) {
	h := http.Header{}
	h.Set("anthropic-ratelimit-input-tokens-limit", "1000")
	h.Set("anthropic-ratelimit-input-tokens-remaining", "250")
	h.Set("anthropic-ratelimit-input-tokens-reset", "2025-06-01T00:00:00Z")
	h.Set("anthropic-ratelimit-requests-limit", "50")
	h.Set("anthropic-ratelimit-requests-remaining", "49")
	h.Set("Content-Type", "application/json")
	h.Set("x-other-limit", "99")

	groups := CollectGroups(h, RateLimitPrefix)

	if len(groups) != 2 {
		t.Fatalf("got %d groups, want 2: %+v", len(groups), groups)
	}

	in := groups["input-tokens"]
	if !in.Complete() {
		t.Fatal("input-tokens group incomplete")
	}
	if *in.Limit != 1000 || *in.Remaining != 250 {
		t.Errorf("input-tokens = %v/%v, want 250/1000", in.Remaining, in.Limit)
	}
	if in.ResetAt == nil || !in.ResetAt.Equal(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("input-tokens ResetAt = %v", in.ResetAt)
	}
	if in.ResetRaw != "2025-06-01T00:00:00Z" {
		t.Errorf("input-tokens ResetRaw = %q", in.ResetRaw)
	}

	req := groups["requests"]
	if !req.Complete() {
		t.Fatal("requests group incomplete")
	}
	if req.ResetAt != nil || req.ResetRaw != "" {
		t.Errorf("requests reset = %v/%q, want absent", req.ResetAt, req.ResetRaw)
	}
}

func TestCollectGroups_CaseInsensitive(t *testing.T) {
	h := http.Header{}
	// Header canonicalization aside, mixed-case keys must still match.
	h["Anthropic-Ratelimit-Tokens-Limit"] = []string{"100"}
	h["ANTHROPIC-RATELIMIT-TOKENS-REMAINING"] = []string{"40"}

	groups := CollectGroups(h, RateLimitPrefix)
	g, ok := groups["tokens"]
	if !ok || !g.Complete() {
		t.Fatalf("tokens group missing or incomplete: %+v", groups)
	}
}

func TestCollectGroups_MalformedValuesLeaveFieldNil(t *testing.T) {
	h := http.Header{}
	h.Set("anthropic-ratelimit-tokens-limit", "not-a-number")
	h.Set("anthropic-ratelimit-tokens-remaining", "40")
	h.Set("anthropic-ratelimit-requests-limit", "50")
	h.Set("anthropic-ratelimit-requests-remaining", "10")

	groups := CollectGroups(h, RateLimitPrefix)

	if groups["tokens"].Complete() {
		t.Error("malformed limit should leave the tokens group incomplete")
	}
	if !groups["requests"].Complete() {
		t.Error("requests group should be unaffected by the malformed sibling")
	}
}

func TestParseResetTime(t *testing.T) {
	if got := ParseResetTime("2025-06-01T00:00:00Z"); got == nil {
		t.Error("RFC 3339 timestamp did not parse")
	}
	if got := ParseResetTime("1750000000"); got == nil {
		t.Error("unix epoch did not parse")
	}
	if got := ParseResetTime("6m0s"); got == nil {
		t.Error("duration did not parse")
	}
	if got := ParseResetTime("garbage"); got != nil {
		t.Errorf("garbage parsed to %v", got)
	}
	if got := ParseResetTime(""); got != nil {
		t.Errorf("empty string parsed to %v", got)
	}
}

func TestParseFloat(t *testing.T) {
	if got := ParseFloat(" 42 "); got == nil || *got != 42 {
		t.Errorf("ParseFloat(\" 42 \") = %v", got)
	}
	if got := ParseFloat("abc"); got != nil {
		t.Errorf("ParseFloat(abc) = %v, want nil", got)
	}
}
