// Package anthropic polls the Anthropic Messages API and normalizes the
// per-request rate-limit headers into metric samples. Percentages here mean
// "capacity remaining", so the provider carries the remaining-capacity
// aggregation policy.
package anthropic

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/janekbaraniewski/tokenmeter/internal/core"
	"github.com/janekbaraniewski/tokenmeter/internal/parsers"
	"github.com/janekbaraniewski/tokenmeter/internal/providers/providerbase"
	"github.com/janekbaraniewski/tokenmeter/internal/providers/shared"
)

const (
	defaultBaseURL    = "https://api.anthropic.com"
	defaultProbeModel = "claude-sonnet-4-5-20250929"
)

// metricSpecs fixes the display order; upstream header order is irrelevant.
var metricSpecs = []core.MetricSpec{
	{Key: "input-tokens", Label: "Input Tokens"},
	{Key: "output-tokens", Label: "Output Tokens"},
	{Key: "requests", Label: "Requests"},
	{Key: "tokens", Label: "Total Tokens"},
}

type Provider struct {
	providerbase.Base
}

func New() *Provider {
	return &Provider{
		Base: providerbase.New(core.ProviderSpec{
			ID: "anthropic",
			Info: core.ProviderInfo{
				Name:         "Anthropic API",
				Capabilities: []string{"headers"},
				DocURL:       "https://docs.anthropic.com/en/api/rate-limits",
			},
			Metrics: metricSpecs,
			Policy:  core.PolicyRemaining,
		}),
	}
}

func (p *Provider) Fetch(ctx context.Context, acct core.AccountConfig) (core.FetchOutcome, error) {
	apiKey := acct.ResolveAPIKey()
	if apiKey == "" {
		return core.FetchOutcome{
			Status:  core.StatusNoCredential,
			Message: fmt.Sprintf("no API key (set %s or store one with set-key)", envName(acct)),
		}, nil
	}

	baseURL := acct.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := acct.ProbeModel
	if model == "" {
		model = defaultProbeModel
	}

	// Minimal one-token probe; only the response headers matter.
	body := fmt.Sprintf(`{"model":%q,"max_tokens":1,"messages":[{"role":"user","content":"h"}]}`, model)

	req, err := shared.NewRequest(ctx, http.MethodPost, baseURL+"/v1/messages",
		strings.NewReader(body), map[string]string{
			"x-api-key":         apiKey,
			"anthropic-version": "2023-06-01",
			"Content-Type":      "application/json",
		})
	if err != nil {
		return core.FetchOutcome{}, fmt.Errorf("anthropic: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return shared.TransportOutcome(err), nil
	}
	defer resp.Body.Close()

	if outcome, ok := shared.ClassifyResponse(resp); !ok {
		return outcome, nil
	}

	snap := buildSnapshot(resp.Header, time.Now().UTC())
	return core.FetchOutcome{Status: core.StatusOK, Message: "OK", Snapshot: &snap}, nil
}

// buildSnapshot normalizes the rate-limit header groups into samples. Groups
// with a malformed limit or remaining value drop out individually; metric
// names the response never mentioned are omitted, not synthesized.
func buildSnapshot(h http.Header, fetchedAt time.Time) core.UsageSnapshot {
	groups := parsers.CollectGroups(h, parsers.RateLimitPrefix)

	snap := core.UsageSnapshot{FetchedAt: fetchedAt}
	for _, spec := range metricSpecs {
		g, found := groups[spec.Key]
		if !found || !g.Complete() {
			continue
		}
		sample := core.NewRemainingSample(spec.Key, spec.Label, *g.Limit, *g.Remaining)
		sample.ResetAt = g.ResetAt
		sample.ResetRaw = g.ResetRaw
		snap.Samples = append(snap.Samples, sample)
	}
	return snap
}

func envName(acct core.AccountConfig) string {
	if acct.APIKeyEnv != "" {
		return acct.APIKeyEnv
	}
	return "ANTHROPIC_API_KEY"
}
