// Package claudeplan polls the plan-usage endpoint for Claude subscription
// accounts and normalizes the five-hour and seven-day usage windows into
// metric samples. Percentages here mean "capacity used", so the provider
// carries the consumption aggregation policy.
package claudeplan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/janekbaraniewski/tokenmeter/internal/core"
	"github.com/janekbaraniewski/tokenmeter/internal/credentials"
	"github.com/janekbaraniewski/tokenmeter/internal/parsers"
	"github.com/janekbaraniewski/tokenmeter/internal/providers/providerbase"
	"github.com/janekbaraniewski/tokenmeter/internal/providers/shared"
)

const defaultBaseURL = "https://api.anthropic.com"

var metricSpecs = []core.MetricSpec{
	{Key: "five_hour", Label: "5-hour window"},
	{Key: "seven_day", Label: "7-day window"},
}

type usageWindow struct {
	Utilization *float64 `json:"utilization"`
	ResetsAt    string   `json:"resets_at"`
}

type usageResponse struct {
	FiveHour *usageWindow `json:"five_hour"`
	SevenDay *usageWindow `json:"seven_day"`
}

type Provider struct {
	providerbase.Base
}

func New() *Provider {
	return &Provider{
		Base: providerbase.New(core.ProviderSpec{
			ID: "claudeplan",
			Info: core.ProviderInfo{
				Name:         "Claude Plan",
				Capabilities: []string{"usage_endpoint"},
				DocURL:       "https://support.claude.com/en/articles/8324991",
			},
			Metrics: metricSpecs,
			Policy:  core.PolicyConsumption,
		}),
	}
}

func (p *Provider) Fetch(ctx context.Context, acct core.AccountConfig) (core.FetchOutcome, error) {
	cred, err := credentials.Resolve(acct)
	if err != nil {
		return core.FetchOutcome{
			Status:  core.StatusNoCredential,
			Message: "no Claude credential (sign in to the desktop app or set a token)",
		}, nil
	}
	return p.fetchWithCredential(ctx, acct, cred)
}

func (p *Provider) fetchWithCredential(ctx context.Context, acct core.AccountConfig, cred credentials.Credential) (core.FetchOutcome, error) {
	baseURL := acct.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	headers := map[string]string{
		"Content-Type":      "application/json",
		"anthropic-version": "2023-06-01",
		"anthropic-beta":    "oauth-2025-04-20",
	}
	if cred.FromCookie {
		headers["Cookie"] = "sessionKey=" + cred.Token
	} else {
		headers["Authorization"] = "Bearer " + cred.Token
	}

	req, err := shared.NewRequest(ctx, http.MethodGet, baseURL+"/api/oauth/usage", nil, headers)
	if err != nil {
		return core.FetchOutcome{}, fmt.Errorf("claudeplan: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return shared.TransportOutcome(err), nil
	}
	defer resp.Body.Close()

	if outcome, ok := shared.ClassifyResponse(resp); !ok {
		return outcome, nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return shared.TransportOutcome(err), nil
	}

	var usage usageResponse
	if err := json.Unmarshal(body, &usage); err != nil {
		return core.FetchOutcome{
			Status:  core.StatusUpstream,
			Message: "unreadable usage document",
		}, nil
	}

	snap := buildSnapshot(usage, time.Now().UTC())
	return core.FetchOutcome{Status: core.StatusOK, Message: "OK", Snapshot: &snap}, nil
}

// buildSnapshot emits one sample per window that actually reported a
// utilization. A missing window or missing utilization omits the metric
// entirely; the render layer shows a placeholder row, never a zero bar.
func buildSnapshot(usage usageResponse, fetchedAt time.Time) core.UsageSnapshot {
	windows := map[string]*usageWindow{
		"five_hour": usage.FiveHour,
		"seven_day": usage.SevenDay,
	}

	snap := core.UsageSnapshot{FetchedAt: fetchedAt}
	for _, spec := range metricSpecs {
		w := windows[spec.Key]
		if w == nil || w.Utilization == nil {
			continue
		}
		sample := core.NewUtilizationSample(spec.Key, spec.Label, *w.Utilization)
		sample.ResetRaw = w.ResetsAt
		sample.ResetAt = parsers.ParseResetTime(w.ResetsAt)
		snap.Samples = append(snap.Samples, sample)
	}
	return snap
}
