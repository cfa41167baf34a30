package core

import (
	"context"
	"os"
)

// AccountConfig carries the per-deployment settings a provider needs to
// fetch: where to probe and how to authenticate.
type AccountConfig struct {
	ID         string `json:"id"`
	Provider   string `json:"provider"`
	APIKeyEnv  string `json:"api_key_env,omitempty"`  // env var name holding the API key
	ProbeModel string `json:"probe_model,omitempty"`  // model used for header-probe requests
	BaseURL    string `json:"base_url,omitempty"`     // custom API base URL (tests, proxies)
	Token      string `json:"-"`                      // runtime-only: resolved credential (never persisted)
}

func (c AccountConfig) ResolveAPIKey() string {
	if c.Token != "" {
		return c.Token
	}
	return os.Getenv(c.APIKeyEnv)
}

// UsageProvider is one normalization strategy: it performs the single round
// trip for a fetch cycle and converts whatever came back into a FetchOutcome.
// Every failure is absorbed into the outcome; the returned error is reserved
// for request-construction bugs and is mapped to an upstream-error outcome by
// the engine.
type UsageProvider interface {
	ID() string

	Describe() ProviderInfo

	// Metrics lists the metric keys this provider can emit, in display order.
	Metrics() []MetricSpec

	// Policy declares how this provider's percentages aggregate.
	Policy() Policy

	Fetch(ctx context.Context, acct AccountConfig) (FetchOutcome, error)
}
