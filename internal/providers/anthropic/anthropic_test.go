package anthropic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/janekbaraniewski/tokenmeter/internal/core"
)

func testAccount(baseURL string) core.AccountConfig {
	return core.AccountConfig{
		ID:       "test-anthropic",
		Provider: "anthropic",
		Token:    "test-key",
		BaseURL:  baseURL,
	}
}

func TestFetch_ParsesHeaders(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("x-api-key") != "test-key" {
			t.Errorf("missing x-api-key header")
		}
		w.Header().Set("anthropic-ratelimit-input-tokens-limit", "1000")
		w.Header().Set("anthropic-ratelimit-input-tokens-remaining", "250")
		w.Header().Set("anthropic-ratelimit-input-tokens-reset", "2025-06-01T00:00:00Z")
		w.Header().Set("anthropic-ratelimit-requests-limit", "50")
		w.Header().Set("anthropic-ratelimit-requests-remaining", "49")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"id":"msg_test"}`))
	}))
	defer server.Close()

	p := New()
	outcome, err := p.Fetch(context.Background(), testAccount(server.URL))
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if outcome.Status != core.StatusOK {
		t.Fatalf("Status = %v, want OK", outcome.Status)
	}
	if outcome.Snapshot == nil {
		t.Fatal("nil snapshot on OK outcome")
	}

	in, ok := outcome.Snapshot.Sample("input-tokens")
	if !ok {
		t.Fatal("missing input-tokens sample")
	}
	if in.Used == nil || *in.Used != 750 {
		t.Errorf("input-tokens Used = %v, want 750", in.Used)
	}
	if in.Percent != 25 {
		t.Errorf("input-tokens Percent = %v, want 25", in.Percent)
	}
	if in.ResetRaw != "2025-06-01T00:00:00Z" {
		t.Errorf("input-tokens ResetRaw = %q", in.ResetRaw)
	}

	// Metric groups the response never mentioned must be omitted.
	if _, ok := outcome.Snapshot.Sample("output-tokens"); ok {
		t.Error("output-tokens synthesized from absent headers")
	}

	// Samples follow the fixed display order.
	if outcome.Snapshot.Samples[0].Key != "input-tokens" || outcome.Snapshot.Samples[1].Key != "requests" {
		t.Errorf("sample order = %v", outcome.Snapshot.Samples)
	}
}

func TestFetch_MalformedMetricDropsOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("anthropic-ratelimit-tokens-limit", "oops")
		w.Header().Set("anthropic-ratelimit-tokens-remaining", "40")
		w.Header().Set("anthropic-ratelimit-requests-limit", "50")
		w.Header().Set("anthropic-ratelimit-requests-remaining", "10")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := New()
	outcome, err := p.Fetch(context.Background(), testAccount(server.URL))
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if outcome.Status != core.StatusOK {
		t.Fatalf("Status = %v, want OK (single malformed metric must not fail the fetch)", outcome.Status)
	}
	if _, ok := outcome.Snapshot.Sample("tokens"); ok {
		t.Error("malformed tokens metric should be omitted")
	}
	if _, ok := outcome.Snapshot.Sample("requests"); !ok {
		t.Error("requests metric missing")
	}
}

func TestFetch_ZeroLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("anthropic-ratelimit-requests-limit", "0")
		w.Header().Set("anthropic-ratelimit-requests-remaining", "0")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	p := New()
	outcome, _ := p.Fetch(context.Background(), testAccount(server.URL))
	s, ok := outcome.Snapshot.Sample("requests")
	if !ok {
		t.Fatal("requests sample missing")
	}
	if s.Percent != 0 {
		t.Errorf("zero-limit Percent = %v, want 0", s.Percent)
	}
}

func TestFetch_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	}))
	defer server.Close()

	p := New()
	outcome, err := p.Fetch(context.Background(), testAccount(server.URL))
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if outcome.Status != core.StatusAuth {
		t.Errorf("Status = %v, want AUTH_REQUIRED", outcome.Status)
	}
	if outcome.Snapshot != nil {
		t.Error("auth outcome should carry no snapshot")
	}
	if outcome.Message == "" {
		t.Error("auth outcome has empty message")
	}
}

func TestFetch_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	p := New()
	outcome, _ := p.Fetch(context.Background(), testAccount(server.URL))
	if outcome.Status != core.StatusLimited {
		t.Errorf("Status = %v, want LIMITED", outcome.Status)
	}
}

func TestFetch_UpstreamErrorMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"type":"invalid_request_error","message":"max_tokens must be positive"}}`))
	}))
	defer server.Close()

	p := New()
	outcome, _ := p.Fetch(context.Background(), testAccount(server.URL))
	if outcome.Status != core.StatusUpstream {
		t.Errorf("Status = %v, want UPSTREAM_ERROR", outcome.Status)
	}
	if outcome.Message != "max_tokens must be positive" {
		t.Errorf("Message = %q", outcome.Message)
	}
}

func TestFetch_NoCredential(t *testing.T) {
	p := New()
	outcome, err := p.Fetch(context.Background(), core.AccountConfig{
		ID:        "test",
		Provider:  "anthropic",
		APIKeyEnv: "TOKENMETER_TEST_UNSET_KEY",
	})
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if outcome.Status != core.StatusNoCredential {
		t.Errorf("Status = %v, want NO_CREDENTIAL", outcome.Status)
	}
}

func TestFetch_TransportError(t *testing.T) {
	p := New()
	// Closed server → connection refused.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	outcome, err := p.Fetch(context.Background(), testAccount(url))
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if outcome.Status != core.StatusOffline {
		t.Errorf("Status = %v, want OFFLINE", outcome.Status)
	}
}
