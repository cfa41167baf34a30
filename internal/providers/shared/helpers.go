// Package shared holds the request/response plumbing common to all
// providers: header setup, status-code classification and error-body
// extraction. Providers convert every failure into a FetchOutcome here so
// nothing escapes the fetch boundary.
package shared

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/janekbaraniewski/tokenmeter/internal/core"
)

// maxErrorMessageLen bounds upstream error text for display.
const maxErrorMessageLen = 80

func NewRequest(ctx context.Context, method, url string, body io.Reader, headers map[string]string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	return req, nil
}

// TransportOutcome maps a client.Do error to the offline outcome. Timeouts
// and connectivity failures look the same to the display layer.
func TransportOutcome(err error) core.FetchOutcome {
	msg := "no connection"
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		msg = "request timed out"
	}
	return core.FetchOutcome{Status: core.StatusOffline, Message: msg}
}

// ClassifyResponse turns a terminal HTTP status into its outcome. ok=false
// means the response was handled and the caller should return the outcome
// without parsing metrics. 2xx responses report ok=true.
func ClassifyResponse(resp *http.Response) (outcome core.FetchOutcome, ok bool) {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return core.FetchOutcome{
			Status:  core.StatusAuth,
			Message: fmt.Sprintf("invalid API key (HTTP %d)", resp.StatusCode),
		}, false
	case resp.StatusCode == http.StatusTooManyRequests:
		return core.FetchOutcome{
			Status:  core.StatusLimited,
			Message: "rate limited (HTTP 429)",
		}, false
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return core.FetchOutcome{
			Status:  core.StatusUpstream,
			Message: ErrorMessage(resp),
		}, false
	}
	return core.FetchOutcome{}, true
}

// ErrorMessage extracts a readable message from an error response body
// ({"error":{"message":...}}), truncated for display, falling back to the
// bare status code.
func ErrorMessage(resp *http.Response) string {
	fallback := fmt.Sprintf("HTTP %d", resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil || len(body) == 0 {
		return fallback
	}

	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}

	msg := strings.TrimSpace(payload.Error.Message)
	if msg == "" {
		return fallback
	}
	return Truncate(msg, maxErrorMessageLen)
}

// Truncate bounds a string to max runes.
func Truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
