package shared

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/janekbaraniewski/tokenmeter/internal/core"
)

func fakeResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestClassifyResponse(t *testing.T) {
	tests := []struct {
		status     int
		body       string
		wantStatus core.Status
		wantOK     bool
	}{
		{200, "", "", true},
		{401, "", core.StatusAuth, false},
		{403, "", core.StatusAuth, false},
		{429, "", core.StatusLimited, false},
		{500, "", core.StatusUpstream, false},
		{400, `{"error":{"message":"bad request"}}`, core.StatusUpstream, false},
	}
	for _, tt := range tests {
		outcome, ok := ClassifyResponse(fakeResponse(tt.status, tt.body))
		if ok != tt.wantOK {
			t.Errorf("status %d: ok = %v, want %v", tt.status, ok, tt.wantOK)
		}
		if !ok {
			if outcome.Status != tt.wantStatus {
				t.Errorf("status %d: outcome = %v, want %v", tt.status, outcome.Status, tt.wantStatus)
			}
			if outcome.Message == "" {
				t.Errorf("status %d: empty outcome message", tt.status)
			}
		}
	}
}

func TestErrorMessage(t *testing.T) {
	got := ErrorMessage(fakeResponse(400, `{"error":{"message":"model not found"}}`))
	if got != "model not found" {
		t.Errorf("ErrorMessage = %q, want %q", got, "model not found")
	}

	got = ErrorMessage(fakeResponse(502, "<html>gateway</html>"))
	if got != "HTTP 502" {
		t.Errorf("ErrorMessage on non-JSON = %q, want HTTP 502", got)
	}

	long := strings.Repeat("x", 200)
	got = ErrorMessage(fakeResponse(400, `{"error":{"message":"`+long+`"}}`))
	if len([]rune(got)) != 80 {
		t.Errorf("ErrorMessage length = %d, want 80", len([]rune(got)))
	}
}

func TestTransportOutcome(t *testing.T) {
	out := TransportOutcome(errors.New("dial tcp: connection refused"))
	if out.Status != core.StatusOffline {
		t.Errorf("Status = %v, want OFFLINE", out.Status)
	}
	if out.Message != "no connection" {
		t.Errorf("Message = %q", out.Message)
	}

	out = TransportOutcome(context.DeadlineExceeded)
	if out.Status != core.StatusOffline || out.Message != "request timed out" {
		t.Errorf("timeout outcome = %+v", out)
	}
}

func TestTruncate(t *testing.T) {
	if got := Truncate("héllo", 3); got != "hél" {
		t.Errorf("Truncate = %q, want rune-safe prefix", got)
	}
	if got := Truncate("ok", 10); got != "ok" {
		t.Errorf("Truncate short = %q", got)
	}
}
