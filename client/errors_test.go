package client

import (
	"errors"
	"fmt"
	"testing"
)

func TestClassify(t *testing.T) {
	netErr := errors.New("connection refused")

	tests := []struct {
		name   string
		status int
		err    error
		want   ErrorKind
	}{
		{"transport error", 0, netErr, KindNetwork},
		{"no status no error", 0, nil, KindUnknown},
		{"unauthorized", 401, nil, KindAuth},
		{"forbidden", 403, nil, KindAuth},
		{"rate limited", 429, nil, KindRateLimited},
		{"bad request", 400, nil, KindValidation},
		{"not found", 404, nil, KindValidation},
		{"conflict", 409, nil, KindValidation},
		{"unprocessable", 422, nil, KindValidation},
		{"internal error", 500, nil, KindServer},
		{"bad gateway", 502, nil, KindServer},
		{"service unavailable", 503, nil, KindServer},
		{"teapot", 418, nil, KindUnknown},
		{"redirect", 302, nil, KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.status, tt.err); got != tt.want {
				t.Errorf("Classify(%d, %v) = %s, want %s", tt.status, tt.err, got, tt.want)
			}
		})
	}
}

func TestClassify_Deterministic(t *testing.T) {
	// Same inputs must always land in the same bucket
	for i := 0; i < 100; i++ {
		if got := Classify(429, nil); got != KindRateLimited {
			t.Fatalf("Classify(429) changed to %s on iteration %d", got, i)
		}
	}
}

func TestAPIError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("dial tcp: timeout")
	err := &APIError{Kind: KindNetwork, Message: "request failed", Err: cause}

	if !errors.Is(err, cause) {
		t.Error("Expected Unwrap to expose the cause")
	}
	if got := err.Error(); got != "network: request failed" {
		t.Errorf("Unexpected error string: %s", got)
	}

	withStatus := &APIError{Kind: KindServer, Status: 503, Message: "upstream down"}
	if got := withStatus.Error(); got != "server (503): upstream down" {
		t.Errorf("Unexpected error string: %s", got)
	}
}

func TestKindOf(t *testing.T) {
	apiErr := &APIError{Kind: KindValidation, Status: 422, Message: "bad field"}

	if got := KindOf(apiErr); got != KindValidation {
		t.Errorf("KindOf(APIError) = %s, want validation", got)
	}
	if got := KindOf(fmt.Errorf("wrapped: %w", apiErr)); got != KindValidation {
		t.Errorf("KindOf(wrapped APIError) = %s, want validation", got)
	}
	if got := KindOf(errors.New("plain")); got != KindUnknown {
		t.Errorf("KindOf(plain error) = %s, want unknown", got)
	}
}
