package client

import (
	"testing"
	"time"
)

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	var p RetryPolicy

	tests := []struct {
		name       string
		kind       ErrorKind
		attempt    int
		maxRetries int
		want       bool
	}{
		{"network retryable", KindNetwork, 0, 3, true},
		{"server retryable", KindServer, 0, 3, true},
		{"auth never retried", KindAuth, 0, 3, false},
		{"validation never retried", KindValidation, 0, 3, false},
		{"rate limited never retried", KindRateLimited, 0, 3, false},
		{"unknown never retried", KindUnknown, 0, 3, false},
		{"budget exhausted", KindServer, 3, 3, false},
		{"last allowed attempt", KindServer, 2, 3, true},
		{"zero budget", KindNetwork, 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.ShouldRetry(tt.kind, tt.attempt, tt.maxRetries)
			if got != tt.want {
				t.Errorf(
					"ShouldRetry(%s, attempt=%d, max=%d) = %v, want %v",
					tt.kind, tt.attempt, tt.maxRetries, got, tt.want,
				)
			}
		})
	}
}

func TestRetryPolicy_DelayFor(t *testing.T) {
	var p RetryPolicy
	base := 100 * time.Millisecond

	// Exponential: base, 2*base, 4*base
	for attempt, want := range []time.Duration{
		100 * time.Millisecond,
		200 * time.Millisecond,
		400 * time.Millisecond,
	} {
		if got := p.DelayFor(attempt, base); got != want {
			t.Errorf("DelayFor(%d) = %v, want %v", attempt, got, want)
		}
	}

	// A non-positive base falls back to the default
	if got := p.DelayFor(0, 0); got != DefaultRetryDelay {
		t.Errorf("DelayFor(0, 0) = %v, want %v", got, DefaultRetryDelay)
	}
}

func TestDefaultRetries(t *testing.T) {
	if got := defaultRetries("GET"); got != DefaultGetRetries {
		t.Errorf("GET retries = %d, want %d", got, DefaultGetRetries)
	}
	for _, method := range []string{"POST", "PUT", "PATCH", "DELETE"} {
		if got := defaultRetries(method); got != DefaultMutateRetries {
			t.Errorf("%s retries = %d, want %d", method, got, DefaultMutateRetries)
		}
	}
}
