package client

import (
	"net/http"
	"time"
)

// Retry defaults. GETs are idempotent and retried; mutating verbs are not,
// unless a caller opts in per request.
const (
	DefaultGetRetries    = 3
	DefaultMutateRetries = 0
	DefaultRetryDelay    = 500 * time.Millisecond
)

// RetryPolicy decides whether a classified failure is retried and how long
// to wait before the next attempt. It is stateless; the pipeline owns the
// attempt counter.
type RetryPolicy struct{}

// ShouldRetry reports whether another attempt is allowed. Only Network and
// Server failures are retryable; Auth is handled by the refresh path, and
// everything else (including RateLimited) surfaces immediately.
func (RetryPolicy) ShouldRetry(kind ErrorKind, attempt, maxRetries int) bool {
	if attempt >= maxRetries {
		return false
	}
	return kind == KindNetwork || kind == KindServer
}

// DelayFor returns the backoff before retrying attempt (counted from 0):
// base, 2*base, 4*base, ...
func (RetryPolicy) DelayFor(attempt int, base time.Duration) time.Duration {
	if base <= 0 {
		base = DefaultRetryDelay
	}
	return base << attempt
}

// defaultRetries returns the retry budget for a verb when the caller did not
// override it.
func defaultRetries(method string) int {
	if method == http.MethodGet {
		return DefaultGetRetries
	}
	return DefaultMutateRetries
}
