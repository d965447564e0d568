// Package client is the authenticated HTTP transport for the SkillSwap
// backend. Every API call the SDK makes flows through one pipeline that
// attaches the bearer token, refreshes it transparently on 401, retries
// transient failures with exponential backoff, and maps failures onto a
// closed error taxonomy.
package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind is the closed failure taxonomy. All branching after a failed
// attempt keys off the kind, never off raw status codes.
type ErrorKind int

const (
	// KindUnknown covers statuses outside every other bucket.
	KindUnknown ErrorKind = iota
	// KindNetwork: transport failure or timeout, no HTTP status received.
	KindNetwork
	// KindAuth: 401/403, the credential was rejected.
	KindAuth
	// KindValidation: the request itself was wrong (400, 404, 409, 422).
	KindValidation
	// KindServer: 5xx, the backend failed.
	KindServer
	// KindPermission: the caller is authenticated but not allowed. Produced
	// by collaborators that map backend error codes; Classify folds 403 into
	// KindAuth.
	KindPermission
	// KindRateLimited: 429. Never retried even though the status is >= 400.
	KindRateLimited
)

func (k ErrorKind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	case KindPermission:
		return "permission"
	case KindRateLimited:
		return "rate_limited"
	default:
		return "unknown"
	}
}

// Classify maps a failed attempt onto its ErrorKind. status is 0 when no
// response was received. The 429 check runs before the generic 4xx bucket
// on purpose: rate limiting must never be mistaken for a validation error.
func Classify(status int, err error) ErrorKind {
	if status == 0 {
		if err != nil {
			return KindNetwork
		}
		return KindUnknown
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindAuth
	case status == http.StatusTooManyRequests:
		return KindRateLimited
	case status == http.StatusBadRequest ||
		status == http.StatusNotFound ||
		status == http.StatusConflict ||
		status == http.StatusUnprocessableEntity:
		return KindValidation
	case status >= 500:
		return KindServer
	default:
		return KindUnknown
	}
}

// APIError is the failure value surfaced to callers: the classified kind,
// the original status for presentation, and the underlying cause if any.
type APIError struct {
	Kind    ErrorKind
	Status  int
	Message string
	Err     error
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// KindOf extracts the ErrorKind from an error chain. Errors that are not
// APIErrors report KindUnknown.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return KindUnknown
}

// ErrSessionExpired indicates that the refresh token itself was rejected.
// Tokens have been cleared; the caller must send the user back to a login
// surface.
var ErrSessionExpired = errors.New("session expired, login required")
