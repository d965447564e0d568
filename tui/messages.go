package tui

import (
	"time"
)

// MsgBanner signals that the banner/title should be displayed.
type MsgBanner struct{}

// MsgTokensFound signals that a stored token pair was found.
type MsgTokensFound struct{}

// MsgTokenValid signals that the stored access token is still valid.
type MsgTokenValid struct{}

// MsgTokenExpired signals that the access token has expired.
type MsgTokenExpired struct{}

// MsgTokensNotFound signals that no tokens were found (fresh login needed).
type MsgTokensNotFound struct{}

// MsgRefreshing signals that a token refresh is in progress.
type MsgRefreshing struct{}

// MsgRefreshOK signals that the token was refreshed successfully.
type MsgRefreshOK struct{}

// MsgRefreshFailed signals that token refresh failed.
type MsgRefreshFailed struct{ Err error }

// MsgSessionExpired signals that the refresh token was rejected and a fresh
// login is required.
type MsgSessionExpired struct{}

// MsgLoggingIn signals that a password login has started.
type MsgLoggingIn struct{ Email string }

// MsgLoginOK signals that login succeeded.
type MsgLoginOK struct{}

// MsgTokenSaved signals that tokens were persisted.
type MsgTokenSaved struct{ Path string }

// MsgTokenSaveFailed signals that persisting tokens failed.
type MsgTokenSaveFailed struct{ Err error }

// MsgFetchingProfile signals that the authenticated profile request started.
type MsgFetchingProfile struct{}

// MsgProfileOK signals that the profile request succeeded.
type MsgProfileOK struct{ Summary string }

// MsgProfileFailed signals that the profile request failed.
type MsgProfileFailed struct{ Err error }

// MsgDone signals successful completion of the session flow.
type MsgDone struct {
	Preview     string
	Persistence string
	ExpiresIn   time.Duration
}

// MsgFatal signals a fatal error that should terminate the flow.
type MsgFatal struct{ Err error }
