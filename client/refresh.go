package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	retry "github.com/appleboy/go-httpretry"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"github.com/DavidOeztuerk/Skillswap-sub002/token"
)

// refreshRequest is the refresh endpoint contract: the current (possibly
// expired) access token travels along with the refresh token.
type refreshRequest struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshResponse is the expected success body. The refresh token is
// optional: servers running without rotation omit it.
type refreshResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// refreshResult is what every waiter of one refresh attempt receives.
type refreshResult struct {
	access string
	err    error
}

// Refresher serializes token refreshes: no matter how many requests hit a
// 401 at once, at most one refresh call is on the wire, and everyone waits
// for its outcome. It is the only writer of the token store.
type Refresher struct {
	cfg   Config
	store token.Store
	httpc *retry.Client
	log   logrus.FieldLogger

	mu         sync.Mutex
	refreshing bool
	waiters    []chan refreshResult
	lastStart  time.Time
	lastResult refreshResult
	hasResult  bool
}

// NewRefresher builds a Refresher sending refresh calls through a
// go-httpretry client wrapped around base (nil means a default client).
func NewRefresher(cfg Config, store token.Store, base *http.Client, log logrus.FieldLogger) (*Refresher, error) {
	cfg.applyDefaults()

	opts := []retry.Option{}
	if base != nil {
		opts = append(opts, retry.WithHTTPClient(base))
	}
	httpc, err := retry.NewBackgroundClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create retry client: %w", err)
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Refresher{
		cfg:   cfg,
		store: store,
		httpc: httpc,
		log:   log.WithField("component", "refresher"),
	}, nil
}

// Refresh returns a valid access token, performing at most one network
// refresh across all concurrent callers.
//
// The first caller while idle starts the refresh; callers arriving while it
// runs are queued and resolved in FIFO order with the same outcome. A caller
// arriving within the cooldown window after the previous attempt started is
// resolved from that attempt's recorded outcome without a new network call,
// which keeps a burst of near-simultaneous 401s from turning into a refresh
// storm.
//
// The network call runs detached from the initiating caller's context:
// cancelling a request only abandons that caller's wait, it never aborts a
// refresh other callers depend on. The call itself is bounded by
// RefreshTimeout.
func (r *Refresher) Refresh(ctx context.Context) (string, error) {
	r.mu.Lock()

	if !r.refreshing {
		if r.hasResult && time.Since(r.lastStart) < r.cfg.RefreshCooldown {
			res := r.lastResult
			r.mu.Unlock()
			return res.access, res.err
		}

		r.refreshing = true
		r.lastStart = time.Now()

		// finish clears the refreshing flag on every path; doRefresh never
		// escapes without a result. The initiator waits on the queue like
		// everyone else.
		runCtx := context.WithoutCancel(ctx)
		go func() {
			r.finish(r.doRefresh(runCtx))
		}()
	}

	ch := make(chan refreshResult, 1)
	r.waiters = append(r.waiters, ch)
	r.mu.Unlock()

	select {
	case res := <-ch:
		return res.access, res.err
	case <-ctx.Done():
		return "", &APIError{Kind: KindNetwork, Message: "refresh wait canceled", Err: ctx.Err()}
	}
}

// finish records the outcome, releases the single-flight flag, and drains
// the queue in arrival order.
func (r *Refresher) finish(res refreshResult) {
	r.mu.Lock()
	r.lastResult = res
	r.hasResult = true
	r.refreshing = false
	waiters := r.waiters
	r.waiters = nil
	r.mu.Unlock()

	for _, ch := range waiters {
		ch <- res
	}
}

// doRefresh performs the network call and the store update.
func (r *Refresher) doRefresh(ctx context.Context) refreshResult {
	refreshTok := r.store.RefreshToken()
	if refreshTok == "" {
		return refreshResult{err: &APIError{
			Kind:    KindAuth,
			Message: "no refresh token available",
			Err:     ErrSessionExpired,
		}}
	}

	tok, err := r.callRefreshEndpoint(ctx, refreshTok)
	if err != nil {
		kind := KindOf(err)
		if kind == KindAuth || kind == KindPermission {
			// Terminal: the session is gone, wipe both tokens. The caller
			// redirects to a login surface.
			if clearErr := r.store.Clear(); clearErr != nil {
				r.log.WithError(clearErr).Warn("failed to clear tokens after terminal refresh failure")
			}
			r.log.WithField("kind", kind.String()).Warn("refresh token rejected, session ended")
		} else {
			// Transient: keep the tokens, the next trigger may try again.
			r.log.WithError(err).WithField("kind", kind.String()).Warn("token refresh failed")
		}
		return refreshResult{err: err}
	}

	if err := r.store.UpdateTokens(tok.AccessToken, tok.RefreshToken); err != nil {
		return refreshResult{err: &APIError{
			Kind:    KindUnknown,
			Message: "failed to persist refreshed tokens",
			Err:     err,
		}}
	}

	r.log.WithField("expires_in", time.Until(tok.Expiry).Round(time.Second)).Debug("token refreshed")
	return refreshResult{access: tok.AccessToken}
}

// callRefreshEndpoint posts the token pair and parses the rotated pair from
// the response.
func (r *Refresher) callRefreshEndpoint(ctx context.Context, refreshTok string) (*oauth2.Token, error) {
	payload, err := json.Marshal(refreshRequest{
		AccessToken:  r.store.AccessToken(),
		RefreshToken: refreshTok,
	})
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to encode refresh request", Err: err}
	}

	reqCtx, cancel := context.WithTimeout(ctx, r.cfg.RefreshTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(
		reqCtx,
		http.MethodPost,
		r.cfg.BaseURL+r.cfg.RefreshPath,
		bytes.NewReader(payload),
	)
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to create refresh request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpc.DoWithContext(reqCtx, req)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: "refresh request failed", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Kind: KindNetwork, Message: "failed to read refresh response", Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		kind := Classify(resp.StatusCode, nil)
		apiErr := &APIError{
			Kind:    kind,
			Status:  resp.StatusCode,
			Message: "token refresh rejected",
		}
		if kind == KindAuth {
			apiErr.Err = ErrSessionExpired
		}
		return nil, apiErr
	}

	return parseRefreshResponse(body, refreshTok)
}

// parseRefreshResponse validates the body and applies the rotation rule:
// a missing refresh token in the response means the server does not rotate,
// so the old one stays valid.
func parseRefreshResponse(body []byte, oldRefresh string) (*oauth2.Token, error) {
	var parsed refreshResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to parse refresh response", Err: err}
	}

	if err := validateAccessToken(parsed.AccessToken); err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "invalid refresh response", Err: err}
	}

	newRefresh := parsed.RefreshToken
	if newRefresh == "" {
		newRefresh = oldRefresh
	}

	tok := &oauth2.Token{
		AccessToken:  parsed.AccessToken,
		RefreshToken: newRefresh,
		TokenType:    "Bearer",
	}
	if remaining, ok := token.TimeUntilExpiry(parsed.AccessToken); ok {
		tok.Expiry = time.Now().Add(remaining)
	}
	return tok, nil
}

// validateAccessToken rejects obviously broken access tokens before they
// are stored.
func validateAccessToken(access string) error {
	if access == "" {
		return errors.New("accessToken is empty")
	}
	if len(access) < 10 {
		return fmt.Errorf("accessToken is too short (length: %d)", len(access))
	}
	return nil
}
