package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/DavidOeztuerk/Skillswap-sub002/token"
)

// RequestOptions are the per-request knobs. The zero value is valid and
// means "use the client defaults".
type RequestOptions struct {
	// Headers are merged over the defaults.
	Headers http.Header
	// Params are appended to the URL as a query string.
	Params url.Values
	// Timeout bounds one attempt; zero uses the client default.
	Timeout time.Duration
	// MaxRetries overrides the per-verb default when non-nil.
	MaxRetries *int
	// RetryDelay overrides the base backoff when positive.
	RetryDelay time.Duration
	// SkipAuth omits the Authorization header. Used by login and register,
	// which by definition have no token yet.
	SkipAuth bool
}

// Response is a completed 2xx exchange. Body holds the raw payload: JSON
// and text are decoded on demand, anything else is treated as opaque bytes.
// A 204 leaves Body empty.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if len(r.Body) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

// Text returns the body as a string.
func (r *Response) Text() string {
	return string(r.Body)
}

// ContentType returns the media type of the response without parameters.
func (r *Response) ContentType() string {
	ct := r.Header.Get("Content-Type")
	if i := strings.IndexByte(ct, ';'); i >= 0 {
		ct = ct[:i]
	}
	return strings.TrimSpace(ct)
}

// Client is the request pipeline every SkillSwap API call goes through. It
// reads the token store to attach credentials but never writes it; token
// mutation is the Refresher's job.
type Client struct {
	cfg       Config
	httpc     *http.Client
	store     token.Store
	refresher *Refresher
	policy    RetryPolicy
	log       logrus.FieldLogger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (tests, custom
// transports).
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithLogger sets the structured logger.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New builds a Client for cfg backed by store. The refresher is created
// internally so that reactive (401) and proactive (scheduler) refreshes
// share one single-flight coordinator.
func New(cfg Config, store token.Store, opts ...Option) (*Client, error) {
	cfg.applyDefaults()
	if err := ValidateBaseURL(cfg.BaseURL); err != nil {
		return nil, err
	}

	c := &Client{
		cfg:   cfg,
		store: store,
		log:   logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpc == nil {
		c.httpc = defaultHTTPClient()
	}

	refresher, err := NewRefresher(cfg, store, c.httpc, c.log)
	if err != nil {
		return nil, err
	}
	c.refresher = refresher
	c.log = c.log.WithField("component", "client")

	return c, nil
}

// Refresher exposes the shared refresh coordinator, e.g. for a Scheduler.
func (c *Client) Refresher() *Refresher {
	return c.refresher
}

// defaultHTTPClient mirrors production transport settings: modern TLS,
// pooled keep-alive connections. Per-request timeouts come from contexts,
// not from the client itself.
func defaultHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				MinVersion: tls.VersionTLS12,
			},
			MaxIdleConns:        10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
			DisableKeepAlives:   false,
		},
	}
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodGet, path, nil, opts)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodPost, path, body, opts)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body any, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodPut, path, body, opts)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodPatch, path, body, opts)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, opts *RequestOptions) (*Response, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, opts)
}

// Do sends a request and decodes the JSON response body into T.
func Do[T any](ctx context.Context, c *Client, method, path string, body any, opts *RequestOptions) (T, error) {
	var out T
	res, err := c.Request(ctx, method, path, body, opts)
	if err != nil {
		return out, err
	}
	if err := res.JSON(&out); err != nil {
		return out, &APIError{Kind: KindUnknown, Status: res.Status, Message: "failed to decode response", Err: err}
	}
	return out, nil
}

// Request sends one logical API call through the pipeline:
//
//  1. attach the bearer token from the store (unless SkipAuth)
//  2. send with a per-attempt timeout; timeouts classify as network errors
//  3. on the first 401, refresh through the coordinator and resend the same
//     request exactly once; a 401 on that resend is a terminal auth failure
//  4. other failures are classified and retried per the RetryPolicy with
//     exponential backoff, bounded by the verb's retry budget
//  5. a 2xx returns the raw body for content-type-aware decoding
//
// The caller-supplied body is marshaled once up front and never mutated.
func (c *Client) Request(ctx context.Context, method, path string, body any, opts *RequestOptions) (*Response, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}

	payload, err := encodeBody(body)
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to encode request body", Err: err}
	}

	maxRetries := defaultRetries(method)
	if opts.MaxRetries != nil {
		maxRetries = *opts.MaxRetries
	}
	baseDelay := c.cfg.RetryDelay
	if opts.RetryDelay > 0 {
		baseDelay = opts.RetryDelay
	}

	reqURL := c.buildURL(path, opts.Params)
	requestID := uuid.NewString()
	refreshed := false

	for attempt := 0; ; attempt++ {
		res, sendErr := c.attempt(ctx, method, reqURL, payload, opts, requestID)

		if sendErr == nil && res.Status == http.StatusUnauthorized && !opts.SkipAuth {
			if refreshed {
				// The retried attempt was rejected too; do not refresh again.
				return nil, &APIError{
					Kind:    KindAuth,
					Status:  http.StatusUnauthorized,
					Message: "unauthorized after token refresh",
				}
			}
			refreshed = true

			if _, refreshErr := c.refresher.Refresh(ctx); refreshErr != nil {
				return nil, refreshErr
			}

			c.log.WithField("request_id", requestID).Debug("token refreshed, retrying request")
			res, sendErr = c.attempt(ctx, method, reqURL, payload, opts, requestID)
			if sendErr == nil && res.Status == http.StatusUnauthorized {
				return nil, &APIError{
					Kind:    KindAuth,
					Status:  http.StatusUnauthorized,
					Message: "unauthorized after token refresh",
				}
			}
		}

		if sendErr == nil && res.Status >= 200 && res.Status < 300 {
			return res, nil
		}

		status := 0
		var msgBody []byte
		if sendErr == nil {
			status = res.Status
			msgBody = res.Body
		}
		kind := Classify(status, sendErr)
		apiErr := &APIError{
			Kind:    kind,
			Status:  status,
			Message: errorMessage(msgBody, status, sendErr),
			Err:     sendErr,
		}

		if !c.policy.ShouldRetry(kind, attempt, maxRetries) {
			return nil, apiErr
		}

		delay := c.policy.DelayFor(attempt, baseDelay)
		c.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"kind":       kind.String(),
			"attempt":    attempt + 1,
			"delay":      delay,
		}).Warn("request failed, retrying")

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, &APIError{Kind: KindNetwork, Message: "request canceled during backoff", Err: ctx.Err()}
		}
	}
}

// attempt performs one send. A non-nil error is transport-level: the request
// never produced an HTTP status.
func (c *Client) attempt(
	ctx context.Context,
	method, reqURL string,
	payload []byte,
	opts *RequestOptions,
	requestID string,
) (*Response, error) {
	timeout := c.cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, reqURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	for key, values := range opts.Headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	if !opts.SkipAuth {
		if access := c.store.AccessToken(); access != "" {
			req.Header.Set("Authorization", "Bearer "+access)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		Status: resp.StatusCode,
		Header: resp.Header.Clone(),
		Body:   data,
	}, nil
}

// buildURL joins the base URL, the path, and the query parameters.
func (c *Client) buildURL(path string, params url.Values) string {
	u := c.cfg.BaseURL + path
	if len(params) > 0 {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		u += sep + params.Encode()
	}
	return u
}

// encodeBody marshals the request body once, up front, so retries replay
// identical bytes. Raw byte slices pass through untouched.
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case json.RawMessage:
		return b, nil
	default:
		return json.Marshal(body)
	}
}

// errorMessage extracts a human-readable message from a failure: the
// backend's {"message": ...} field when present, otherwise a generic line.
func errorMessage(body []byte, status int, err error) string {
	if err != nil {
		return err.Error()
	}

	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if jsonErr := json.Unmarshal(body, &envelope); jsonErr == nil {
		if envelope.Message != "" {
			return envelope.Message
		}
		if envelope.Error != "" {
			return envelope.Error
		}
	}

	return fmt.Sprintf("request failed with status %d", status)
}

// DownloadFile fetches path and writes the raw payload to w. Responses are
// treated as opaque binary regardless of content type.
func (c *Client) DownloadFile(ctx context.Context, path string, w io.Writer, opts *RequestOptions) (int64, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	headers := cloneHeader(opts.Headers)
	headers.Set("Accept", "application/octet-stream")
	dlOpts := *opts
	dlOpts.Headers = headers

	res, err := c.Request(ctx, http.MethodGet, path, nil, &dlOpts)
	if err != nil {
		return 0, err
	}

	n, err := w.Write(res.Body)
	if err != nil {
		return int64(n), fmt.Errorf("failed to write download: %w", err)
	}
	return int64(n), nil
}

// UploadFile posts r as a multipart form under field, with any extra form
// fields, through the same pipeline as every other request. The multipart
// body is buffered so a refresh-triggered resend replays it intact.
func (c *Client) UploadFile(
	ctx context.Context,
	path, field, filename string,
	r io.Reader,
	fields map[string]string,
	opts *RequestOptions,
) (*Response, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to create multipart form", Err: err}
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to read upload payload", Err: err}
	}
	for key, value := range fields {
		if err := mw.WriteField(key, value); err != nil {
			return nil, &APIError{Kind: KindUnknown, Message: "failed to write form field", Err: err}
		}
	}
	if err := mw.Close(); err != nil {
		return nil, &APIError{Kind: KindUnknown, Message: "failed to finalize multipart form", Err: err}
	}

	if opts == nil {
		opts = &RequestOptions{}
	}
	headers := cloneHeader(opts.Headers)
	headers.Set("Content-Type", mw.FormDataContentType())
	upOpts := *opts
	upOpts.Headers = headers

	return c.Request(ctx, http.MethodPost, path, buf.Bytes(), &upOpts)
}

func cloneHeader(h http.Header) http.Header {
	out := http.Header{}
	for key, values := range h {
		for _, v := range values {
			out.Add(key, v)
		}
	}
	return out
}
