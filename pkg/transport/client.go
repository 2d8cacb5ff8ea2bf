// Package transport talks to the upstream news REST API on behalf of one
// browser context.
//
// A Client is shared by the whole process. Bind attaches it to the
// credentials of a single context and yields a Conn whose calls carry that
// context's bearer token and cookies. A 401 on any call other than the refresh
// call triggers exactly one silent refresh; when the refresh succeeds the call
// is replayed once, otherwise the caller sees the original 401.
package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/newsroom-console/pkg/errors"
)

// RefreshPath is the upstream endpoint exchanging the refresh cookie for a
// new access token.
const RefreshPath = "/users/refresh-token"

const defaultTimeout = 30 * time.Second

// CredentialStore persists what travels with every request of one context.
type CredentialStore interface {
	AccessToken(ctx context.Context) (string, error)
	SetAccessToken(ctx context.Context, token string) error
	Cookies(ctx context.Context) ([]*http.Cookie, error)
	SaveCookies(ctx context.Context, cookies []*http.Cookie) error
}

// Observer receives call outcomes, typically a metrics sink.
type Observer interface {
	ObserveUpstream(method, path string, status int, elapsed time.Duration)
	ObserveRefresh(success bool)
}

type nopObserver struct{}

func (nopObserver) ObserveUpstream(string, string, int, time.Duration) {}
func (nopObserver) ObserveRefresh(bool)                                {}

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
	Observer   Observer
}

// Client holds the process-wide HTTP plumbing.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
	observer   Observer
}

// NewClient builds a client for the upstream base URL.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		observer:   observer,
	}
}

// Bind returns a connection using the given context's credentials.
func (c *Client) Bind(creds CredentialStore) *Conn {
	return &Conn{client: c, creds: creds}
}

// Doer executes upstream calls. Conn is the production implementation.
type Doer interface {
	Do(ctx context.Context, req Request, out interface{}) error
}

// Conn is a Client bound to one browser context.
type Conn struct {
	client *Client
	creds  CredentialStore
}

// Do sends req and decodes the envelope's data into out (which may be nil).
func (c *Conn) Do(ctx context.Context, req Request, out interface{}) error {
	err := c.send(ctx, req, out)
	if err == nil || !isUnauthorized(err) || req.Path == RefreshPath {
		return err
	}

	if refreshErr := c.refresh(ctx); refreshErr != nil {
		c.client.logger.Debug("silent refresh failed", zap.String("path", req.Path), zap.Error(refreshErr))
		return err
	}
	return c.send(ctx, req, out)
}

// Refresh performs the refresh call directly and stores the new token.
func (c *Conn) Refresh(ctx context.Context) error {
	return c.refresh(ctx)
}

type refreshData struct {
	AccessToken string `json:"accessToken"`
}

func (c *Conn) refresh(ctx context.Context) error {
	var data refreshData
	err := c.send(ctx, Request{Method: http.MethodPost, Path: RefreshPath}, &data)
	c.client.observer.ObserveRefresh(err == nil)
	if err != nil {
		return err
	}
	if data.AccessToken == "" {
		return nil
	}
	if err := c.creds.SetAccessToken(ctx, data.AccessToken); err != nil {
		return fmt.Errorf("persist refreshed token: %w", err)
	}
	return nil
}

func (c *Conn) send(ctx context.Context, req Request, out interface{}) error {
	httpReq, err := c.build(ctx, req)
	if err != nil {
		return err
	}

	start := time.Now()
	resp, err := c.client.httpClient.Do(httpReq)
	if err != nil {
		c.client.observer.ObserveUpstream(req.Method, req.Path, 0, time.Since(start))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return appErrors.Wrap(err, appErrors.ErrUpstreamUnavailable.Code, appErrors.ErrUpstreamUnavailable.Status, appErrors.ErrUpstreamUnavailable.Message)
	}
	defer resp.Body.Close()
	c.client.observer.ObserveUpstream(req.Method, req.Path, resp.StatusCode, time.Since(start))

	if cookies := resp.Cookies(); len(cookies) > 0 {
		if err := c.creds.SaveCookies(ctx, cookies); err != nil {
			c.client.logger.Warn("persist upstream cookies failed", zap.Error(err))
		}
	}

	return decodeResponse(resp, req, out)
}

func (c *Conn) build(ctx context.Context, req Request) (*http.Request, error) {
	target := c.client.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	body, contentType, err := req.encode()
	if err != nil {
		return nil, err
	}
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("create upstream request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	token, err := c.creds.AccessToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("load access token: %w", err)
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}
	cookies, err := c.creds.Cookies(ctx)
	if err != nil {
		return nil, fmt.Errorf("load upstream cookies: %w", err)
	}
	for _, cookie := range cookies {
		httpReq.AddCookie(cookie)
	}
	return httpReq, nil
}

// envelope is the upstream response shape.
type envelope struct {
	StatusCode int             `json:"statusCode"`
	Data       json.RawMessage `json:"data"`
	Message    string          `json:"message"`
	Success    bool            `json:"success"`
}

func decodeResponse(resp *http.Response, req Request, out interface{}) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, http.StatusBadGateway, "read upstream response")
	}

	var env envelope
	decodeErr := json.Unmarshal(raw, &env)

	if resp.StatusCode >= http.StatusBadRequest {
		message := ""
		if decodeErr == nil {
			message = env.Message
		}
		return statusError(resp.StatusCode, message, req.Fallback)
	}
	if req.Message != nil && decodeErr == nil {
		*req.Message = env.Message
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if decodeErr != nil {
		return appErrors.Wrap(decodeErr, appErrors.ErrUpstream.Code, http.StatusBadGateway, "decode upstream response")
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return appErrors.Wrap(err, appErrors.ErrUpstream.Code, http.StatusBadGateway, "decode upstream data")
	}
	return nil
}

// statusError maps an upstream status onto the gateway's error codes. The
// upstream message wins over the caller's fallback.
func statusError(status int, message, fallback string) *appErrors.Error {
	if message == "" {
		message = fallback
	}
	var base *appErrors.Error
	switch {
	case status == http.StatusUnauthorized:
		base = appErrors.ErrUnauthorized
	case status == http.StatusForbidden:
		base = appErrors.ErrForbidden
	case status == http.StatusNotFound:
		base = appErrors.ErrNotFound
	case status == http.StatusConflict:
		base = appErrors.ErrConflict
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		base = appErrors.ErrValidation
	case status >= http.StatusInternalServerError:
		base = appErrors.ErrUpstream
	default:
		return appErrors.New(appErrors.ErrUpstream.Code, status, firstNonEmpty(message, appErrors.ErrUpstream.Message))
	}
	return appErrors.Clone(base, message)
}

func isUnauthorized(err error) bool {
	var appErr *appErrors.Error
	return errors.As(err, &appErr) && appErr.Status == http.StatusUnauthorized
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Values is a small helper for building query strings.
func Values(pairs ...string) url.Values {
	q := url.Values{}
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			q.Set(pairs[i], pairs[i+1])
		}
	}
	return q
}
