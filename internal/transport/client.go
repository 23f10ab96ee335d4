// Package transport is the HTTP client for the profile backend. It implements
// the session transport boundary on top of a generic Invoke entry point.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/text/language"
	"golang.org/x/time/rate"
)

// DefaultLanguage is sent as Accept-Language unless overridden.
var DefaultLanguage = language.Romanian

// ErrNoURL is returned before any network activity when no URL is supplied.
var ErrNoURL = errors.New("transport: no URL provided")

// StatusError reports a non-2xx response.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// Client issues JSON requests that carry credentials and a fixed request
// language.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	lang    language.Tag
	limiter *rate.Limiter
	tokens  oauth2.TokenSource
	timeout time.Duration
	logger  *slog.Logger
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client. A cookie jar is added
// when the client has none.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLanguage overrides the Accept-Language tag.
func WithLanguage(tag language.Tag) Option {
	return func(c *Client) {
		c.lang = tag
	}
}

// WithTokenSource authenticates requests with OAuth2 bearer tokens.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// WithStaticToken authenticates requests with a fixed bearer token.
func WithStaticToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.tokens = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
		}
	}
}

// WithRateLimit caps outgoing requests at r per second with the given burst.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		if r > 0 {
			c.limiter = rate.NewLimiter(r, burst)
		}
	}
}

// WithTimeout sets the per-request timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// ParseLanguage validates a BCP 47 tag for use with WithLanguage.
func ParseLanguage(value string) (language.Tag, error) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return language.Und, fmt.Errorf("parse language %q: %w", value, err)
	}
	return tag, nil
}

// New constructs a client rooted at baseURL. Relative request URLs are
// resolved against it.
func New(baseURL string, opts ...Option) (*Client, error) {
	c := &Client{
		http:    &http.Client{},
		lang:    DefaultLanguage,
		timeout: 30 * time.Second,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	if baseURL != "" {
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("parse base url: %w", err)
		}
		if !strings.HasSuffix(u.Path, "/") {
			u.Path += "/"
		}
		c.baseURL = u
	}
	for _, opt := range opts {
		opt(c)
	}
	hc := *c.http
	if hc.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("cookie jar: %w", err)
		}
		hc.Jar = jar
	}
	if c.tokens != nil {
		base := hc.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		hc.Transport = &oauth2.Transport{Source: oauth2.ReuseTokenSource(nil, c.tokens), Base: base}
	}
	c.http = &hc
	return c, nil
}

// Invoke sends body as JSON with method to rawURL and decodes a JSON response
// into out when out is non-nil. It fails with ErrNoURL before any network
// activity when rawURL is empty.
func (c *Client) Invoke(ctx context.Context, method, rawURL string, body any, params url.Values, out any) error {
	if strings.TrimSpace(rawURL) == "" {
		return ErrNoURL
	}
	target, err := c.resolve(rawURL, params)
	if err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, target, err)
		}
		reader = bytes.NewReader(payload)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit %s %s: %w", method, target, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", c.lang.String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("request failed", "method", method, "url", target, "error", err)
		return fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("request completed", "method", method, "url", target,
		"status", resp.StatusCode, "duration", time.Since(started))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(method, target, resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, target, err)
	}
	return nil
}

// Get issues a GET request.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, out any) error {
	return c.Invoke(ctx, http.MethodGet, rawURL, nil, params, out)
}

// Put issues a PUT request.
func (c *Client) Put(ctx context.Context, rawURL string, body, out any) error {
	return c.Invoke(ctx, http.MethodPut, rawURL, body, nil, out)
}

// Patch issues a PATCH request.
func (c *Client) Patch(ctx context.Context, rawURL string, body any, params url.Values, out any) error {
	return c.Invoke(ctx, http.MethodPatch, rawURL, body, params, out)
}

// Post issues a POST request.
func (c *Client) Post(ctx context.Context, rawURL string, body, out any) error {
	return c.Invoke(ctx, http.MethodPost, rawURL, body, nil, out)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, rawURL string, params url.Values) error {
	return c.Invoke(ctx, http.MethodDelete, rawURL, nil, params, nil)
}

func (c *Client) resolve(rawURL string, params url.Values) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	if !u.IsAbs() && c.baseURL != nil {
		u.Path = strings.TrimPrefix(u.Path, "/")
		u = c.baseURL.ResolveReference(u)
	}
	if len(params) > 0 {
		q := u.Query()
		for key, values := range params {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	return u.String(), nil
}

func decodeStatusError(method, target string, resp *http.Response) error {
	statusErr := &StatusError{Method: method, URL: target, StatusCode: resp.StatusCode}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
		statusErr.Message = payload.Error
	} else {
		statusErr.Message = strings.TrimSpace(string(data))
	}
	return statusErr
}
