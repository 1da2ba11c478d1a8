// Package client provides a Logo Objects API client with retry, rate limiting
// and generic entity resources.
package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/DrewBradfordXYZ/logo-objects-go/auth"
	"github.com/DrewBradfordXYZ/logo-objects-go/core"
)

// Version is sent in the default User-Agent.
const Version = "0.1.0"

// Client holds the transport shared by every entity resource.
type Client struct {
	transport Transport
	auth      auth.Strategy
	baseURL   string

	httpClient *http.Client
	timeout    time.Duration
	userAgent  string

	// Retry configuration
	maxRetries    int
	retryDelay    time.Duration
	maxRetryDelay time.Duration
	onRetry       func(core.RetryInfo)

	throttle Throttle
	logger   *core.Logger
	metrics  *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithMaxRetries sets the maximum number of retry attempts (default 3).
// Negative values mean no retries.
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = max(n, 0)
	}
}

// WithRetryDelay sets the base delay between retries (default 1s).
func WithRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.retryDelay = d
	}
}

// WithMaxRetryDelay caps the backoff delay (default 30s).
func WithMaxRetryDelay(d time.Duration) Option {
	return func(c *Client) {
		c.maxRetryDelay = d
	}
}

// WithTimeout bounds each attempt (default 30s). Zero disables the timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithThrottle sets the request throttle. The default sends without limit.
func WithThrottle(t Throttle) Option {
	return func(c *Client) {
		c.throttle = t
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithLogger sets the logger.
func WithLogger(l *core.Logger) Option {
	return func(c *Client) {
		c.logger = l
	}
}

// WithMetrics records request counts and latencies.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithOnRetry registers a callback invoked before every retry.
func WithOnRetry(fn func(core.RetryInfo)) Option {
	return func(c *Client) {
		c.onRetry = fn
	}
}

// WithTransport replaces the HTTP transport, typically with a fake in tests.
// Retry, throttle and auth options have no effect on a custom transport.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		c.transport = t
	}
}

// New creates a new Logo Objects client.
//
// baseURL is the REST service root, for example
// "https://erp.example.com/LogoObjectService/api/v1".
func New(baseURL string, authStrategy auth.Strategy, opts ...Option) (*Client, error) {
	c := &Client{
		auth:          authStrategy,
		httpClient:    http.DefaultClient,
		timeout:       30 * time.Second,
		userAgent:     "logo-objects-go/" + Version,
		maxRetries:    3,
		retryDelay:    time.Second,
		maxRetryDelay: 30 * time.Second,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.transport != nil {
		return c, nil
	}

	base, err := ValidateBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	c.baseURL = base

	if c.auth == nil {
		return nil, fmt.Errorf("creating client: no authentication strategy")
	}
	if c.throttle == nil {
		c.throttle = NewNoOpThrottle()
	}
	if c.logger == nil {
		c.logger = core.NewLogger(false)
	}

	c.transport = &HTTPTransport{client: c}
	return c, nil
}

// ValidateBaseURL checks that raw is an absolute http(s) URL and returns it
// without a trailing slash.
func ValidateBaseURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid base URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("invalid base URL %q: missing host", raw)
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("invalid base URL %q: query and fragment are not allowed", raw)
	}
	u.Path = trimSlash(u.Path)
	u.RawPath = ""
	return u.String(), nil
}

func trimSlash(p string) string {
	for len(p) > 0 && p[len(p)-1] == '/' {
		p = p[:len(p)-1]
	}
	return p
}

// BaseURL returns the validated base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Transport returns the transport requests are sent through.
func (c *Client) Transport() Transport {
	return c.transport
}

// Logger returns the client's logger.
func (c *Client) Logger() *core.Logger {
	return c.logger
}

// Do sends one request through the client's transport. Client therefore
// satisfies Transport itself.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	return c.transport.Do(ctx, method, path, body, out)
}
