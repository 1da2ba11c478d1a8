// Package logoobjects provides a Go SDK for the Logo Objects REST API.
//
// This SDK provides:
//   - API key and OAuth2 password authentication
//   - A query-string builder and a search-criteria compiler (package query)
//   - Generic CRUD, search and paging for every collection (package client)
//   - Declarative tables of each collection's named operations (package objects)
//   - Automatic retry with exponential backoff and jitter
//   - Optional rate limiting and Prometheus metrics
//   - Typed errors for the API's HTTP status codes
//
// Basic usage with an API key:
//
//	c, err := logoobjects.New("https://erp.example.com/api/v1",
//	    logoobjects.WithAPIKey("your-key"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	slips := objects.ExportNationalizationSlips(c)
//	page, err := slips.Search(ctx, query.Where("ficheNo", "ENS-001"), nil)
//
// With username and password (OAuth2 password grant against {baseURL}/token):
//
//	c, err := logoobjects.New(baseURL,
//	    logoobjects.WithPasswordAuth("LOGO", "secret", auth.WithFirmNo("1")),
//	)
//
// From LOGO_* environment variables (a .env file is loaded if present):
//
//	cfg, err := logoobjects.ConfigFromEnv()
//	c, err := logoobjects.NewFromConfig(cfg, logoobjects.WithDebug(true))
package logoobjects

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DrewBradfordXYZ/logo-objects-go/auth"
	"github.com/DrewBradfordXYZ/logo-objects-go/client"
	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"github.com/DrewBradfordXYZ/logo-objects-go/query"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

// Client is the main Logo Objects API client.
type Client = client.Client

// Re-export types for convenience
type (
	// Error types
	LogoError           = core.LogoError
	RateLimitError      = core.RateLimitError
	AuthenticationError = core.AuthenticationError
	AuthorizationError  = core.AuthorizationError
	NotFoundError       = core.NotFoundError
	ConflictError       = core.ConflictError
	ValidationError     = core.ValidationError
	TimeoutError        = core.TimeoutError
	ServerError         = core.ServerError
	RetryInfo           = core.RetryInfo

	// Query types
	ListOptions = query.ListOptions
	Criteria    = query.Criteria

	// Throttle types
	Throttle      = client.Throttle
	TokenBucket   = client.TokenBucket
	SlidingWindow = client.SlidingWindow
	NoOpThrottle  = client.NoOpThrottle

	// Entity types
	Record = client.Record
	Entity = client.Entity
	Args   = client.Args
)

// Environment variables read by ConfigFromEnv.
const (
	EnvBaseURL      = "LOGO_BASE_URL"
	EnvAPIKey       = "LOGO_API_KEY"
	EnvTimeout      = "LOGO_TIMEOUT"
	EnvUsername     = "LOGO_USERNAME"
	EnvPassword     = "LOGO_PASSWORD"
	EnvFirmNo       = "LOGO_FIRM_NO"
	EnvClientID     = "LOGO_CLIENT_ID"
	EnvClientSecret = "LOGO_CLIENT_SECRET"
)

// Config holds connection settings. Either APIKey or Username and Password
// must be set; an API key wins when both are.
type Config struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	Username     string
	Password     string
	FirmNo       string
	ClientID     string
	ClientSecret string
}

// ConfigFromEnv reads a Config from LOGO_* environment variables after
// loading .env from the working directory. A missing .env is not an error.
// LOGO_TIMEOUT accepts a duration ("30s") or whole seconds ("30").
func ConfigFromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("loading .env: %w", err)
	}

	cfg := Config{
		BaseURL:      os.Getenv(EnvBaseURL),
		APIKey:       os.Getenv(EnvAPIKey),
		Username:     os.Getenv(EnvUsername),
		Password:     os.Getenv(EnvPassword),
		FirmNo:       os.Getenv(EnvFirmNo),
		ClientID:     os.Getenv(EnvClientID),
		ClientSecret: os.Getenv(EnvClientSecret),
	}
	if raw := strings.TrimSpace(os.Getenv(EnvTimeout)); raw != "" {
		d, err := parseTimeout(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if cfg.BaseURL == "" {
		return Config{}, &Error{Message: EnvBaseURL + " is not set"}
	}
	return cfg, nil
}

func parseTimeout(raw string) (time.Duration, error) {
	if n, err := strconv.Atoi(raw); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(raw)
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	authStrategy auth.Strategy
	password     *passwordAuth
	debug        bool
	registerer   prometheus.Registerer
	httpClient   *http.Client
	clientOpts   []client.Option
}

type passwordAuth struct {
	username string
	password string
	opts     []auth.PasswordOption
}

// WithAPIKey configures API key authentication.
func WithAPIKey(key string, opts ...auth.APIKeyOption) Option {
	return func(c *clientConfig) {
		c.authStrategy = auth.NewAPIKeyStrategy(key, opts...)
		c.password = nil
	}
}

// WithPasswordAuth configures the OAuth2 password grant. The token endpoint
// is {baseURL}/token.
func WithPasswordAuth(username, password string, opts ...auth.PasswordOption) Option {
	return func(c *clientConfig) {
		c.password = &passwordAuth{username: username, password: password, opts: opts}
		c.authStrategy = nil
	}
}

// WithAuth sets a custom authentication strategy.
func WithAuth(s auth.Strategy) Option {
	return func(c *clientConfig) {
		c.authStrategy = s
		c.password = nil
	}
}

// WithMaxRetries sets the maximum number of retry attempts.
func WithMaxRetries(n int) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, client.WithMaxRetries(n))
	}
}

// WithRetryDelay sets the initial delay between retries.
func WithRetryDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, client.WithRetryDelay(d))
	}
}

// WithMaxRetryDelay sets the maximum delay between retries.
func WithMaxRetryDelay(d time.Duration) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, client.WithMaxRetryDelay(d))
	}
}

// WithTimeout sets the per-attempt request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, client.WithTimeout(d))
	}
}

// WithRateLimit enables a token bucket of rps requests per second with the
// given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, client.WithThrottle(client.NewTokenBucket(rps, burst)))
	}
}

// WithThrottle sets a custom throttle implementation.
func WithThrottle(t client.Throttle) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, client.WithThrottle(t))
	}
}

// WithDebug enables debug logging to stderr.
func WithDebug(enabled bool) Option {
	return func(c *clientConfig) {
		c.debug = enabled
	}
}

// WithHTTPClient sets the HTTP client used for API and token requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *clientConfig) {
		c.httpClient = hc
		c.clientOpts = append(c.clientOpts, client.WithHTTPClient(hc))
	}
}

// WithMetrics registers request metrics with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *clientConfig) {
		c.registerer = reg
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, client.WithUserAgent(ua))
	}
}

// WithOnRetry sets a callback invoked before every retry.
func WithOnRetry(callback func(RetryInfo)) Option {
	return func(c *clientConfig) {
		c.clientOpts = append(c.clientOpts, client.WithOnRetry(callback))
	}
}

// New creates a new Logo Objects client for baseURL, e.g.
// "https://erp.example.com/api/v1".
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := client.ValidateBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	cfg := &clientConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	logger := core.NewLogger(cfg.debug)
	clientOpts := append([]client.Option{client.WithLogger(logger)}, cfg.clientOpts...)

	if cfg.registerer != nil {
		m, err := client.NewMetrics(cfg.registerer)
		if err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
		clientOpts = append(clientOpts, client.WithMetrics(m))
	}

	strategy := cfg.authStrategy
	if cfg.password != nil {
		popts := []auth.PasswordOption{auth.WithTokenLogger(logger)}
		if cfg.httpClient != nil {
			popts = append(popts, auth.WithTokenHTTPClient(cfg.httpClient))
		}
		popts = append(popts, cfg.password.opts...)
		strategy = auth.NewPasswordStrategy(base+"/token", cfg.password.username, cfg.password.password, popts...)
	}
	if strategy == nil {
		return nil, &Error{Message: "no authentication strategy configured; use WithAPIKey or WithPasswordAuth"}
	}

	return client.New(base, strategy, clientOpts...)
}

// NewFromConfig creates a client from cfg. Options are applied after the
// ones derived from cfg, so they can override them.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	var base []Option
	switch {
	case cfg.APIKey != "":
		base = append(base, WithAPIKey(cfg.APIKey))
	case cfg.Username != "":
		var popts []auth.PasswordOption
		if cfg.FirmNo != "" {
			popts = append(popts, auth.WithFirmNo(cfg.FirmNo))
		}
		if cfg.ClientID != "" {
			popts = append(popts, auth.WithClientCredentials(cfg.ClientID, cfg.ClientSecret))
		}
		base = append(base, WithPasswordAuth(cfg.Username, cfg.Password, popts...))
	}
	if cfg.Timeout > 0 {
		base = append(base, WithTimeout(cfg.Timeout))
	}
	return New(cfg.BaseURL, append(base, opts...)...)
}

// Error represents a Logo Objects SDK configuration error.
type Error struct {
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

// Helper functions re-exported from core and query
var (
	// IsRetryableError returns true if the error should trigger a retry.
	IsRetryableError = core.IsRetryableError

	// ParseErrorResponse parses an HTTP response into an appropriate error type.
	ParseErrorResponse = core.ParseErrorResponse

	// BuildQuery renders ListOptions as a query string.
	BuildQuery = query.Build

	// Where starts a Criteria with one field.
	Where = query.Where

	// Compile translates Criteria into a filter expression.
	Compile = query.Compile
)

// NewTokenBucket creates a token bucket throttle.
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	return client.NewTokenBucket(rps, burst)
}

// NewSlidingWindow creates a sliding window throttle.
func NewSlidingWindow(limit int, window time.Duration) *SlidingWindow {
	return client.NewSlidingWindow(limit, window)
}

// Note: the generic helpers (client.Paginate, client.CollectAll,
// client.CollectN, client.NewResource) must be used from the client package
// directly; type aliases cannot carry their type parameters.
