package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"golang.org/x/oauth2"
)

// PasswordStrategy authenticates with the OAuth2 resource owner password
// grant. The access token is cached and shared by concurrent requests.
type PasswordStrategy struct {
	config   oauth2.Config
	username string
	password string
	firmNo   string
	client   *http.Client
	logger   *core.Logger

	mu    sync.Mutex
	token *oauth2.Token
}

// PasswordOption configures a PasswordStrategy.
type PasswordOption func(*PasswordStrategy)

// WithClientCredentials sets the OAuth client ID and secret, sent with HTTP
// Basic authentication on the token request.
func WithClientCredentials(clientID, clientSecret string) PasswordOption {
	return func(s *PasswordStrategy) {
		s.config.ClientID = clientID
		s.config.ClientSecret = clientSecret
	}
}

// WithFirmNo scopes the token to a firm (company) number.
func WithFirmNo(firmNo string) PasswordOption {
	return func(s *PasswordStrategy) {
		s.firmNo = firmNo
	}
}

// WithTokenHTTPClient sets the HTTP client used for token requests.
func WithTokenHTTPClient(client *http.Client) PasswordOption {
	return func(s *PasswordStrategy) {
		s.client = client
	}
}

// WithTokenLogger logs token fetches.
func WithTokenLogger(logger *core.Logger) PasswordOption {
	return func(s *PasswordStrategy) {
		s.logger = logger
	}
}

// NewPasswordStrategy creates a password grant strategy for the given token
// endpoint, usually "{baseURL}/token".
//
// Example:
//
//	strategy := auth.NewPasswordStrategy("https://erp.example.com/api/v1/token", "LOGO", "secret",
//	    auth.WithFirmNo("1"),
//	)
func NewPasswordStrategy(tokenURL, username, password string, opts ...PasswordOption) *PasswordStrategy {
	s := &PasswordStrategy{
		config: oauth2.Config{
			Endpoint: oauth2.Endpoint{TokenURL: tokenURL},
		},
		username: username,
		password: password,
		client:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.config.ClientID != "" {
		s.config.Endpoint.AuthStyle = oauth2.AuthStyleInHeader
	} else {
		s.config.Endpoint.AuthStyle = oauth2.AuthStyleInParams
	}
	return s
}

// GetToken returns the cached access token or requests a new one.
func (s *PasswordStrategy) GetToken(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token.Valid() {
		return s.token.AccessToken, nil
	}
	return s.fetchLocked(ctx)
}

// ApplyAuth sets the bearer token.
func (s *PasswordStrategy) ApplyAuth(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

// HandleAuthError drops the cached token and requests a new one, unless this
// is the last attempt.
func (s *PasswordStrategy) HandleAuthError(ctx context.Context, statusCode int, attempt int, maxAttempts int) (string, error) {
	if statusCode != http.StatusUnauthorized || attempt >= maxAttempts-1 {
		return "", nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
	s.logger.Token("rejected, refreshing")
	return s.fetchLocked(ctx)
}

// Invalidate drops the cached token.
func (s *PasswordStrategy) Invalidate() {
	s.mu.Lock()
	s.token = nil
	s.mu.Unlock()
}

func (s *PasswordStrategy) fetchLocked(ctx context.Context) (string, error) {
	client := s.client
	if s.firmNo != "" {
		client = withFormField(client, "firmno", s.firmNo)
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, client)

	token, err := s.config.PasswordCredentialsToken(ctx, s.username, s.password)
	if err != nil {
		return "", tokenError(err)
	}

	s.token = token
	s.logger.Token("acquired")
	return token.AccessToken, nil
}

func tokenError(err error) error {
	var rerr *oauth2.RetrieveError
	if errors.As(err, &rerr) && rerr.Response != nil {
		var requestURL string
		if rerr.Response.Request != nil {
			requestURL = rerr.Response.Request.URL.String()
		}
		rerr.Response.Body = io.NopCloser(bytes.NewReader(rerr.Body))
		parsed := core.ParseErrorResponse(rerr.Response, requestURL)

		var lerr *core.LogoError
		switch e := parsed.(type) {
		case *core.ValidationError:
			lerr = &e.LogoError
		case *core.AuthenticationError:
			lerr = &e.LogoError
		}
		if lerr != nil {
			// A rejected grant is an authentication failure whatever the status.
			aerr := core.NewAuthenticationError(lerr.Message, lerr.RequestID)
			aerr.Description = lerr.Description
			aerr.Cause = err
			return aerr
		}
		return parsed
	}
	return fmt.Errorf("requesting token: %w", err)
}

// withFormField returns a client that adds key=value to form-encoded POST
// bodies. The password grant has no hook for extra parameters.
func withFormField(base *http.Client, key, value string) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	rt := base.Transport
	if rt == nil {
		rt = http.DefaultTransport
	}
	c := *base
	c.Transport = &formFieldTransport{base: rt, key: key, value: value}
	return &c
}

type formFieldTransport struct {
	base  http.RoundTripper
	key   string
	value string
}

func (t *formFieldTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil ||
		!strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return t.base.RoundTrip(req)
	}

	raw, err := io.ReadAll(req.Body)
	req.Body.Close()
	if err != nil {
		return nil, fmt.Errorf("reading token request body: %w", err)
	}
	form, err := url.ParseQuery(string(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing token request body: %w", err)
	}
	form.Set(t.key, t.value)
	encoded := form.Encode()

	out := req.Clone(req.Context())
	out.Body = io.NopCloser(strings.NewReader(encoded))
	out.ContentLength = int64(len(encoded))
	out.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(encoded)), nil
	}
	return t.base.RoundTrip(out)
}
