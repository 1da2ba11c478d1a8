package auth

import (
	"context"
	"net/http"
)

// APIKeyStrategy authenticates every request with a fixed API key.
//
// By default the key is sent as "Authorization: Bearer <key>". Use
// WithAPIKeyHeader for gateways that expect the key in a custom header.
type APIKeyStrategy struct {
	key    string
	header string
}

// APIKeyOption configures an APIKeyStrategy.
type APIKeyOption func(*APIKeyStrategy)

// WithAPIKeyHeader sends the key verbatim in the named header instead of
// as a bearer token.
func WithAPIKeyHeader(name string) APIKeyOption {
	return func(s *APIKeyStrategy) {
		s.header = http.CanonicalHeaderKey(name)
	}
}

// NewAPIKeyStrategy creates a new API key authentication strategy.
//
// Example:
//
//	strategy := auth.NewAPIKeyStrategy("xxxxxxxx")
//	strategy := auth.NewAPIKeyStrategy("xxxxxxxx", auth.WithAPIKeyHeader("X-Api-Key"))
func NewAPIKeyStrategy(key string, opts ...APIKeyOption) *APIKeyStrategy {
	s := &APIKeyStrategy{key: key, header: "Authorization"}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetToken returns the API key.
func (s *APIKeyStrategy) GetToken(ctx context.Context) (string, error) {
	return s.key, nil
}

// ApplyAuth sets the key header.
func (s *APIKeyStrategy) ApplyAuth(req *http.Request, token string) {
	if s.header == "Authorization" {
		req.Header.Set("Authorization", "Bearer "+token)
		return
	}
	req.Header.Set(s.header, token)
}

// HandleAuthError gives up: an API key that was rejected once will be
// rejected again.
func (s *APIKeyStrategy) HandleAuthError(ctx context.Context, statusCode int, attempt int, maxAttempts int) (string, error) {
	return "", nil
}
