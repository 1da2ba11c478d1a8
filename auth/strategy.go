// Package auth provides authentication strategies for the Logo Objects API.
//
// Two methods are supported:
//
//   - API key: a long-lived key sent on every request
//   - Password: the OAuth2 resource owner password grant against the
//     service's /token endpoint, optionally scoped to a firm number
//
// # API Key
//
//	client, _ := logoobjects.New("https://erp.example.com/api/v1",
//	    logoobjects.WithAPIKey("xxxxxxxx"),
//	)
//
// # Password
//
// The token is requested lazily on the first call, cached until it expires,
// and requested again once if the API answers 401.
//
//	client, _ := logoobjects.New("https://erp.example.com/api/v1",
//	    logoobjects.WithPasswordAuth("LOGO", "secret",
//	        auth.WithFirmNo("1"),
//	        auth.WithClientCredentials("client-id", "client-secret"),
//	    ),
//	)
//
// The token request is:
//
//	POST {base}/token
//	Authorization: Basic base64(client-id:client-secret)
//	Content-Type: application/x-www-form-urlencoded
//
//	grant_type=password&username=LOGO&password=secret&firmno=1
package auth

import (
	"context"
	"net/http"
)

// Strategy defines the interface for authentication strategies.
//
// The SDK provides two built-in implementations:
//   - [APIKeyStrategy]: static API key
//   - [PasswordStrategy]: OAuth2 password grant
type Strategy interface {
	// GetToken returns the credential to send, fetching it if needed.
	GetToken(ctx context.Context) (string, error)

	// ApplyAuth sets the authentication header on the request.
	ApplyAuth(req *http.Request, token string)

	// HandleAuthError is called when the API returns 401 Unauthorized.
	// It returns a fresh token to retry with, or "" to give up.
	HandleAuthError(ctx context.Context, statusCode int, attempt int, maxAttempts int) (string, error)
}
