// Package core provides shared types and utilities for the Logo Objects SDK.
//
// This package contains:
//   - Error types for the HTTP status codes the API returns (400, 401, 403, 404, 409, 429, 5xx)
//   - Logging utilities
//   - Date parsing helpers
//   - "Did you mean" suggestions for unknown names
//
// Error types can be used with errors.As to handle specific cases:
//
//	_, err := slips.GetByID(ctx, 42, nil)
//	if err != nil {
//	    var notFound *core.NotFoundError
//	    if errors.As(err, &notFound) {
//	        // Handle 404
//	    }
//	}
package core

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// LogoError is the base error type for all Logo Objects SDK errors.
//
// All specific error types embed this type. RequestID is the value sent in
// the X-Request-ID header and can be matched against server logs.
type LogoError struct {
	Message     string `json:"message"`
	StatusCode  int    `json:"statusCode"`
	Description string `json:"description,omitempty"`
	RequestID   string `json:"requestId,omitempty"`
	Cause       error  `json:"-"`
}

func (e *LogoError) Error() string {
	if e.Description != "" {
		return fmt.Sprintf("%s: %s (status: %d)", e.Message, e.Description, e.StatusCode)
	}
	return fmt.Sprintf("%s (status: %d)", e.Message, e.StatusCode)
}

func (e *LogoError) Unwrap() error {
	return e.Cause
}

// RetryInfo describes a retried request. It is passed to the OnRetry callback.
type RetryInfo struct {
	Timestamp  time.Time     `json:"timestamp"`
	Method     string        `json:"method"`
	RequestURL string        `json:"requestUrl"`
	HTTPStatus int           `json:"httpStatus,omitempty"` // 0 for network errors
	Attempt    int           `json:"attempt"`
	Delay      time.Duration `json:"delay"`
	RequestID  string        `json:"requestId,omitempty"`
	Err        error         `json:"-"`
}

// RateLimitError is returned when the API keeps answering HTTP 429.
type RateLimitError struct {
	LogoError
	RetryAfter int `json:"retryAfter,omitempty"` // seconds
}

func (e *RateLimitError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("rate limited, retry after %d seconds", e.RetryAfter)
	}
	return "rate limited"
}

// NewRateLimitError creates a new RateLimitError.
func NewRateLimitError(message, requestID string, retryAfter int) *RateLimitError {
	if message == "" {
		message = "Rate limited"
	}
	return &RateLimitError{
		LogoError: LogoError{
			Message:    message,
			StatusCode: http.StatusTooManyRequests,
			RequestID:  requestID,
		},
		RetryAfter: retryAfter,
	}
}

// AuthenticationError is returned when authentication fails (HTTP 401), or
// when a token could not be obtained.
type AuthenticationError struct {
	LogoError
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(message, requestID string) *AuthenticationError {
	return &AuthenticationError{
		LogoError: LogoError{
			Message:    message,
			StatusCode: http.StatusUnauthorized,
			RequestID:  requestID,
		},
	}
}

// AuthorizationError is returned when the caller may not perform the request (HTTP 403).
type AuthorizationError struct {
	LogoError
}

// NewAuthorizationError creates a new AuthorizationError.
func NewAuthorizationError(message, requestID string) *AuthorizationError {
	return &AuthorizationError{
		LogoError: LogoError{
			Message:    message,
			StatusCode: http.StatusForbidden,
			RequestID:  requestID,
		},
	}
}

// NotFoundError is returned when an object does not exist (HTTP 404).
type NotFoundError struct {
	LogoError
}

// NewNotFoundError creates a new NotFoundError.
func NewNotFoundError(message, requestID string) *NotFoundError {
	return &NotFoundError{
		LogoError: LogoError{
			Message:    message,
			StatusCode: http.StatusNotFound,
			RequestID:  requestID,
		},
	}
}

// ConflictError is returned when the object was changed or locked by
// another user (HTTP 409).
type ConflictError struct {
	LogoError
}

// NewConflictError creates a new ConflictError.
func NewConflictError(message, requestID string) *ConflictError {
	return &ConflictError{
		LogoError: LogoError{
			Message:    message,
			StatusCode: http.StatusConflict,
			RequestID:  requestID,
		},
	}
}

// ValidationError is returned for rejected requests (HTTP 400) and for
// requests the SDK refuses to send, such as a path with a missing parameter.
type ValidationError struct {
	LogoError
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError is a validation error reported for one field.
type FieldError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message, requestID string, errors []FieldError) *ValidationError {
	return &ValidationError{
		LogoError: LogoError{
			Message:    message,
			StatusCode: http.StatusBadRequest,
			RequestID:  requestID,
		},
		Errors: errors,
	}
}

// TimeoutError is returned when a request exceeds the configured timeout.
type TimeoutError struct {
	LogoError
	Timeout time.Duration `json:"timeout"`
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("request timed out after %dms", e.Timeout.Milliseconds())
}

// NewTimeoutError creates a new TimeoutError.
func NewTimeoutError(timeout time.Duration, cause error) *TimeoutError {
	return &TimeoutError{
		LogoError: LogoError{
			Message: fmt.Sprintf("Request timed out after %dms", timeout.Milliseconds()),
			Cause:   cause,
		},
		Timeout: timeout,
	}
}

// ServerError is returned for server errors (HTTP 5xx).
type ServerError struct {
	LogoError
}

// NewServerError creates a new ServerError.
func NewServerError(statusCode int, message, requestID string) *ServerError {
	return &ServerError{
		LogoError: LogoError{
			Message:    message,
			StatusCode: statusCode,
			RequestID:  requestID,
		},
	}
}

// errorBody covers the error shapes the API produces: Web API messages with
// a ModelState map, and OAuth token endpoint errors.
type errorBody struct {
	Message          string              `json:"Message"`
	ExceptionMessage string              `json:"ExceptionMessage"`
	ModelState       map[string][]string `json:"ModelState"`
	Error            string              `json:"error"`
	ErrorDescription string              `json:"error_description"`
}

// ParseErrorResponse converts a non-2xx response into the matching error type.
// The response body is consumed but not closed.
func ParseErrorResponse(resp *http.Response, requestURL string) error {
	requestID := resp.Header.Get(RequestIDHeader)
	if requestID == "" && resp.Request != nil {
		requestID = resp.Request.Header.Get(RequestIDHeader)
	}

	var body errorBody
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20)); err == nil && len(raw) > 0 {
		if json.Unmarshal(raw, &body) != nil {
			body.Message = strings.TrimSpace(string(raw))
		}
	}

	message := body.Message
	description := body.ExceptionMessage
	if message == "" && body.Error != "" {
		message = body.Error
		description = body.ErrorDescription
	}
	if message == "" {
		message = resp.Status
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		verr := NewValidationError(message, requestID, modelStateErrors(body.ModelState))
		verr.Description = description
		return verr
	case resp.StatusCode == http.StatusUnauthorized:
		return NewAuthenticationError(message, requestID)
	case resp.StatusCode == http.StatusForbidden:
		return NewAuthorizationError(message, requestID)
	case resp.StatusCode == http.StatusNotFound:
		return NewNotFoundError(message, requestID)
	case resp.StatusCode == http.StatusConflict:
		return NewConflictError(message, requestID)
	case resp.StatusCode == http.StatusTooManyRequests:
		return NewRateLimitError(message, requestID, ParseRetryAfter(resp.Header.Get("Retry-After")))
	case resp.StatusCode >= 500:
		return NewServerError(resp.StatusCode, message, requestID)
	default:
		return &LogoError{
			Message:     message,
			StatusCode:  resp.StatusCode,
			Description: description,
			RequestID:   requestID,
		}
	}
}

func modelStateErrors(state map[string][]string) []FieldError {
	if len(state) == 0 {
		return nil
	}
	keys := make([]string, 0, len(state))
	for k := range state {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []FieldError
	for _, k := range keys {
		field := k
		// Web API prefixes keys with the action argument name, e.g. "item.CODE".
		if i := strings.LastIndexByte(field, '.'); i >= 0 {
			field = field[i+1:]
		}
		for _, msg := range state[k] {
			out = append(out, FieldError{Field: field, Message: msg})
		}
	}
	return out
}

// ParseRetryAfter reads a Retry-After header given in seconds or as an HTTP
// date. It returns 0 when the header is absent or unusable.
func ParseRetryAfter(header string) int {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && seconds > 0 {
		return seconds
	}
	if t, err := http.ParseTime(header); err == nil {
		if d := time.Until(t); d > 0 {
			return int(d.Round(time.Second).Seconds())
		}
	}
	return 0
}

// IsRetryableError reports whether err is worth retrying.
func IsRetryableError(err error) bool {
	switch err.(type) {
	case *RateLimitError, *ServerError, *TimeoutError:
		return true
	}
	return false
}
