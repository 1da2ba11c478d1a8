package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"time"

	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"github.com/google/uuid"
)

// Transport sends one API request. path is relative to the base URL and may
// carry a query string. body, when non-nil, is sent as JSON; out, when
// non-nil, receives the decoded JSON response.
type Transport interface {
	Do(ctx context.Context, method, path string, body, out any) error
}

// HTTPTransport is the default Transport. It applies auth, throttling,
// per-attempt timeouts and retries, and converts error responses into the
// typed errors in package core.
type HTTPTransport struct {
	client *Client
}

// response is a fully read HTTP response.
type response struct {
	status int
	header http.Header
	body   []byte
	raw    *http.Response
}

func (h *HTTPTransport) Do(ctx context.Context, method, path string, body, out any) error {
	c := h.client

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	requestURL := c.baseURL + path
	requestID := uuid.NewString()
	maxAttempts := c.maxRetries + 1

	var lastErr error

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := c.throttle.Acquire(ctx); err != nil {
			return fmt.Errorf("throttle: %w", err)
		}

		token, err := c.auth.GetToken(ctx)
		if err != nil {
			return fmt.Errorf("getting auth token: %w", err)
		}

		start := time.Now()
		resp, err := h.send(ctx, method, requestURL, payload, token, requestID)
		elapsed := time.Since(start)

		if err != nil {
			c.metrics.observe(method, 0, elapsed)
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = h.transportError(err)
			if attempt < maxAttempts-1 {
				if werr := h.wait(ctx, core.RetryInfo{
					Method:     method,
					RequestURL: requestURL,
					Attempt:    attempt + 1,
					Delay:      h.backoff(attempt),
					RequestID:  requestID,
					Err:        lastErr,
				}); werr != nil {
					return werr
				}
				continue
			}
			return lastErr
		}

		c.metrics.observe(method, resp.status, elapsed)
		c.logger.Request(method, requestURL, resp.status, elapsed)

		switch {
		case resp.status >= 200 && resp.status < 300:
			return decode(resp, out)

		// Handle 401 Unauthorized - try to refresh token
		case resp.status == http.StatusUnauthorized:
			lastErr = core.ParseErrorResponse(resp.raw, requestURL)
			newToken, err := c.auth.HandleAuthError(ctx, resp.status, attempt, maxAttempts)
			if err != nil {
				return err
			}
			if newToken != "" {
				continue
			}
			return lastErr

		// Handle 429 Too Many Requests
		case resp.status == http.StatusTooManyRequests:
			lastErr = core.ParseErrorResponse(resp.raw, requestURL)
			if attempt < maxAttempts-1 {
				delay := h.backoff(attempt)
				var rl *core.RateLimitError
				if errors.As(lastErr, &rl) {
					c.logger.RateLimit(requestURL, rl.RetryAfter)
					if rl.RetryAfter > 0 {
						delay = time.Duration(rl.RetryAfter) * time.Second
					}
				}
				if werr := h.wait(ctx, core.RetryInfo{
					Method:     method,
					RequestURL: requestURL,
					HTTPStatus: resp.status,
					Attempt:    attempt + 1,
					Delay:      delay,
					RequestID:  requestID,
				}); werr != nil {
					return werr
				}
				continue
			}
			return lastErr

		// Handle 5xx server errors with retry
		case resp.status >= 500:
			lastErr = core.ParseErrorResponse(resp.raw, requestURL)
			if attempt < maxAttempts-1 {
				if werr := h.wait(ctx, core.RetryInfo{
					Method:     method,
					RequestURL: requestURL,
					HTTPStatus: resp.status,
					Attempt:    attempt + 1,
					Delay:      h.backoff(attempt),
					RequestID:  requestID,
				}); werr != nil {
					return werr
				}
				continue
			}
			return lastErr

		default:
			return core.ParseErrorResponse(resp.raw, requestURL)
		}
	}

	return lastErr
}

// send performs a single attempt and reads the whole response body.
func (h *HTTPTransport) send(ctx context.Context, method, requestURL string, payload []byte, token, requestID string) (*response, error) {
	c := h.client

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(core.RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.auth.ApplyAuth(req, token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}
	resp.Body = io.NopCloser(bytes.NewReader(data))

	return &response{status: resp.StatusCode, header: resp.Header, body: data, raw: resp}, nil
}

func (h *HTTPTransport) transportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewTimeoutError(h.client.timeout, err)
	}
	return fmt.Errorf("sending request: %w", err)
}

// backoff returns the exponential delay for attempt with up to 10% jitter,
// capped at the configured maximum.
func (h *HTTPTransport) backoff(attempt int) time.Duration {
	c := h.client
	delay := time.Duration(float64(c.retryDelay) * math.Pow(2, float64(attempt)))
	if delay > 0 {
		delay += time.Duration(rand.Int64N(int64(delay)/10 + 1))
	}
	if c.maxRetryDelay > 0 && delay > c.maxRetryDelay {
		delay = c.maxRetryDelay
	}
	return delay
}

// wait reports the retry and sleeps for info.Delay.
func (h *HTTPTransport) wait(ctx context.Context, info core.RetryInfo) error {
	c := h.client
	info.Timestamp = time.Now()
	c.logger.Retry(info, c.maxRetries)
	if c.onRetry != nil {
		c.onRetry(info)
	}

	timer := time.NewTimer(info.Delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func decode(resp *response, out any) error {
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = append((*raw)[:0], resp.body...)
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
