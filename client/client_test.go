package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DrewBradfordXYZ/logo-objects-go/auth"
	"github.com/DrewBradfordXYZ/logo-objects-go/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// refreshingAuth hands out "token-N" and bumps N on every 401.
type refreshingAuth struct {
	mu      sync.Mutex
	version int
}

func (a *refreshingAuth) GetToken(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return fmt.Sprintf("token-%d", a.version), nil
}

func (a *refreshingAuth) ApplyAuth(req *http.Request, token string) {
	req.Header.Set("Authorization", "Bearer "+token)
}

func (a *refreshingAuth) HandleAuthError(ctx context.Context, statusCode int, attempt int, maxAttempts int) (string, error) {
	if attempt >= maxAttempts-1 {
		return "", nil
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.version++
	return fmt.Sprintf("token-%d", a.version), nil
}

func newTestClient(t *testing.T, url string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithRetryDelay(time.Millisecond), WithMaxRetryDelay(5 * time.Millisecond)}, opts...)
	c, err := New(url, auth.NewAPIKeyStrategy("test-key"), opts...)
	require.NoError(t, err)
	return c
}

func TestValidateBaseURL(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"https://erp.example.com/api/v1", "https://erp.example.com/api/v1", false},
		{"https://erp.example.com/api/v1/", "https://erp.example.com/api/v1", false},
		{"http://localhost:8080", "http://localhost:8080", false},
		{"ftp://erp.example.com", "", true},
		{"erp.example.com/api", "", true},
		{"https://", "", true},
		{"https://erp.example.com/api?x=1", "", true},
		{"://bad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ValidateBaseURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateBaseURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ValidateBaseURL(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	t.Run("requires auth", func(t *testing.T) {
		_, err := New("https://erp.example.com", nil)
		require.Error(t, err)
	})

	t.Run("rejects bad URL", func(t *testing.T) {
		_, err := New("not a url", auth.NewAPIKeyStrategy("k"))
		require.Error(t, err)
	})

	t.Run("custom transport skips validation", func(t *testing.T) {
		fake := transportFunc(func(ctx context.Context, method, path string, body, out any) error { return nil })
		c, err := New("", nil, WithTransport(fake))
		require.NoError(t, err)
		require.NoError(t, c.Do(context.Background(), "GET", "/items", nil, nil))
	})
}

type transportFunc func(ctx context.Context, method, path string, body, out any) error

func (f transportFunc) Do(ctx context.Context, method, path string, body, out any) error {
	return f(ctx, method, path, body, out)
}

func TestHTTPTransport_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "POST", r.Method)
		require.Equal(t, "/api/items", r.URL.Path)
		require.Equal(t, "limit=1", r.URL.RawQuery)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.Equal(t, "logo-objects-go/"+Version, r.Header.Get("User-Agent"))
		require.NotEmpty(t, r.Header.Get(core.RequestIDHeader))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"CODE":"ABC","AMOUNT":12.5}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL+"/api")
	var out map[string]any
	err := c.Do(context.Background(), "POST", "/items?limit=1", map[string]any{"CODE": "ABC"}, &out)
	require.NoError(t, err)
	require.Equal(t, "ABC", out["CODE"])
	require.Equal(t, 12.5, out["AMOUNT"])
}

func TestHTTPTransport_EmptyAndRawBodies(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/empty" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		fmt.Fprint(w, `<xml/>`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)

	var out map[string]any
	require.NoError(t, c.Do(context.Background(), "DELETE", "/empty", nil, &out))
	require.Nil(t, out)

	var raw []byte
	require.NoError(t, c.Do(context.Background(), "GET", "/xml", nil, &raw))
	require.Equal(t, "<xml/>", string(raw))
}

func TestHTTPTransport_RetriesServerErrors(t *testing.T) {
	var calls int32
	var bodies []string
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		bodies = append(bodies, string(b))
		mu.Unlock()
		if n < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	var retries []core.RetryInfo
	c := newTestClient(t, srv.URL, WithOnRetry(func(info core.RetryInfo) {
		retries = append(retries, info)
	}))

	err := c.Do(context.Background(), "POST", "/items", map[string]int{"n": 1}, nil)
	require.NoError(t, err)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
	require.Len(t, retries, 2)
	require.Equal(t, 1, retries[0].Attempt)
	require.Equal(t, http.StatusServiceUnavailable, retries[0].HTTPStatus)
	require.Equal(t, retries[0].RequestID, retries[1].RequestID)
	for _, b := range bodies {
		require.Equal(t, `{"n":1}`, b, "retries must resend the body")
	}
}

func TestHTTPTransport_GivesUpAfterMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"Message":"An error has occurred."}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithMaxRetries(2))
	err := c.Do(context.Background(), "GET", "/items", nil, nil)

	var serverErr *core.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.Equal(t, "An error has occurred.", serverErr.Message)
	require.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestHTTPTransport_NegativeMaxRetries(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"Message":"An error has occurred."}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, WithMaxRetries(-1))
	err := c.Do(context.Background(), "GET", "/items", nil, nil)

	var serverErr *core.ServerError
	require.ErrorAs(t, err, &serverErr)
	require.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestHTTPTransport_RateLimit(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL)
	require.NoError(t, c.Do(context.Background(), "GET", "/items", nil, nil))
	require.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestHTTPTransport_AuthRefresh(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprint(w, `{"Message":"Authorization has been denied for this request."}`)
			return
		}
		fmt.Fprint(w, `{"ok":true}`)
	}))
	defer srv.Close()

	strategy := &refreshingAuth{}
	c, err := New(srv.URL, strategy, WithRetryDelay(time.Millisecond))
	require.NoError(t, err)

	var out map[string]bool
	require.NoError(t, c.Do(context.Background(), "GET", "/items", nil, &out))
	require.True(t, out["ok"])

	t.Run("api key is not refreshed", func(t *testing.T) {
		c := newTestClient(t, srv.URL)
		err := c.Do(context.Background(), "GET", "/items", nil, nil)
		var authErr *core.AuthenticationError
		require.ErrorAs(t, err, &authErr)
		require.Equal(t, "Authorization has been denied for this request.", authErr.Message)
	})
}

func TestHTTPTransport_ClientErrors(t *testing.T) {
	tests := []struct {
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{http.StatusBadRequest, `{"Message":"The request is invalid.","ModelState":{"item.CODE":["Required"]}}`, func(t *testing.T, err error) {
			var v *core.ValidationError
			require.ErrorAs(t, err, &v)
			require.Equal(t, []core.FieldError{{Field: "CODE", Message: "Required"}}, v.Errors)
		}},
		{http.StatusForbidden, `{"Message":"Forbidden"}`, func(t *testing.T, err error) {
			var v *core.AuthorizationError
			require.ErrorAs(t, err, &v)
		}},
		{http.StatusNotFound, `{"Message":"Not found"}`, func(t *testing.T, err error) {
			var v *core.NotFoundError
			require.ErrorAs(t, err, &v)
		}},
		{http.StatusConflict, `{"Message":"Exists"}`, func(t *testing.T, err error) {
			var v *core.ConflictError
			require.ErrorAs(t, err, &v)
		}},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			var calls int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			c := newTestClient(t, srv.URL)
			tt.check(t, c.Do(context.Background(), "GET", "/items", nil, nil))
			require.EqualValues(t, 1, atomic.LoadInt32(&calls), "client errors are not retried")
		})
	}
}

func TestHTTPTransport_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := newTestClient(t, srv.URL, WithTimeout(20*time.Millisecond), WithMaxRetries(0))
	err := c.Do(context.Background(), "GET", "/slow", nil, nil)

	var timeoutErr *core.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	require.Equal(t, 20*time.Millisecond, timeoutErr.Timeout)
}

func TestHTTPTransport_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := newTestClient(t, srv.URL, WithRetryDelay(time.Hour), WithMaxRetryDelay(time.Hour),
		WithOnRetry(func(core.RetryInfo) { cancel() }))

	err := c.Do(ctx, "GET", "/items", nil, nil)
	require.True(t, errors.Is(err, context.Canceled), "got %v", err)
}

func TestHTTPTransport_Metrics(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	// A second registration reuses the collectors.
	again, err := NewMetrics(reg)
	require.NoError(t, err)
	require.Same(t, m.requests, again.requests)

	c := newTestClient(t, srv.URL, WithMetrics(m))
	require.NoError(t, c.Do(context.Background(), "GET", "/items", nil, nil))

	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "502")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "200")))
	require.Equal(t, 1, testutil.CollectAndCount(m.duration))

	var hist dto.Metric
	require.NoError(t, m.duration.WithLabelValues("GET").(prometheus.Histogram).Write(&hist))
	require.Equal(t, uint64(2), hist.GetHistogram().GetSampleCount())
}

func TestHTTPTransport_Throttle(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}))
	defer srv.Close()

	throttle := NewSlidingWindow(2, time.Minute)
	c := newTestClient(t, srv.URL, WithThrottle(throttle))

	ctx := context.Background()
	require.NoError(t, c.Do(ctx, "GET", "/a", nil, nil))
	require.NoError(t, c.Do(ctx, "GET", "/b", nil, nil))
	require.Equal(t, 0, throttle.Remaining())

	ctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	err := c.Do(ctx, "GET", "/c", nil, nil)
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoff(t *testing.T) {
	c := &Client{retryDelay: 100 * time.Millisecond, maxRetryDelay: time.Second}
	h := &HTTPTransport{client: c}

	tests := []struct {
		attempt int
		min     time.Duration
		max     time.Duration
	}{
		{0, 100 * time.Millisecond, 110 * time.Millisecond},
		{1, 200 * time.Millisecond, 220 * time.Millisecond},
		{2, 400 * time.Millisecond, 440 * time.Millisecond},
		{5, time.Second, time.Second},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.attempt), func(t *testing.T) {
			got := h.backoff(tt.attempt)
			if got < tt.min || got > tt.max {
				t.Errorf("backoff(%d) = %v, want between %v and %v", tt.attempt, got, tt.min, tt.max)
			}
		})
	}
}
