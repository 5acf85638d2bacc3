package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRetryWait(time.Millisecond, 5*time.Millisecond)}, opts...)
	client, err := NewClient(server.URL, opts...)
	require.NoError(t, err)
	return client
}

type testLogger struct {
	count int32
}

func (l *testLogger) Debugf(format string, args ...interface{}) { atomic.AddInt32(&l.count, 1) }
func (l *testLogger) Infof(format string, args ...interface{})  { atomic.AddInt32(&l.count, 1) }
func (l *testLogger) Errorf(format string, args ...interface{}) { atomic.AddInt32(&l.count, 1) }

func TestNewClient_Success(t *testing.T) {
	c, err := NewClient("http://api.example.com/")
	require.NoError(t, err)
	assert.Equal(t, "http://api.example.com", c.baseURL)
	assert.Equal(t, 3, c.retryMax)
	assert.Contains(t, c.userAgent, "cohortmap-go-sdk/")
	assert.Empty(t, c.SessionID())
}

func TestNewClient_InvalidBaseURL(t *testing.T) {
	for _, u := range []string{"", "ftp://invalid", "invalid-url", "://bad"} {
		_, err := NewClient(u)
		assert.ErrorIs(t, err, ErrInvalidConfig, u)
	}
}

func TestClient_Do_RequestHeaders(t *testing.T) {
	var got http.Header
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}, WithSession("abc"), WithUserAgent("probe/1"))

	require.NoError(t, c.getJSON(context.Background(), "/x", nil, nil))
	assert.Equal(t, "abc", got.Get(SessionHeader))
	assert.Equal(t, "probe/1", got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Accept"))
	assert.NotEmpty(t, got.Get("X-Request-ID"))
}

func TestClient_Do_NoSessionHeaderByDefault(t *testing.T) {
	var present bool
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header[SessionHeader]
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.getJSON(context.Background(), "x", nil, nil))
	assert.False(t, present)
}

func TestClient_Do_4xxNoRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"code":"SESS_001","message":"session not found","detail":"x","guidance":"upload again"}`)
	})

	err := c.getJSON(context.Background(), "/x", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsNotFound())
	assert.Equal(t, "SESS_001", apiErr.Code)
	assert.Equal(t, "upload again", apiErr.Guidance)
	assert.Contains(t, apiErr.Error(), "session not found: x")
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_Do_NonJSONError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadRequest)
	})
	err := c.getJSON(context.Background(), "/x", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestClient_Do_5xxRetry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `{"regions":["All States"]}`)
	})

	regions, err := c.Regions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"All States"}, regions)
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_Do_5xxRetryExhausted(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}, WithRetryMax(2))

	err := c.getJSON(context.Background(), "/x", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsServerError())
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_Do_429Retry(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.WriteHeader(http.StatusOK)
	}, WithRetryWait(time.Millisecond, 10*time.Millisecond))

	start := time.Now()
	require.NoError(t, c.getJSON(context.Background(), "/x", nil, nil))
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
	assert.Less(t, time.Since(start), time.Second)
}

func TestClient_Do_429Exhausted(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, WithRetryMax(1))

	err := c.getJSON(context.Background(), "/x", nil, nil)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.True(t, apiErr.IsRateLimited())
}

func TestClient_Do_NetworkError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	logger := &testLogger{}
	c, err := NewClient(url, WithRetryMax(1), WithRetryWait(time.Millisecond, time.Millisecond), WithLogger(logger))
	require.NoError(t, err)
	err = c.getJSON(context.Background(), "/x", nil, nil)
	require.Error(t, err)
	assert.Positive(t, atomic.LoadInt32(&logger.count))
}

func TestClient_Do_ContextCanceled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}, WithRetryWait(time.Second, time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	err := c.getJSON(ctx, "/x", nil, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_CalculateBackoff(t *testing.T) {
	c, err := NewClient("http://localhost", WithRetryWait(100*time.Millisecond, 300*time.Millisecond))
	require.NoError(t, err)

	b1 := c.calculateBackoff(1)
	assert.GreaterOrEqual(t, b1, 100*time.Millisecond)
	assert.Less(t, b1, 125*time.Millisecond)

	b5 := c.calculateBackoff(5)
	assert.GreaterOrEqual(t, b5, 300*time.Millisecond)
	assert.Less(t, b5, 375*time.Millisecond)
}

func TestClient_SessionIDRoundTrip(t *testing.T) {
	c, err := NewClient("http://localhost")
	require.NoError(t, err)
	c.SetSessionID("s1")
	assert.Equal(t, "s1", c.SessionID())
}

//Personal.AI order the ending
