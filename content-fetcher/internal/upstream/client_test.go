package upstream_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oe/sunrain-sub002/content-fetcher/internal/upstream"
	"github.com/oe/sunrain-sub002/infrastructure/circuitbreaker"
	infraerrors "github.com/oe/sunrain-sub002/infrastructure/errors"
	infralogger "github.com/oe/sunrain-sub002/infrastructure/logger"
	"github.com/oe/sunrain-sub002/infrastructure/retry"
)

func fastRetry() retry.Config {
	cfg := retry.DefaultConfig()
	cfg.InitialDelay = time.Millisecond
	cfg.MaxDelay = 5 * time.Millisecond
	return cfg
}

func TestGetJSON_RetriesTransientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "Bearer t", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"name":"ok"}`))
	}))
	defer srv.Close()

	c := upstream.New("test", srv.Client(), infralogger.NewNop(), upstream.WithRetry(fastRetry()))
	var out struct{ Name string }
	err := c.GetJSON(context.Background(), srv.URL, http.Header{"Authorization": {"Bearer t"}}, &out)

	require.NoError(t, err)
	assert.Equal(t, "ok", out.Name)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGetJSON_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_message":"Invalid API key"}`))
	}))
	defer srv.Close()

	c := upstream.New("test", srv.Client(), infralogger.NewNop(), upstream.WithRetry(fastRetry()))
	var out map[string]any
	err := c.GetJSON(context.Background(), srv.URL, nil, &out)

	require.Error(t, err)
	code, ok := infraerrors.GetHTTPStatusCode(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.Contains(t, err.Error(), "Invalid API key")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetJSON_ClientErrorsKeepCircuitClosed(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := upstream.New("tmdb", srv.Client(), infralogger.NewNop(), upstream.WithRetry(fastRetry()))
	for range 8 {
		var out map[string]any
		err := c.GetJSON(context.Background(), srv.URL, nil, &out)
		code, ok := infraerrors.GetHTTPStatusCode(err)
		require.True(t, ok)
		assert.Equal(t, http.StatusNotFound, code)
	}
	assert.Equal(t, int32(8), calls.Load())
}

func TestGetJSON_OpenCircuitStopsRequests(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	breaker := circuitbreaker.New(circuitbreaker.Config{
		Name:             "tmdb",
		FailureThreshold: 1,
		OpenTimeout:      time.Minute,
		IsFailure:        upstream.CountsAsFailure,
	})
	once := fastRetry()
	once.MaxAttempts = 1
	c := upstream.New("tmdb", srv.Client(), infralogger.NewNop(),
		upstream.WithRetry(once),
		upstream.WithBreaker(breaker),
	)

	var out map[string]any
	require.Error(t, c.GetJSON(context.Background(), srv.URL, nil, &out))
	assert.Equal(t, circuitbreaker.StateOpen, breaker.State())

	err := c.GetJSON(context.Background(), srv.URL, nil, &out)
	require.ErrorIs(t, err, circuitbreaker.ErrOpen)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCountsAsFailure(t *testing.T) {
	t.Parallel()

	assert.False(t, upstream.CountsAsFailure(nil))
	assert.False(t, upstream.CountsAsFailure(&infraerrors.HTTPError{StatusCode: http.StatusNotFound}))
	assert.True(t, upstream.CountsAsFailure(&infraerrors.HTTPError{StatusCode: http.StatusBadGateway}))
	assert.True(t, upstream.CountsAsFailure(context.DeadlineExceeded))
}
