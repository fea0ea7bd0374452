package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutrisense/store-service/internal/http/ratelimit"
)

func fastConfig(retries int) ratelimit.Config {
	return ratelimit.Config{
		RequestsPerSecond: 1000,
		Burst:             100,
		MaxRetries:        retries,
		InitialBackoff:    time.Millisecond,
		MaxBackoff:        5 * time.Millisecond,
	}
}

func TestGetBytesSuccessSendsHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k", r.Header.Get("apikey"))
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c := NewClient(fastConfig(0), time.Second)
	body, err := c.GetBytes(context.Background(), srv.URL, map[string]string{"apikey": "k"})
	require.NoError(t, err)
	assert.Equal(t, "[]", string(body))
}

func TestGetRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`ok`))
	}))
	defer srv.Close()

	c := NewClient(fastConfig(2), time.Second)
	body, err := c.GetBytes(context.Background(), srv.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), calls.Load())
}

func TestGetSingleAttemptDoesNotRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(fastConfig(0), time.Second)
	_, err := c.Get(context.Background(), srv.URL+"?key=secret", nil)
	require.Error(t, err)

	var fetchErr *ratelimit.FetchRetryError
	require.True(t, errors.As(err, &fetchErr))
	assert.Equal(t, 1, fetchErr.Attempts)
	assert.Equal(t, http.StatusServiceUnavailable, fetchErr.LastStatus)
	assert.NotContains(t, err.Error(), "secret")
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetNonRetryableStatusStopsEarly(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	c := NewClient(fastConfig(3), time.Second)
	_, err := c.Get(context.Background(), srv.URL, nil)
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetTransportErrorRedactsKey(t *testing.T) {
	c := NewClient(fastConfig(0), 50*time.Millisecond)
	_, err := c.Get(context.Background(), "http://127.0.0.1:1/path?key=topsecret", nil)
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "topsecret")
}
