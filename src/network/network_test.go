package network

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"market-buzz/src/helpers"
	"market-buzz/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(retries int, userAgent string) *AsyncNetworkManager {
	cfg := &models.MConfig{
		Network: models.MNetworkConfig{RequestTimeout: 5, MaxRetries: retries, UserAgent: userAgent},
	}
	nm := NewAsyncNetworkManager(cfg, nil)
	nm.BaseDelay = time.Millisecond
	return nm
}

func TestGet_SendsParamsAndUserAgent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.Equal(t, "market-buzz/test", r.Header.Get("User-Agent"))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	nm := newTestManager(0, "market-buzz/test")
	body, err := nm.Get(context.Background(), srv.URL+"/chart", map[string]string{"interval": "1d"})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(body))
}

func TestGet_RetriesAfterBlock(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte("done"))
	}))
	defer srv.Close()

	nm := newTestManager(3, "")
	body, err := nm.Get(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, "done", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGet_ExhaustedRetriesIsNetworkError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	nm := newTestManager(2, "")
	_, err := nm.Get(context.Background(), srv.URL, nil)

	require.Error(t, err)
	var netErr *helpers.NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestGet_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	nm := newTestManager(3, "")
	_, err := nm.Get(context.Background(), srv.URL, nil)

	require.Error(t, err)
	assert.True(t, helpers.IsUpstreamError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	nm := newTestManager(5, "")
	nm.BaseDelay = time.Hour

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := nm.Get(ctx, srv.URL, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGet_OversizedBodyIsRejected(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`{"data":{"children":[]}}`))
	}))
	defer srv.Close()

	nm := newTestManager(3, "")
	nm.MaxBodyBytes = 8
	_, err := nm.Get(context.Background(), srv.URL, nil)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrResponseTooLarge))
	assert.True(t, helpers.IsUpstreamError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGet_BodyAtLimitIsAccepted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("12345678"))
	}))
	defer srv.Close()

	nm := newTestManager(0, "")
	nm.MaxBodyBytes = 8
	body, err := nm.Get(context.Background(), srv.URL, nil)

	require.NoError(t, err)
	assert.Equal(t, "12345678", string(body))
}
