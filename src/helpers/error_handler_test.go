package helpers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypes_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewNetworkError("fetch failed", cause)

	assert.EqualError(t, err, "fetch failed: connection reset")
	assert.ErrorIs(t, err, cause)

	var netErr *NetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.True(t, IsUpstreamError(err))
	assert.True(t, IsUpstreamError(NewDataSourceError("bad payload", nil)))
	assert.False(t, IsUpstreamError(NewValidationError("bad range", nil)))
	assert.False(t, IsUpstreamError(NewCacheError("locked", cause)))
}

func TestRetryWithBackoff_EventualSuccess(t *testing.T) {
	calls := 0
	res, err := RetryWithBackoff(context.Background(), nil, "ping", 3, time.Millisecond, func() (int, error) {
		calls++
		if calls < 3 {
			return 0, errors.New("not yet")
		}
		return 7, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 7, res)
	assert.Equal(t, 3, calls)
}

func TestRetryWithBackoff_Exhausted(t *testing.T) {
	cause := errors.New("down")
	calls := 0
	_, err := RetryWithBackoff(context.Background(), nil, "ping", 2, time.Millisecond, func() (string, error) {
		calls++
		return "", cause
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 2, calls)
}

func TestRetryWithBackoff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RetryWithBackoff(ctx, nil, "ping", 5, time.Hour, func() (int, error) {
		return 0, errors.New("fail")
	})

	assert.ErrorIs(t, err, context.Canceled)
}
