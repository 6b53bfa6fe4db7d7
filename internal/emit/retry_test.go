package emit

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusError(t *testing.T) {
	tests := []struct {
		status    int
		ok        bool
		retryable bool
	}{
		{http.StatusOK, true, false},
		{http.StatusCreated, true, false},
		{http.StatusNoContent, true, false},
		{http.StatusTooManyRequests, false, true},
		{http.StatusInternalServerError, false, true},
		{http.StatusServiceUnavailable, false, true},
		{http.StatusBadRequest, false, false},
		{http.StatusNotFound, false, false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := statusError("a.md", tt.status, []byte("detail"))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.retryable, IsRetryable(err))
			assert.Contains(t, err.Error(), "detail")
		})
	}
}

func TestRetryableError_TruncatesMessage(t *testing.T) {
	long := make([]byte, 500)
	for i := range long {
		long[i] = 'x'
	}
	err := &RetryableError{StatusCode: 502, Message: string(long)}
	assert.Contains(t, err.Error(), "status 502")
	assert.Less(t, len(err.Error()), 260)

	assert.Contains(t, (&RetryableError{Message: "connection refused"}).Error(), "unreachable")
}

func TestWithRetry_PermanentErrorStopsAtOnce(t *testing.T) {
	calls := 0
	perm := errors.New("bad request")
	err := withRetry(context.Background(), quietLogger(), func(int) time.Duration { return 0 }, "a.md", func() error {
		calls++
		return perm
	})
	assert.ErrorIs(t, err, perm)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_CanceledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := withRetry(ctx, quietLogger(), func(int) time.Duration { return time.Hour }, "a.md", func() error {
		calls++
		cancel()
		return &RetryableError{StatusCode: 503}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_ExhaustedKeepsLastError(t *testing.T) {
	var attempts []int
	err := withRetry(context.Background(), quietLogger(), func(a int) time.Duration {
		attempts = append(attempts, a)
		return time.Millisecond
	}, "a.md", func() error {
		return &RetryableError{StatusCode: 502, Message: "down"}
	})
	require.Error(t, err)
	assert.True(t, IsRetryable(err))
	assert.Contains(t, err.Error(), "giving up")
	assert.Equal(t, []int{0, 1}, attempts, "no backoff after the last attempt")
}
