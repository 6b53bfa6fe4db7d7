package emit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"time"
)

// MaxRetries is the number of attempts the sink makes per document.
const MaxRetries = 3

// RetryableError marks a sink failure that may succeed on a later attempt:
// transport errors, 429 and 5xx responses.
type RetryableError struct {
	StatusCode int // 0 for transport errors
	Message    string
}

func (e *RetryableError) Error() string {
	msg := e.Message
	if len(msg) > 200 {
		msg = msg[:200] + "..."
	}
	if e.StatusCode == 0 {
		return "sink unreachable: " + msg
	}
	return fmt.Sprintf("sink busy (status %d): %s", e.StatusCode, msg)
}

func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// statusError maps a sink response status to nil, a RetryableError or a
// permanent error.
func statusError(filePath string, status int, body []byte) error {
	switch {
	case status == http.StatusOK, status == http.StatusCreated, status == http.StatusNoContent:
		return nil
	case status == http.StatusTooManyRequests, status >= 500:
		return &RetryableError{StatusCode: status, Message: string(body)}
	default:
		return fmt.Errorf("put document %s: status %d: %s", filePath, status, body)
	}
}

// Backoff waits 1s, 2s, 4s... capped at 30s, plus up to 50% jitter.
func Backoff(attempt int) time.Duration {
	base := min(time.Duration(1<<uint(attempt))*time.Second, 30*time.Second)
	return base + time.Duration(rand.Int64N(int64(base)/2))
}

// withRetry calls fn up to MaxRetries times while it fails with a
// RetryableError, sleeping backoff(attempt) in between. A canceled ctx ends
// the loop with ctx.Err().
func withRetry(ctx context.Context, log *slog.Logger, backoff func(int) time.Duration, filePath string, fn func() error) error {
	var err error
	for attempt := range MaxRetries {
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt == MaxRetries-1 {
			break
		}
		log.Warn("sink retry", "file", filePath, "attempt", attempt+1, "error", err)
		select {
		case <-time.After(backoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return fmt.Errorf("put document %s: giving up after %d attempts: %w", filePath, MaxRetries, err)
}
