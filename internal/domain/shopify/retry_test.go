package shopify

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	policy := DefaultRetryPolicy()

	retryable := &APIError{StatusCode: http.StatusServiceUnavailable}
	assert.True(t, policy.ShouldRetry(retryable, 1))
	assert.True(t, policy.ShouldRetry(retryable, 2))
	assert.False(t, policy.ShouldRetry(retryable, 3), "last attempt never retries")

	assert.False(t, policy.ShouldRetry(&APIError{StatusCode: http.StatusUnauthorized}, 1))
	assert.False(t, policy.ShouldRetry(errors.New("plain error"), 1))
	assert.False(t, policy.ShouldRetry(nil, 1))
}

func TestRetryPolicy_NoRetry(t *testing.T) {
	policy := NoRetryPolicy()
	assert.False(t, policy.ShouldRetry(&APIError{StatusCode: http.StatusServiceUnavailable}, 1))
}

func TestRetryPolicy_DelayForAttempt(t *testing.T) {
	policy := DefaultRetryPolicy()

	assert.Equal(t, time.Duration(0), policy.DelayForAttempt(0))

	// Exponential growth within jitter bounds, capped at the max delay.
	d1 := policy.DelayForAttempt(1)
	assert.InDelta(t, float64(time.Second), float64(d1), float64(time.Second)*0.1)

	d2 := policy.DelayForAttempt(2)
	assert.InDelta(t, float64(2*time.Second), float64(d2), float64(2*time.Second)*0.1)

	d10 := policy.DelayForAttempt(10)
	assert.LessOrEqual(t, d10, 30*time.Second)
}

func TestRetryPolicy_WaitForRetryHonorsContext(t *testing.T) {
	policy := DefaultRetryPolicy()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.False(t, policy.WaitForRetry(ctx, 1))

	fast := NoRetryPolicy()
	assert.True(t, fast.WaitForRetry(context.Background(), 1))
}
