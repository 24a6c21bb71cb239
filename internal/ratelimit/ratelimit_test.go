package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitDisabled(t *testing.T) {
	r := NewSimpleRateLimiter(0, 0)

	start := time.Now()
	for i := 0; i < 5; i++ {
		require.NoError(t, r.Wait(context.Background()))
	}
	assert.Less(t, time.Since(start), 50*time.Millisecond)
}

func TestWaitSpacesActions(t *testing.T) {
	r := NewSimpleRateLimiter(40*time.Millisecond, 40*time.Millisecond)

	require.NoError(t, r.Wait(context.Background()))
	start := time.Now()
	require.NoError(t, r.Wait(context.Background()))

	assert.GreaterOrEqual(t, time.Since(start), 35*time.Millisecond)
}

func TestWaitCancelled(t *testing.T) {
	r := NewSimpleRateLimiter(time.Hour, time.Hour)
	require.NoError(t, r.Wait(context.Background()))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := r.Wait(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWaitAlreadyCancelled(t *testing.T) {
	r := NewSimpleRateLimiter(0, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, r.Wait(ctx), context.Canceled)
}

func TestCalculateDelayWithinBounds(t *testing.T) {
	r := NewSimpleRateLimiter(10*time.Millisecond, 20*time.Millisecond)

	for i := 0; i < 100; i++ {
		d := r.calculateDelay()
		assert.GreaterOrEqual(t, d, 10*time.Millisecond)
		assert.Less(t, d, 20*time.Millisecond)
	}
}

func TestNewClampsMaxToMin(t *testing.T) {
	r := NewSimpleRateLimiter(5*time.Second, time.Second)

	assert.Equal(t, 5*time.Second, r.minDelay)
	assert.Equal(t, 5*time.Second, r.maxDelay)
	assert.Equal(t, 5*time.Second, r.calculateDelay())
}
