package proaudio

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRetryConfig_Backoff(t *testing.T) {
	r := RetryConfig{
		MaxAttempts:     5,
		InitialBackoff:  100 * time.Millisecond,
		MaxBackoff:      350 * time.Millisecond,
		BackoffMultiple: 2,
	}

	assert.Equal(t, time.Duration(0), r.Backoff(0))
	assert.Equal(t, 100*time.Millisecond, r.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, r.Backoff(2))
	assert.Equal(t, 350*time.Millisecond, r.Backoff(3))
	assert.Equal(t, 350*time.Millisecond, r.Backoff(10))
}

func TestRetryConfig_BackoffWithoutInitial(t *testing.T) {
	r := RetryConfig{MaxAttempts: 3}
	assert.Equal(t, time.Duration(0), r.Backoff(2))
}

func TestRetryConfig_MultipleBelowOneIsConstant(t *testing.T) {
	r := RetryConfig{InitialBackoff: 50 * time.Millisecond, BackoffMultiple: 0.5}
	assert.Equal(t, 50*time.Millisecond, r.Backoff(4))
}

func TestDefaultRetryConfig(t *testing.T) {
	r := DefaultRetryConfig()
	assert.Equal(t, 3, r.MaxAttempts)
	assert.Equal(t, 500*time.Millisecond, r.Backoff(1))
	assert.Equal(t, time.Second, r.Backoff(2))
}

func TestSleepFunc_HonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, sleepFunc(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepFunc(context.Background(), time.Millisecond))
	assert.NoError(t, sleepFunc(context.Background(), 0))
}
