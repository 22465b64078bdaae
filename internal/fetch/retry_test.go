package fetch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:    3,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		BackoffFactor: 2.0,
	}
}

func TestRetry_SucceedsAfterFailures(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("flaky")
		}
		return nil
	}, fastRetryConfig())

	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_Exhausted(t *testing.T) {
	attempts := 0
	err := RetryWithConfig(context.Background(), func() error {
		attempts++
		return errors.New("down")
	}, fastRetryConfig())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry exhausted")
	// MaxRetries of 3 means one initial attempt plus three retries
	assert.Equal(t, 4, attempts)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	attempts := 0
	err := RetryWithConfig(ctx, func() error {
		attempts++
		return errors.New("down")
	}, fastRetryConfig())

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, attempts)
}

func TestCalculateDelay_BackoffCapped(t *testing.T) {
	cfg := RetryConfig{
		InitialDelay:  10 * time.Millisecond,
		MaxDelay:      40 * time.Millisecond,
		BackoffFactor: 2.0,
	}

	assert.Equal(t, 10*time.Millisecond, calculateDelay(0, cfg))
	assert.Equal(t, 20*time.Millisecond, calculateDelay(1, cfg))
	assert.Equal(t, 40*time.Millisecond, calculateDelay(2, cfg))
	// Capped past this point
	assert.Equal(t, 40*time.Millisecond, calculateDelay(5, cfg))
}
