package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(maxRetries int) *Config {
	return &Config{
		MaxRetries:    maxRetries,
		BackoffFactor: 2,
		InitialDelay:  time.Millisecond,
		MaxDelay:      5 * time.Millisecond,
		Jitter:        time.Millisecond,
	}
}

func TestRetry_SuccessOnFirstTry(t *testing.T) {
	retrier := NewRetrier(fastConfig(3))

	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 1, counter)
}

func TestRetry_SuccessAfterRetries(t *testing.T) {
	retrier := NewRetrier(fastConfig(3))

	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		if counter < 3 {
			return errors.New("temporary error")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 3, counter)
}

func TestRetry_MaxRetriesExceeded(t *testing.T) {
	retrier := NewRetrier(fastConfig(2))

	expectedErr := errors.New("permanent error")
	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		return expectedErr
	})

	require.ErrorIs(t, err, expectedErr)
	assert.Equal(t, 3, counter, "initial try + 2 retries")
}

func TestRetry_NotRetryable(t *testing.T) {
	cfg := fastConfig(5)
	permanent := errors.New("bad request")
	cfg.Retryable = func(err error) bool { return !errors.Is(err, permanent) }
	retrier := NewRetrier(cfg)

	counter := 0
	err := retrier.Do(context.Background(), func() error {
		counter++
		return permanent
	})

	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, counter)
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	retrier := NewRetrier(fastConfig(5))

	err := retrier.Do(ctx, func() error {
		cancel()
		return errors.New("operation error after cancel")
	})

	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewDeliveryConfig_ShortBudget(t *testing.T) {
	cfg := NewDeliveryConfig()
	assert.LessOrEqual(t, cfg.MaxRetries, 3)
	assert.LessOrEqual(t, cfg.MaxDelay, NewDefaultConfig().MaxDelay)
}
