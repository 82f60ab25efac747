package srv

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPeriodic_TicksUntilCancelled(t *testing.T) {
	var ticks atomic.Int32
	p := NewPeriodic("ticker", 5*time.Millisecond, func(ctx context.Context) {
		ticks.Add(1)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Start(ctx) }()

	assert.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("periodic task did not stop")
	}
}

func TestPeriodic_Disabled(t *testing.T) {
	p := NewPeriodic("off", 0, func(ctx context.Context) {
		t.Fatal("tick must not run")
	})
	require.NoError(t, p.Start(context.Background()))
}

func TestPeriodic_OnShutdown(t *testing.T) {
	called := false
	p := NewPeriodic("saver", time.Minute, func(ctx context.Context) {}).
		OnShutdown(func(ctx context.Context) error {
			called = true
			return nil
		})

	require.NoError(t, p.Shutdown(context.Background()))
	assert.True(t, called)
	assert.Equal(t, "saver", p.String())

	assert.NoError(t, NewPeriodic("plain", time.Minute, nil).Shutdown(context.Background()))
}
