package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/storefront/inventory/internal/domain/inventory"
)

type fakeGenerator struct {
	calls   atomic.Int32
	orders  []inventory.PurchaseOrder
	err     error
	release chan struct{}
}

func (g *fakeGenerator) GenerateReorderSuggestions(ctx context.Context) ([]inventory.PurchaseOrder, error) {
	g.calls.Add(1)
	if g.release != nil {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return g.orders, g.err
}

func TestNewReorderTrigger(t *testing.T) {
	logger := zaptest.NewLogger(t)

	_, err := NewReorderTrigger(ReorderTriggerConfig{}, &fakeGenerator{}, logger)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewReorderTrigger(ReorderTriggerConfig{Interval: time.Second}, nil, logger)
	assert.ErrorIs(t, err, ErrInvalidConfig)

	trigger, err := NewReorderTrigger(ReorderTriggerConfig{Interval: time.Second}, &fakeGenerator{}, logger)
	require.NoError(t, err)
	assert.Equal(t, time.Second, trigger.config.RunTimeout)
	assert.Nil(t, trigger.LastRun())
}

func TestReorderTrigger_RunNow(t *testing.T) {
	ctx := context.Background()

	t.Run("records the result", func(t *testing.T) {
		gen := &fakeGenerator{orders: make([]inventory.PurchaseOrder, 2)}
		trigger, err := NewReorderTrigger(ReorderTriggerConfig{Interval: time.Hour}, gen, zaptest.NewLogger(t))
		require.NoError(t, err)

		orders, err := trigger.RunNow(ctx)
		require.NoError(t, err)
		assert.Len(t, orders, 2)

		last := trigger.LastRun()
		require.NotNil(t, last)
		assert.Equal(t, 2, last.Orders)
		assert.NoError(t, last.Err)
		assert.Equal(t, 1, trigger.Runs())
	})

	t.Run("records failures", func(t *testing.T) {
		gen := &fakeGenerator{err: errors.New("ledger unavailable")}
		trigger, err := NewReorderTrigger(ReorderTriggerConfig{Interval: time.Hour}, gen, zaptest.NewLogger(t))
		require.NoError(t, err)

		_, err = trigger.RunNow(ctx)
		require.Error(t, err)
		require.NotNil(t, trigger.LastRun())
		assert.EqualError(t, trigger.LastRun().Err, "ledger unavailable")
	})

	t.Run("overlapping runs are refused", func(t *testing.T) {
		gen := &fakeGenerator{release: make(chan struct{})}
		trigger, err := NewReorderTrigger(ReorderTriggerConfig{Interval: time.Hour}, gen, zaptest.NewLogger(t))
		require.NoError(t, err)

		done := make(chan error, 1)
		go func() {
			_, err := trigger.RunNow(ctx)
			done <- err
		}()
		require.Eventually(t, func() bool { return gen.calls.Load() == 1 }, time.Second, 5*time.Millisecond)

		_, err = trigger.RunNow(ctx)
		assert.ErrorIs(t, err, ErrRunInProgress)

		close(gen.release)
		require.NoError(t, <-done)
		assert.Equal(t, int32(1), gen.calls.Load())
	})
}

func TestReorderTrigger_Loop(t *testing.T) {
	gen := &fakeGenerator{}
	trigger, err := NewReorderTrigger(ReorderTriggerConfig{
		Interval:   10 * time.Millisecond,
		RunOnStart: true,
	}, gen, zaptest.NewLogger(t))
	require.NoError(t, err)

	require.NoError(t, trigger.Start(context.Background()))
	require.NoError(t, trigger.Start(context.Background()))
	assert.True(t, trigger.IsRunning())

	require.Eventually(t, func() bool { return gen.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)

	stopCtx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, trigger.Stop(stopCtx))
	assert.False(t, trigger.IsRunning())

	calls := gen.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, gen.calls.Load())
	assert.NoError(t, trigger.Stop(stopCtx))
}
