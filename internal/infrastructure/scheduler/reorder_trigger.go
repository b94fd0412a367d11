// Package scheduler runs periodic background jobs for the inventory service.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/storefront/inventory/internal/domain/inventory"
	"github.com/storefront/inventory/internal/infrastructure/telemetry"
)

// ReorderGenerator produces draft purchase orders for stock below its
// reorder point.
type ReorderGenerator interface {
	GenerateReorderSuggestions(ctx context.Context) ([]inventory.PurchaseOrder, error)
}

// ReorderTriggerConfig holds configuration for the reorder trigger
type ReorderTriggerConfig struct {
	Interval   time.Duration
	RunOnStart bool
	RunTimeout time.Duration
}

// RunResult describes the outcome of one reorder run
type RunResult struct {
	StartedAt time.Time
	Duration  time.Duration
	Orders    int
	Err       error
}

// ReorderTrigger periodically generates reorder suggestions. Runs never
// overlap; a tick that arrives while a run is active is skipped.
type ReorderTrigger struct {
	config    ReorderTriggerConfig
	generator ReorderGenerator
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool
	runMu     sync.Mutex
	last      *RunResult
	runs      int
}

// NewReorderTrigger creates a trigger. Interval must be positive.
func NewReorderTrigger(config ReorderTriggerConfig, generator ReorderGenerator, logger *zap.Logger) (*ReorderTrigger, error) {
	if config.Interval <= 0 {
		return nil, fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if generator == nil {
		return nil, fmt.Errorf("%w: generator is required", ErrInvalidConfig)
	}
	if config.RunTimeout <= 0 {
		config.RunTimeout = config.Interval
	}
	return &ReorderTrigger{
		config:    config,
		generator: generator,
		logger:    logger.Named("reorder_trigger"),
	}, nil
}

// Start begins the periodic loop. Calling Start on a running trigger is a no-op.
func (t *ReorderTrigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = true
	ctx, t.cancel = context.WithCancel(ctx)
	t.mu.Unlock()

	t.wg.Add(1)
	go t.runLoop(ctx)

	t.logger.Info("Reorder trigger started",
		zap.Duration("interval", t.config.Interval),
		zap.Bool("run_on_start", t.config.RunOnStart),
	)
	return nil
}

// Stop cancels the loop and waits for an active run to finish or ctx to expire
func (t *ReorderTrigger) Stop(ctx context.Context) error {
	t.mu.Lock()
	if !t.isRunning {
		t.mu.Unlock()
		return nil
	}
	t.isRunning = false
	cancel := t.cancel
	t.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		t.logger.Info("Reorder trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (t *ReorderTrigger) runLoop(ctx context.Context) {
	defer t.wg.Done()

	if t.config.RunOnStart {
		t.tick(ctx)
	}

	ticker := time.NewTicker(t.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.tick(ctx)
		}
	}
}

func (t *ReorderTrigger) tick(ctx context.Context) {
	if _, err := t.RunNow(ctx); err != nil && !errors.Is(err, ErrRunInProgress) {
		t.logger.Error("Reorder run failed", zap.Error(err))
	}
}

// RunNow performs a reorder run immediately and returns the generated orders.
// It returns ErrRunInProgress if another run is active.
func (t *ReorderTrigger) RunNow(ctx context.Context) ([]inventory.PurchaseOrder, error) {
	if !t.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer t.runMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, t.config.RunTimeout)
	defer cancel()

	ctx, span := telemetry.StartSpan(ctx, "inventory.reorder.run")
	started := time.Now()
	orders, err := t.generator.GenerateReorderSuggestions(ctx)
	result := &RunResult{
		StartedAt: started,
		Duration:  time.Since(started),
		Orders:    len(orders),
		Err:       err,
	}
	span.SetAttributes(attribute.Int("inventory.reorder.orders", len(orders)))
	telemetry.EndSpan(span, err)

	t.mu.Lock()
	t.last = result
	t.runs++
	t.mu.Unlock()

	if err != nil {
		return nil, err
	}
	t.logger.Info("Reorder run completed",
		zap.Int("orders", len(orders)),
		zap.Duration("duration", result.Duration),
	)
	return orders, nil
}

// LastRun returns the most recent run result, or nil before the first run
func (t *ReorderTrigger) LastRun() *RunResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last == nil {
		return nil
	}
	r := *t.last
	return &r
}

// Runs returns how many runs have completed
func (t *ReorderTrigger) Runs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

// IsRunning reports whether the periodic loop is active
func (t *ReorderTrigger) IsRunning() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.isRunning
}
