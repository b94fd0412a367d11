package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dbMetricsPrefix = "inventory_metrics"

// DBMetricsPlugin is a gorm.Plugin recording query latency, query errors and
// connection pool state.
type DBMetricsPlugin struct {
	meter         metric.Meter
	logger        *zap.Logger
	queryDuration *Histogram
	queryErrors   *Counter
	registration  metric.Registration
}

// NewDBMetricsPlugin creates the plugin and its instruments
func NewDBMetricsPlugin(meter metric.Meter, logger *zap.Logger) (*DBMetricsPlugin, error) {
	duration, err := NewHistogram(meter,
		"inventory_db_query_duration_seconds",
		"Database query duration",
		"s",
		DBDurationBuckets...,
	)
	if err != nil {
		return nil, err
	}
	queryErrors, err := NewCounter(meter,
		"inventory_db_query_errors_total",
		"Database queries that returned an error",
		"{queries}",
	)
	if err != nil {
		return nil, err
	}
	return &DBMetricsPlugin{
		meter:         meter,
		logger:        logger,
		queryDuration: duration,
		queryErrors:   queryErrors,
	}, nil
}

// Name implements gorm.Plugin
func (p *DBMetricsPlugin) Name() string {
	return "inventory:db_metrics"
}

// Initialize implements gorm.Plugin
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	if err := registerAround(db, dbMetricsPrefix, markStart(dbMetricsPrefix), p.record); err != nil {
		return err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get sql.DB for pool metrics: %w", err)
	}

	connections, err := p.meter.Int64ObservableGauge("inventory_db_pool_connections",
		metric.WithDescription("Database pool connections by state"),
		metric.WithUnit("{connections}"))
	if err != nil {
		return err
	}
	waits, err := p.meter.Int64ObservableCounter("inventory_db_pool_wait_total",
		metric.WithDescription("Connections waited for"),
		metric.WithUnit("{waits}"))
	if err != nil {
		return err
	}

	p.registration, err = p.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		stats := sqlDB.Stats()
		o.ObserveInt64(connections, int64(stats.OpenConnections), metric.WithAttributes(AttrDBPoolState.String("open")))
		o.ObserveInt64(connections, int64(stats.InUse), metric.WithAttributes(AttrDBPoolState.String("in_use")))
		o.ObserveInt64(connections, int64(stats.Idle), metric.WithAttributes(AttrDBPoolState.String("idle")))
		o.ObserveInt64(waits, stats.WaitCount)
		return nil
	}, connections, waits)
	return err
}

// Close unregisters the pool callback
func (p *DBMetricsPlugin) Close() error {
	if p.registration == nil {
		return nil
	}
	return p.registration.Unregister()
}

func (p *DBMetricsPlugin) record(db *gorm.DB) {
	elapsed, ok := elapsedSince(db, dbMetricsPrefix)
	if !ok {
		return
	}
	ctx := db.Statement.Context
	op := operationOf(db)
	table := db.Statement.Table

	p.queryDuration.RecordDuration(ctx, elapsed, AttrDBOperation.String(op), AttrDBTable.String(table))
	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		p.queryErrors.Inc(ctx, AttrDBOperation.String(op), AttrDBTable.String(table))
	}
}

func operationOf(db *gorm.DB) string {
	fields := strings.Fields(db.Statement.SQL.String())
	if len(fields) == 0 {
		return "unknown"
	}
	return strings.ToLower(fields[0])
}
