package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dbTracingPrefix = "inventory_tracing"

// DBTracingConfig configures query spans
type DBTracingConfig struct {
	DBSystem       string // postgresql or sqlite
	SlowThreshold  time.Duration
	LogFullSQL     bool // include bound variables in db.statement
	TracerProvider trace.TracerProvider
}

// DBTracingPlugin is a gorm.Plugin that emits a span per query through
// otelgorm and flags slow or failed queries on that span.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates the plugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Name implements gorm.Plugin
func (p *DBTracingPlugin) Name() string {
	return "inventory:db_tracing"
}

// Initialize implements gorm.Plugin. The annotation hooks are registered
// ahead of otelgorm so its span is still open in the after hook.
func (p *DBTracingPlugin) Initialize(db *gorm.DB) error {
	if err := registerAround(db, dbTracingPrefix, markStart(dbTracingPrefix), p.annotate); err != nil {
		return err
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if p.config.TracerProvider != nil {
		opts = append(opts, otelgorm.WithTracerProvider(p.config.TracerProvider))
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.String("db_system", p.config.DBSystem),
		zap.Duration("slow_threshold", p.config.SlowThreshold),
		zap.Bool("log_full_sql", p.config.LogFullSQL),
	)
	return nil
}

func (p *DBTracingPlugin) annotate(db *gorm.DB) {
	if db.Statement.Context == nil {
		return
	}
	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}

	if db.Statement.Table != "" {
		span.SetAttributes(attribute.String("db.sql.table", db.Statement.Table))
	}
	span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

	if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
		span.RecordError(db.Error)
		span.SetStatus(codes.Error, db.Error.Error())
	}

	if elapsed, ok := elapsedSince(db, dbTracingPrefix); ok && p.config.SlowThreshold > 0 && elapsed > p.config.SlowThreshold {
		span.SetAttributes(
			attribute.Bool("db.slow_query", true),
			attribute.Int64("db.query_duration_ms", elapsed.Milliseconds()),
		)
	}
}
