package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const startedAtKey = "telemetry:started_at"

// DBConfig controls GORM instrumentation
type DBConfig struct {
	TraceEnabled bool
	// LogFullSQL keeps bound values in span statements. Development only.
	LogFullSQL         bool
	SlowQueryThreshold time.Duration
}

type dbInstrumentation struct {
	cfg      DBConfig
	duration metric.Float64Histogram
	logger   *zap.Logger
}

// InstrumentDB registers otelgorm tracing plus query timing on db.
// Every statement is timed into a histogram when meter is set; statements
// slower than the threshold are logged and flagged on their span.
func InstrumentDB(db *gorm.DB, cfg DBConfig, meter metric.Meter, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	inst := &dbInstrumentation{cfg: cfg, logger: logger.Named("db")}

	if cfg.TraceEnabled {
		opts := []otelgorm.Option{otelgorm.WithDBName("postgresql")}
		if !cfg.LogFullSQL {
			opts = append(opts, otelgorm.WithoutQueryVariables())
		}
		if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
			return err
		}
	}
	if meter != nil {
		h, err := meter.Float64Histogram("ledger.db.query.duration",
			metric.WithDescription("GORM statement duration"),
			metric.WithUnit("ms"))
		if err != nil {
			return err
		}
		inst.duration = h
	}

	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("telemetry:before_create", inst.before),
		cb.Create().After("gorm:create").Register("telemetry:after_create", inst.after("create")),
		cb.Query().Before("gorm:query").Register("telemetry:before_query", inst.before),
		cb.Query().After("gorm:query").Register("telemetry:after_query", inst.after("query")),
		cb.Update().Before("gorm:update").Register("telemetry:before_update", inst.before),
		cb.Update().After("gorm:update").Register("telemetry:after_update", inst.after("update")),
		cb.Delete().Before("gorm:delete").Register("telemetry:before_delete", inst.before),
		cb.Delete().After("gorm:delete").Register("telemetry:after_delete", inst.after("delete")),
		cb.Row().Before("gorm:row").Register("telemetry:before_row", inst.before),
		cb.Row().After("gorm:row").Register("telemetry:after_row", inst.after("row")),
		cb.Raw().Before("gorm:raw").Register("telemetry:before_raw", inst.before),
		cb.Raw().After("gorm:raw").Register("telemetry:after_raw", inst.after("raw")),
	)
}

func (d *dbInstrumentation) before(db *gorm.DB) {
	db.InstanceSet(startedAtKey, time.Now())
}

func (d *dbInstrumentation) after(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		v, ok := db.InstanceGet(startedAtKey)
		if !ok {
			return
		}
		started, ok := v.(time.Time)
		if !ok {
			return
		}
		elapsed := time.Since(started)
		table := db.Statement.Table
		ctx := db.Statement.Context

		if d.duration != nil && ctx != nil {
			d.duration.Record(ctx, float64(elapsed.Microseconds())/1000,
				metric.WithAttributes(
					attribute.String("db.operation", operation),
					attribute.String("db.sql.table", table),
					attribute.Bool("error", db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound)),
				))
		}

		var span trace.Span
		if ctx != nil {
			span = trace.SpanFromContext(ctx)
		}
		if span != nil && span.IsRecording() {
			if db.Error != nil && !errors.Is(db.Error, gorm.ErrRecordNotFound) {
				span.SetStatus(codes.Error, db.Error.Error())
			}
			if elapsed > d.cfg.SlowQueryThreshold {
				span.AddEvent("slow_query", trace.WithAttributes(
					attribute.String("db.sql.table", table),
					attribute.Int64("duration_ms", elapsed.Milliseconds()),
				))
			}
		}

		if elapsed > d.cfg.SlowQueryThreshold {
			d.logger.Warn("Slow query",
				zap.String("operation", operation),
				zap.String("table", table),
				zap.Duration("elapsed", elapsed),
				zap.Duration("threshold", d.cfg.SlowQueryThreshold))
		}
	}
}
