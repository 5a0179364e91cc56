package observability

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// StartServiceSpan starts an internal span named component.operation
func StartServiceSpan(ctx context.Context, component, operation string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, component+"."+operation,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", component),
			Operation(operation),
		),
	)
}

// RecordError marks the span failed; a nil err is ignored
func RecordError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSuccess marks the span as successful
func SetSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// AddEvent adds an event to the span
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Span attribute helpers for common fields
func PhotoID(id int64) attribute.KeyValue {
	return attribute.Int64("photo_id", id)
}

func AlbumID(id int64) attribute.KeyValue {
	return attribute.Int64("album_id", id)
}

func StorageKey(key string) attribute.KeyValue {
	return attribute.String("storage.key", key)
}

func Operation(op string) attribute.KeyValue {
	return attribute.String("operation", op)
}

// TraceDB wraps the kv_store connection with client spans and query
// metrics. It satisfies repository.DBTX.
type TraceDB struct {
	db       *sql.DB
	system   string
	duration metric.Float64Histogram
	errors   metric.Int64Counter
}

// NewTraceDB creates a traced database wrapper. system is the db.system
// attribute value, e.g. "sqlite" or "postgresql".
func NewTraceDB(db *sql.DB, system string) (*TraceDB, error) {
	meter := otel.Meter(instrumentationName)

	duration, err := meter.Float64Histogram("db.query.duration",
		metric.WithDescription("kv_store statement duration in milliseconds"),
		metric.WithUnit("ms"))
	if err != nil {
		return nil, err
	}
	errs, err := meter.Int64Counter("db.error.count",
		metric.WithDescription("kv_store statements that failed"),
		metric.WithUnit("{errors}"))
	if err != nil {
		return nil, err
	}

	return &TraceDB{db: db, system: system, duration: duration, errors: errs}, nil
}

// ExecContext executes a statement with tracing
func (t *TraceDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := t.start(ctx, "exec", query)
	defer span.End()

	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	if err == nil {
		if n, raErr := result.RowsAffected(); raErr == nil {
			span.SetAttributes(attribute.Int64("db.rows_affected", n))
		}
	}
	t.finish(ctx, span, "exec", start, err)
	return result, err
}

// QueryRowContext executes a single-row query with tracing. The span covers
// the round trip only; scanning happens after it ends.
func (t *TraceDB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	ctx, span := t.start(ctx, "query_row", query)
	defer span.End()

	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.finish(ctx, span, "query_row", start, row.Err())
	return row
}

func (t *TraceDB) start(ctx context.Context, operation, query string) (context.Context, trace.Span) {
	if len(query) > 500 {
		query = query[:500] + "..."
	}
	return otel.Tracer(instrumentationName).Start(ctx, "kv_store "+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", t.system),
			attribute.String("db.operation", operation),
			attribute.String("db.statement", query),
		),
	)
}

func (t *TraceDB) finish(ctx context.Context, span trace.Span, operation string, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("db.system", t.system),
		attribute.String("db.operation", operation),
	)
	t.duration.Record(ctx, float64(time.Since(start).Microseconds())/1000, attrs)

	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		RecordError(span, err)
		t.errors.Add(ctx, 1, attrs)
		return
	}
	SetSuccess(span)
}
