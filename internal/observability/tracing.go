package observability

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Tracer returns a tracer for the given name
func Tracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// StartSpan starts a new span from context
func StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, name, opts...)
}

// StartDBSpan starts a span for database operations
func StartDBSpan(ctx context.Context, operation, table string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("DB %s %s", operation, table),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "sql"),
			attribute.String("db.operation", operation),
			attribute.String("db.sql.table", table),
		),
	)
}

// StartServiceSpan starts a span for service operations
func StartServiceSpan(ctx context.Context, service, operation string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("%s.%s", service, operation),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("service.component", service),
			attribute.String("service.operation", operation),
		),
	)
}

// StartDriveSpan starts a span for an outgoing Drive API call
func StartDriveSpan(ctx context.Context, operation, folderID string) (context.Context, trace.Span) {
	return StartSpan(ctx, fmt.Sprintf("drive.%s", operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("drive.operation", operation),
			attribute.String("folder_id", folderID),
		),
	)
}

// RecordError records an error on the span
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

// DatabaseMetrics holds database-related metrics
type DatabaseMetrics struct {
	queryDuration metric.Float64Histogram
	queryCount    metric.Int64Counter
	errorCount    metric.Int64Counter
}

// NewDatabaseMetrics creates database metrics instruments
func NewDatabaseMetrics() (*DatabaseMetrics, error) {
	meter := otel.Meter(instrumentationName)

	queryDuration, err := meter.Float64Histogram(
		"db.query.duration",
		metric.WithDescription("Database query duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	queryCount, err := meter.Int64Counter(
		"db.query.count",
		metric.WithDescription("Total number of database queries"),
		metric.WithUnit("{queries}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"db.error.count",
		metric.WithDescription("Total number of database errors"),
		metric.WithUnit("{errors}"),
	)
	if err != nil {
		return nil, err
	}

	return &DatabaseMetrics{
		queryDuration: queryDuration,
		queryCount:    queryCount,
		errorCount:    errorCount,
	}, nil
}

// RecordQuery records a database query metrics
func (m *DatabaseMetrics) RecordQuery(ctx context.Context, operation, table string, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("db.operation", operation),
		attribute.String("db.sql.table", table),
	}

	m.queryCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.queryDuration.Record(ctx, float64(duration.Milliseconds()), metric.WithAttributes(attrs...))

	if err != nil {
		m.errorCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}

// TraceDB wraps sql.DB with tracing
type TraceDB struct {
	db *sql.DB
}

// NewTraceDB creates a traced database wrapper
func NewTraceDB(db *sql.DB) *TraceDB {
	return &TraceDB{db: db}
}

// QueryContext executes a query with tracing
func (t *TraceDB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	ctx, span := StartSpan(ctx, "DB Query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "sql"),
			attribute.String("db.statement", truncateQuery(query)),
		),
	)
	defer span.End()

	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	duration := time.Since(start)

	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
	}

	span.SetAttributes(attribute.Int64("db.query_duration_ms", duration.Milliseconds()))

	return rows, err
}

// ExecContext executes a statement with tracing
func (t *TraceDB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	ctx, span := StartSpan(ctx, "DB Exec",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "sql"),
			attribute.String("db.statement", truncateQuery(query)),
		),
	)
	defer span.End()

	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	duration := time.Since(start)

	if err != nil {
		RecordError(span, err)
	} else {
		SetSuccess(span)
		if rowsAffected, raErr := result.RowsAffected(); raErr == nil {
			span.SetAttributes(attribute.Int64("db.rows_affected", rowsAffected))
		}
	}

	span.SetAttributes(attribute.Int64("db.query_duration_ms", duration.Milliseconds()))

	return result, err
}

// DB returns the underlying database connection
func (t *TraceDB) DB() *sql.DB {
	return t.db
}

func truncateQuery(query string) string {
	if len(query) > 500 {
		return query[:500] + "..."
	}
	return query
}

// BusinessMetrics holds custom business metrics
type BusinessMetrics struct {
	syncRuns        metric.Int64Counter
	photosSynced    metric.Int64Counter
	selectionWrites metric.Int64Counter
	finalizeEvents  metric.Int64Counter
	exports         metric.Int64Counter
	authAttempts    metric.Int64Counter
}

// NewBusinessMetrics creates business metrics instruments
func NewBusinessMetrics() (*BusinessMetrics, error) {
	meter := otel.Meter(instrumentationName)

	syncRuns, err := meter.Int64Counter(
		"easygallery.sync.runs",
		metric.WithDescription("Total number of Drive sync runs"),
		metric.WithUnit("{runs}"),
	)
	if err != nil {
		return nil, err
	}

	photosSynced, err := meter.Int64Counter(
		"easygallery.sync.photos",
		metric.WithDescription("Total number of photos written during sync"),
		metric.WithUnit("{photos}"),
	)
	if err != nil {
		return nil, err
	}

	selectionWrites, err := meter.Int64Counter(
		"easygallery.selection.writes",
		metric.WithDescription("Total number of selection ledger writes"),
		metric.WithUnit("{writes}"),
	)
	if err != nil {
		return nil, err
	}

	finalizeEvents, err := meter.Int64Counter(
		"easygallery.selection.finalizes",
		metric.WithDescription("Total number of selection finalizations"),
		metric.WithUnit("{events}"),
	)
	if err != nil {
		return nil, err
	}

	exports, err := meter.Int64Counter(
		"easygallery.exports",
		metric.WithDescription("Total number of copy script exports"),
		metric.WithUnit("{exports}"),
	)
	if err != nil {
		return nil, err
	}

	authAttempts, err := meter.Int64Counter(
		"easygallery.auth.attempts",
		metric.WithDescription("Total number of authentication attempts"),
		metric.WithUnit("{attempts}"),
	)
	if err != nil {
		return nil, err
	}

	return &BusinessMetrics{
		syncRuns:        syncRuns,
		photosSynced:    photosSynced,
		selectionWrites: selectionWrites,
		finalizeEvents:  finalizeEvents,
		exports:         exports,
		authAttempts:    authAttempts,
	}, nil
}

// RecordSyncRun records one sync run and its photo count
func (m *BusinessMetrics) RecordSyncRun(ctx context.Context, userID string, photoCount int, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("user_id", userID),
		attribute.Bool("success", success),
	}
	m.syncRuns.Add(ctx, 1, metric.WithAttributes(attrs...))
	if photoCount > 0 {
		m.photosSynced.Add(ctx, int64(photoCount), metric.WithAttributes(attrs...))
	}
}

// RecordSelectionWrite records one ledger write
func (m *BusinessMetrics) RecordSelectionWrite(ctx context.Context, userID, status string, accepted bool) {
	attrs := []attribute.KeyValue{
		attribute.String("user_id", userID),
		attribute.String("selection_status", status),
		attribute.Bool("accepted", accepted),
	}
	m.selectionWrites.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordFinalize records one selection finalization
func (m *BusinessMetrics) RecordFinalize(ctx context.Context, userID string, selectedCount int) {
	attrs := []attribute.KeyValue{
		attribute.String("user_id", userID),
		attribute.Int("selected_count", selectedCount),
	}
	m.finalizeEvents.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordExport records one copy script download
func (m *BusinessMetrics) RecordExport(ctx context.Context, userID string, photoCount int) {
	attrs := []attribute.KeyValue{
		attribute.String("user_id", userID),
		attribute.Int("photo_count", photoCount),
	}
	m.exports.Add(ctx, 1, metric.WithAttributes(attrs...))
}

// RecordAuthAttempt records an authentication attempt
func (m *BusinessMetrics) RecordAuthAttempt(ctx context.Context, method string, success bool) {
	attrs := []attribute.KeyValue{
		attribute.String("auth_method", method),
		attribute.Bool("success", success),
	}
	m.authAttempts.Add(ctx, 1, metric.WithAttributes(attrs...))
}
