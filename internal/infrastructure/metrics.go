package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// BusinessMetrics holds all application-specific metrics
type BusinessMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Ingestion metrics
	FilesIngested  metric.Int64Counter
	IngestFailures metric.Int64Counter
	IngestDuration metric.Float64Histogram
	RowsIngested   metric.Int64Counter

	// Cleaning metrics
	CleaningsTotal   metric.Int64Counter
	CleaningDuration metric.Float64Histogram
	RowsRemoved      metric.Int64Counter
	CellsFilled      metric.Int64Counter

	// Export metrics
	ExportsTotal metric.Int64Counter
	ExportBytes  metric.Int64Counter

	// Session metrics
	WebSocketSessions metric.Int64UpDownCounter
	WebSocketMessages metric.Int64Counter

	// System metrics
	SystemErrors metric.Int64Counter
}

// CreateBusinessMetrics creates application-specific metrics
func CreateBusinessMetrics(meter metric.Meter) (*BusinessMetrics, error) {
	var (
		m   BusinessMetrics
		err error
	)

	counters := []struct {
		target      *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&m.HTTPRequestsTotal, "http_requests_total", "Total number of HTTP requests", ""},
		{&m.FilesIngested, "dataclean_files_ingested_total", "Uploaded files parsed into datasets", ""},
		{&m.IngestFailures, "dataclean_ingest_failures_total", "Uploads rejected during ingestion", ""},
		{&m.RowsIngested, "dataclean_rows_ingested_total", "Rows read from uploaded files", ""},
		{&m.CleaningsTotal, "dataclean_cleanings_total", "Cleaning runs by missing-value strategy", ""},
		{&m.RowsRemoved, "dataclean_rows_removed_total", "Rows removed by cleaning", ""},
		{&m.CellsFilled, "dataclean_cells_filled_total", "Missing cells replaced by a fill strategy", ""},
		{&m.ExportsTotal, "dataclean_exports_total", "Cleaned datasets exported", ""},
		{&m.ExportBytes, "dataclean_export_bytes_total", "Bytes of exported files", "By"},
		{&m.WebSocketMessages, "dataclean_websocket_messages_total", "WebSocket messages handled", ""},
		{&m.SystemErrors, "system_errors_total", "Total number of system errors", ""},
	}
	for _, c := range counters {
		opts := []metric.Int64CounterOption{metric.WithDescription(c.description)}
		if c.unit != "" {
			opts = append(opts, metric.WithUnit(c.unit))
		}
		if *c.target, err = meter.Int64Counter(c.name, opts...); err != nil {
			return nil, err
		}
	}

	histograms := []struct {
		target      *metric.Float64Histogram
		name        string
		description string
	}{
		{&m.HTTPRequestDuration, "http_request_duration_seconds", "HTTP request duration in seconds"},
		{&m.IngestDuration, "dataclean_ingest_duration_seconds", "Time spent parsing an upload"},
		{&m.CleaningDuration, "dataclean_cleaning_duration_seconds", "Time spent cleaning a dataset"},
	}
	for _, h := range histograms {
		if *h.target, err = meter.Float64Histogram(h.name,
			metric.WithDescription(h.description),
			metric.WithUnit("s"),
		); err != nil {
			return nil, err
		}
	}

	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.WebSocketSessions, err = meter.Int64UpDownCounter(
		"dataclean_websocket_sessions",
		metric.WithDescription("Open WebSocket cleaning sessions"),
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordHTTPRequest records a completed HTTP request
func RecordHTTPRequest(ctx context.Context, metrics *BusinessMetrics, method, route string, status int, duration time.Duration) {
	if metrics == nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", status),
	)
	metrics.HTTPRequestsTotal.Add(ctx, 1, attrs)
	metrics.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordIngest records the outcome of parsing one upload
func RecordIngest(ctx context.Context, metrics *BusinessMetrics, format string, rows int, duration time.Duration, err error) {
	if metrics == nil {
		return
	}

	formatAttr := attribute.String("file.format", format)
	status := "success"
	if err != nil {
		status = "failure"
		metrics.IngestFailures.Add(ctx, 1, metric.WithAttributes(formatAttr))
	} else {
		metrics.FilesIngested.Add(ctx, 1, metric.WithAttributes(formatAttr))
		metrics.RowsIngested.Add(ctx, int64(rows), metric.WithAttributes(formatAttr))
	}
	metrics.IngestDuration.Record(ctx, duration.Seconds(),
		metric.WithAttributes(formatAttr, attribute.String("status", status)))
}

// CleaningObservation summarizes one cleaning run for metrics
type CleaningObservation struct {
	Strategy    string
	Deduplicate bool
	RowsBefore  int
	RowsAfter   int
	CellsFilled int
	Duration    time.Duration
}

// RecordCleaning records a cleaning run and annotates the active span
func RecordCleaning(ctx context.Context, metrics *BusinessMetrics, obs CleaningObservation) {
	attrs := []attribute.KeyValue{
		attribute.String("cleaning.strategy", obs.Strategy),
		attribute.Bool("cleaning.deduplicate", obs.Deduplicate),
	}

	if span := trace.SpanFromContext(ctx); span.IsRecording() {
		span.AddEvent("dataset.cleaned", trace.WithAttributes(append(attrs,
			attribute.Int("rows.before", obs.RowsBefore),
			attribute.Int("rows.after", obs.RowsAfter),
			attribute.Int("cells.filled", obs.CellsFilled),
		)...))
	}

	if metrics == nil {
		return
	}

	metrics.CleaningsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	metrics.CleaningDuration.Record(ctx, obs.Duration.Seconds(), metric.WithAttributes(attrs...))
	if removed := obs.RowsBefore - obs.RowsAfter; removed > 0 {
		metrics.RowsRemoved.Add(ctx, int64(removed), metric.WithAttributes(attrs...))
	}
	if obs.CellsFilled > 0 {
		metrics.CellsFilled.Add(ctx, int64(obs.CellsFilled), metric.WithAttributes(attrs...))
	}
}

// RecordExport records an exported file
func RecordExport(ctx context.Context, metrics *BusinessMetrics, format string, size int) {
	if metrics == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("file.format", format))
	metrics.ExportsTotal.Add(ctx, 1, attrs)
	metrics.ExportBytes.Add(ctx, int64(size), attrs)
}

// RecordSessionChange records a WebSocket session opening (+1) or closing (-1)
func RecordSessionChange(ctx context.Context, metrics *BusinessMetrics, delta int64) {
	if metrics == nil {
		return
	}
	metrics.WebSocketSessions.Add(ctx, delta)
}

// RecordSessionMessage records a WebSocket message by type
func RecordSessionMessage(ctx context.Context, metrics *BusinessMetrics, messageType string) {
	if metrics == nil {
		return
	}
	metrics.WebSocketMessages.Add(ctx, 1, metric.WithAttributes(attribute.String("message.type", messageType)))
}

// RecordSystemError counts an unexpected failure by component
func RecordSystemError(ctx context.Context, metrics *BusinessMetrics, component string) {
	if metrics == nil {
		return
	}
	metrics.SystemErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("component", component)))
}
