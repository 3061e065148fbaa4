package observability

import (
	"context"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"edpsych-connect/internal/common/logger"
)

// LogSpanExporter writes finished spans as debug log entries.
type LogSpanExporter struct {
	log logger.Logger
}

func NewLogSpanExporter(log logger.Logger) *LogSpanExporter {
	return &LogSpanExporter{log: log}
}

func (e *LogSpanExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := map[string]interface{}{
			"span":       s.Name(),
			"traceId":    s.SpanContext().TraceID().String(),
			"spanId":     s.SpanContext().SpanID().String(),
			"durationMs": s.EndTime().Sub(s.StartTime()).Milliseconds(),
			"status":     s.Status().Code.String(),
		}
		for _, attr := range s.Attributes() {
			fields[string(attr.Key)] = attr.Value.Emit()
		}
		e.log.Debug("span finished", fields)
	}
	return nil
}

func (e *LogSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}
