package observability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"edpsych-connect/internal/common/logger"
)

func TestLogSpanExporterWritesFinishedSpans(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	log := logger.NewZapAdapter(zap.New(core))

	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(NewLogSpanExporter(log)))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	_, span := tp.Tracer("test").Start(context.Background(), "approve-draft")
	span.SetAttributes(attribute.String("filename", "post.md"))
	span.End()

	entries := logs.FilterMessage("span finished").All()
	require.Len(t, entries, 1)
	ctx := entries[0].ContextMap()
	assert.Equal(t, "approve-draft", ctx["span"])
	assert.Equal(t, "post.md", ctx["filename"])
	assert.NotEmpty(t, ctx["traceId"])
}
