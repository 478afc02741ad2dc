package usecase

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("shotmap/internal/usecase")

// startStageSpan opens a span for one pipeline stage. A batch run is its own
// trace root, so spans are created even when the context carries no parent.
func startStageSpan(ctx context.Context, stage string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return tracer.Start(ctx, "aggregation."+stage, trace.WithAttributes(attrs...))
}
