package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

// DBSpan runs fn inside a client span describing a MongoDB operation.
// Works against the global provider, so it is a no-op until InitTracing runs.
func DBSpan(ctx context.Context, collection, operation string, fn func(ctx context.Context) error) error {
	tracer := otel.Tracer(instrumentationName)

	spanCtx, span := tracer.Start(ctx, fmt.Sprintf("db.%s", operation),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			semconv.DBSystemKey.String("mongodb"),
			semconv.DBOperationKey.String(operation),
			attribute.String("db.collection", collection),
		),
	)
	defer span.End()

	err := fn(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// ClientSpan runs fn inside a client span for an outbound dependency
// such as the CRM or a generation provider.
func ClientSpan(ctx context.Context, service, operation string, fn func(ctx context.Context) error) error {
	tracer := otel.Tracer(instrumentationName)

	spanCtx, span := tracer.Start(ctx, service+"."+operation,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("peer.service", service),
		),
	)
	defer span.End()

	err := fn(spanCtx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}
