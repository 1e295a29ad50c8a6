package tracing

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Arkiv-Network/inf-demo/internal/config"
)

const tracerName = "github.com/Arkiv-Network/inf-demo"

// InjectTraceID attaches a fresh traceId to the context logger. When the
// context already carries a sampled span its trace id is reused.
func InjectTraceID(ctx context.Context) context.Context {
	id := uuid.New().String()
	if sc := trace.SpanContextFromContext(ctx); sc.HasTraceID() {
		id = sc.TraceID().String()
	}
	logger := log.Ctx(ctx).With().Str("traceId", id).Logger()
	return logger.WithContext(ctx)
}

// StartSpan starts a span on the global tracer. A recording span also puts its
// trace id into the context logger, a noop span leaves the logger untouched.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
	if span.SpanContext().HasTraceID() {
		ctx = InjectTraceID(ctx)
	}
	return ctx, span
}

// EndSpan marks span as failed when err is set and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// InitTracer installs the global tracer provider. Without tracing config a
// noop provider is used and the returned shutdown does nothing.
func InitTracer(ctx context.Context, cfg *config.TracingConfig) (func(context.Context) error, error) {
	if cfg == nil {
		otel.SetTracerProvider(noop.NewTracerProvider())
		return func(context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
	}

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	return tp.Shutdown, nil
}
