// Package otel provides an OpenTelemetry trace handler for appforge.
//
// It bridges orchestrator trace events to OpenTelemetry spans, allowing
// integration with any OTel-compatible backend (Jaeger, Zipkin, OTLP, etc.).
//
//	ctx = trace.WithHandler(ctx, otel.New(otel.WithTracerProvider(tp)))
//	intent, err := orchestrator.ExtractIntent(ctx, prompt)
package otel

import (
	"context"

	"github.com/m-mizutani/appforge/trace"
	otelAPI "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	otelTrace "go.opentelemetry.io/otel/trace"
)

const (
	tracerName = "github.com/m-mizutani/appforge"
)

// Option is a functional option for configuring the OTel handler.
type Option func(*handler)

// WithTracerProvider sets an explicit TracerProvider.
// If not set, the global TracerProvider is used.
func WithTracerProvider(tp otelTrace.TracerProvider) Option {
	return func(h *handler) {
		h.tracerProvider = tp
	}
}

// handler implements trace.Handler by bridging events to OpenTelemetry spans.
type handler struct {
	tracerProvider otelTrace.TracerProvider
	tracer         otelTrace.Tracer
}

// New creates a new OTel trace handler.
// If no TracerProvider is specified via options, the global TracerProvider is used.
func New(opts ...Option) trace.Handler {
	h := &handler{}
	for _, opt := range opts {
		opt(h)
	}

	if h.tracerProvider == nil {
		h.tracerProvider = otelAPI.GetTracerProvider()
	}
	h.tracer = h.tracerProvider.Tracer(tracerName)

	return h
}

func (h *handler) StartPipeline(ctx context.Context) context.Context {
	ctx, _ = h.tracer.Start(ctx, "pipeline",
		otelTrace.WithSpanKind(otelTrace.SpanKindInternal),
	)
	return ctx
}

func (h *handler) EndPipeline(ctx context.Context, err error) {
	endSpan(otelTrace.SpanFromContext(ctx), err)
}

func (h *handler) StartExchange(ctx context.Context, operation string) context.Context {
	ctx, _ = h.tracer.Start(ctx, "exchange:"+operation,
		otelTrace.WithSpanKind(otelTrace.SpanKindClient),
		otelTrace.WithAttributes(operationAttr(operation)),
	)
	return ctx
}

func (h *handler) EndExchange(ctx context.Context, data *trace.ExchangeData, err error) {
	span := otelTrace.SpanFromContext(ctx)
	if data != nil {
		span.SetAttributes(
			sessionIDAttr(data.SessionID),
			llmProviderAttr(data.Provider),
			llmModelAttr(data.Model),
			promptSizeAttr(len(data.UserMessage)),
			responseSizeAttr(len(data.Response)),
			fallbackAttr(data.Fallback),
		)
	}
	endSpan(span, err)
}

func endSpan(span otelTrace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
