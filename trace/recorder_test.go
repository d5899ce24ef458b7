package trace_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/m-mizutani/appforge/trace"
	"github.com/m-mizutani/gt"
)

func TestRecorderContextPropagation(t *testing.T) {
	rec := trace.New()
	ctx := context.Background()

	gt.Value(t, trace.HandlerFrom(ctx)).Nil()

	ctx = trace.WithHandler(ctx, rec)
	gt.Value(t, trace.HandlerFrom(ctx)).NotNil()
	gt.Equal[trace.Handler](t, trace.HandlerFrom(ctx), rec)
}

func TestRecorderExchangeWithoutPipeline(t *testing.T) {
	rec := trace.New(trace.WithTraceID("trace-1"), trace.WithMetadata(trace.TraceMetadata{
		Provider: "openai",
		Model:    "gpt-4o",
	}))
	ctx := context.Background()

	gt.Value(t, rec.Trace()).Nil()

	exCtx := rec.StartExchange(ctx, "extract-intent")
	span := trace.CurrentSpanFrom(exCtx)
	gt.Value(t, span).NotNil()
	gt.Equal(t, span.Kind, trace.SpanKindExchange)
	gt.Equal(t, span.Name, "extract-intent")

	rec.EndExchange(exCtx, &trace.ExchangeData{
		Operation: "extract-intent",
		SessionID: "extract-intent-abc",
		Response:  "not json",
		Fallback:  true,
	}, nil)

	tr := rec.Trace()
	gt.Value(t, tr).NotNil()
	gt.Equal(t, tr.TraceID, "trace-1")
	gt.Equal(t, tr.Metadata.Model, "gpt-4o")
	gt.Equal(t, len(tr.Spans), 1)
	gt.Equal(t, tr.Spans[0], span)
	gt.Equal(t, span.Status, trace.SpanStatusOK)
	gt.Value(t, span.Exchange).NotNil()
	gt.Equal(t, span.Exchange.SessionID, "extract-intent-abc")
	gt.True(t, span.Exchange.Fallback)
}

func TestRecorderPipelineNesting(t *testing.T) {
	rec := trace.New()
	ctx := context.Background()

	pipelineCtx := rec.StartPipeline(ctx)
	pipelineSpan := trace.CurrentSpanFrom(pipelineCtx)
	gt.Equal(t, pipelineSpan.Kind, trace.SpanKindPipeline)

	for _, op := range []string{"extract-intent", "generate-plan"} {
		exCtx := rec.StartExchange(pipelineCtx, op)
		rec.EndExchange(exCtx, &trace.ExchangeData{Operation: op}, nil)
	}
	rec.EndPipeline(pipelineCtx, nil)

	tr := rec.Trace()
	gt.Equal(t, len(tr.Spans), 1)
	gt.Equal(t, len(pipelineSpan.Children), 2)
	gt.Equal(t, pipelineSpan.Children[0].Name, "extract-intent")
	gt.Equal(t, pipelineSpan.Children[1].ParentID, pipelineSpan.SpanID)
	gt.False(t, pipelineSpan.EndedAt.IsZero())
}

func TestRecorderExchangeError(t *testing.T) {
	rec := trace.New()
	ctx := context.Background()

	exCtx := rec.StartExchange(ctx, "generate-code")
	rec.EndExchange(exCtx, nil, errors.New("connection refused"))

	span := trace.CurrentSpanFrom(exCtx)
	gt.Equal(t, span.Status, trace.SpanStatusError)
	gt.Equal(t, span.Error, "connection refused")
	gt.Value(t, span.Exchange).Nil()
}

func TestRecorderEndMismatchedKind(t *testing.T) {
	rec := trace.New()
	ctx := context.Background()

	exCtx := rec.StartExchange(ctx, "generate-tests")
	// Ending a pipeline on an exchange context is ignored
	rec.EndPipeline(exCtx, errors.New("ignored"))

	span := trace.CurrentSpanFrom(exCtx)
	gt.Equal(t, span.Status, trace.SpanStatusOK)
	gt.True(t, span.EndedAt.IsZero())
}

func TestRecorderGeneratesTraceID(t *testing.T) {
	rec := trace.New()
	ctx := context.Background()

	exCtx := rec.StartExchange(ctx, "extract-intent")
	rec.EndExchange(exCtx, nil, nil)

	gt.NotEqual(t, rec.Trace().TraceID, "")
}

func TestRecorderConcurrentExchanges(t *testing.T) {
	rec := trace.New()
	ctx := context.Background()
	pipelineCtx := rec.StartPipeline(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			exCtx := rec.StartExchange(pipelineCtx, "extract-intent")
			rec.EndExchange(exCtx, &trace.ExchangeData{Operation: "extract-intent"}, nil)
		}()
	}
	wg.Wait()
	rec.EndPipeline(pipelineCtx, nil)

	gt.Equal(t, len(trace.CurrentSpanFrom(pipelineCtx).Children), 10)
}
