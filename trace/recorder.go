package trace

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Option is a functional option for configuring a Recorder.
type Option func(*Recorder)

// WithMetadata sets the metadata for the trace.
func WithMetadata(meta TraceMetadata) Option {
	return func(r *Recorder) {
		r.metadata = meta
	}
}

// WithTraceID sets a custom trace ID.
// If not set or set to an empty string, a UUID v7 is generated automatically.
func WithTraceID(id string) Option {
	return func(r *Recorder) {
		r.traceID = id
	}
}

// Recorder collects tracing data into an in-memory Trace structure.
// It implements the Handler interface and provides access to the collected Trace via Trace().
type Recorder struct {
	trace    *Trace
	mu       sync.Mutex
	metadata TraceMetadata
	traceID  string
}

// New creates a new Recorder with the given options.
func New(opts ...Option) *Recorder {
	r := &Recorder{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// context key types
type handlerKey struct{}
type currentSpanKey struct{}

// WithHandler stores the Handler in the context.
func WithHandler(ctx context.Context, h Handler) context.Context {
	return context.WithValue(ctx, handlerKey{}, h)
}

// HandlerFrom retrieves the Handler from the context. Returns nil if not set.
func HandlerFrom(ctx context.Context) Handler {
	h, _ := ctx.Value(handlerKey{}).(Handler)
	return h
}

// withCurrentSpan stores the current span in the context.
func withCurrentSpan(ctx context.Context, span *Span) context.Context {
	return context.WithValue(ctx, currentSpanKey{}, span)
}

// currentSpanFrom retrieves the current span from the context. Returns nil if not set.
func currentSpanFrom(ctx context.Context) *Span {
	s, _ := ctx.Value(currentSpanKey{}).(*Span)
	return s
}

// newSpanID generates a unique span ID.
func newSpanID() string {
	return uuid.New().String()
}

// ensureTrace lazily creates the trace. Caller must hold r.mu.
func (r *Recorder) ensureTrace(now time.Time) *Trace {
	if r.trace == nil {
		traceID := r.traceID
		if traceID == "" {
			traceID = uuid.Must(uuid.NewV7()).String()
		}
		r.trace = &Trace{
			TraceID:   traceID,
			Metadata:  r.metadata,
			StartedAt: now,
		}
	}
	return r.trace
}

// startSpan attaches a new span to the current span, or to the trace root
// when there is none. Caller must hold r.mu.
func (r *Recorder) startSpan(ctx context.Context, kind SpanKind, name string) (context.Context, *Span) {
	now := time.Now()
	trace := r.ensureTrace(now)

	span := &Span{
		SpanID:    newSpanID(),
		Kind:      kind,
		Name:      name,
		StartedAt: now,
		Status:    SpanStatusOK,
	}

	if parent := currentSpanFrom(ctx); parent != nil {
		span.ParentID = parent.SpanID
		parent.Children = append(parent.Children, span)
	} else {
		trace.Spans = append(trace.Spans, span)
	}

	return withCurrentSpan(ctx, span), span
}

// endSpan closes span. Caller must hold r.mu.
func (r *Recorder) endSpan(span *Span, err error) {
	now := time.Now()
	span.EndedAt = now
	span.Duration = now.Sub(span.StartedAt)

	if err != nil {
		span.Status = SpanStatusError
		span.Error = err.Error()
	}

	if r.trace != nil {
		r.trace.EndedAt = now
	}
}

// StartPipeline starts a pipeline span.
func (r *Recorder) StartPipeline(ctx context.Context) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, _ = r.startSpan(ctx, SpanKindPipeline, "pipeline")
	return ctx
}

// EndPipeline ends the pipeline span.
func (r *Recorder) EndPipeline(ctx context.Context, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := currentSpanFrom(ctx)
	if span == nil || span.Kind != SpanKindPipeline {
		return
	}
	r.endSpan(span, err)
}

// StartExchange starts an exchange span as a child of the current span.
func (r *Recorder) StartExchange(ctx context.Context, operation string) context.Context {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx, _ = r.startSpan(ctx, SpanKindExchange, operation)
	return ctx
}

// EndExchange ends the exchange span with the given data.
func (r *Recorder) EndExchange(ctx context.Context, data *ExchangeData, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	span := currentSpanFrom(ctx)
	if span == nil || span.Kind != SpanKindExchange {
		return
	}

	if data != nil {
		copied := *data
		span.Exchange = &copied
	}
	r.endSpan(span, err)
}

// Trace returns the current trace data. Returns nil if nothing was recorded.
func (r *Recorder) Trace() *Trace {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trace
}
