// Package logger provides a trace.Handler that writes orchestrator trace
// events to slog.
package logger

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/appforge/trace"
)

// Event represents a trace event type that can be selectively enabled.
type Event int

const (
	// Pipeline enables logging of pipeline start/end.
	Pipeline Event = iota
	// ExchangeRequest enables logging of the prompts sent to the model.
	ExchangeRequest
	// ExchangeResponse enables logging of the raw model response.
	ExchangeResponse

	eventCount // sentinel for iteration
)

type config struct {
	logger *slog.Logger
	events map[Event]bool
}

// Option configures the logger handler.
type Option func(*config)

// WithLogger sets a custom slog.Logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithEvents enables only the specified event types.
// When not specified, all events are enabled.
func WithEvents(events ...Event) Option {
	return func(c *config) {
		c.events = make(map[Event]bool, len(events))
		for _, e := range events {
			c.events[e] = true
		}
	}
}

type handler struct {
	cfg config
}

// New creates a new trace.Handler that logs trace events via slog.
func New(opts ...Option) trace.Handler {
	cfg := config{}
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.events == nil {
		cfg.events = make(map[Event]bool, eventCount)
		for i := Event(0); i < eventCount; i++ {
			cfg.events[i] = true
		}
	}

	return &handler{cfg: cfg}
}

func (h *handler) logger() *slog.Logger {
	if h.cfg.logger != nil {
		return h.cfg.logger
	}
	return slog.Default()
}

func (h *handler) enabled(e Event) bool {
	return h.cfg.events[e]
}

type startTimeKey struct{}

func withStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func startTimeFrom(ctx context.Context) time.Time {
	t, _ := ctx.Value(startTimeKey{}).(time.Time)
	return t
}

type operationKey struct{}

func (h *handler) StartPipeline(ctx context.Context) context.Context {
	if h.enabled(Pipeline) {
		h.logger().InfoContext(ctx, "pipeline started")
	}
	return withStartTime(ctx, time.Now())
}

func (h *handler) EndPipeline(ctx context.Context, err error) {
	if !h.enabled(Pipeline) {
		return
	}

	attrs := []any{
		slog.Duration("duration", time.Since(startTimeFrom(ctx))),
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	h.logger().InfoContext(ctx, "pipeline ended", attrs...)
}

func (h *handler) StartExchange(ctx context.Context, operation string) context.Context {
	ctx = withStartTime(ctx, time.Now())
	return context.WithValue(ctx, operationKey{}, operation)
}

// EndExchange logs one model exchange. ExchangeRequest controls the prompts,
// ExchangeResponse controls the raw response. If either is enabled, the
// operation, session ID and fallback flag are always included.
func (h *handler) EndExchange(ctx context.Context, data *trace.ExchangeData, err error) {
	reqEnabled := h.enabled(ExchangeRequest)
	respEnabled := h.enabled(ExchangeResponse)
	if !reqEnabled && !respEnabled {
		return
	}

	operation, _ := ctx.Value(operationKey{}).(string)
	attrs := []any{
		slog.String("operation", operation),
		slog.Duration("duration", time.Since(startTimeFrom(ctx))),
	}

	if data != nil {
		attrs = append(attrs,
			slog.String("session_id", data.SessionID),
			slog.String("model", data.Model),
			slog.Bool("fallback", data.Fallback),
		)
		if reqEnabled {
			attrs = append(attrs,
				slog.String("system_prompt", data.SystemPrompt),
				slog.String("user_message", data.UserMessage),
			)
		}
		if respEnabled {
			attrs = append(attrs, slog.String("response", data.Response))
		}
	}

	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	h.logger().InfoContext(ctx, "model exchange", attrs...)
}
