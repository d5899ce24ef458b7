package logger_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/m-mizutani/appforge/trace"
	"github.com/m-mizutani/appforge/trace/logger"
	"github.com/m-mizutani/gt"
)

type logEntry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// testHandler is a slog.Handler that captures log records for assertions.
type testHandler struct {
	mu      sync.Mutex
	entries []logEntry
}

func (h *testHandler) Enabled(_ context.Context, _ slog.Level) bool { return true }
func (h *testHandler) WithAttrs(_ []slog.Attr) slog.Handler         { return h }
func (h *testHandler) WithGroup(_ string) slog.Handler              { return h }
func (h *testHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	attrs := make(map[string]any)
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	h.entries = append(h.entries, logEntry{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   attrs,
	})
	return nil
}

func (h *testHandler) getEntries() []logEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]logEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

func newTestLogger() (*slog.Logger, *testHandler) {
	th := &testHandler{}
	return slog.New(th), th
}

func sampleExchange() *trace.ExchangeData {
	return &trace.ExchangeData{
		Operation:    "generate-plan",
		SessionID:    "generate-plan-req1",
		Model:        "gpt-4o",
		SystemPrompt: "system",
		UserMessage:  "user",
		Response:     `{"steps":[]}`,
	}
}

func TestPipelineLogging(t *testing.T) {
	slogger, th := newTestLogger()
	h := logger.New(logger.WithLogger(slogger))
	ctx := context.Background()

	pipelineCtx := h.StartPipeline(ctx)
	h.EndPipeline(pipelineCtx, errors.New("boom"))

	entries := th.getEntries()
	gt.Equal(t, len(entries), 2)
	gt.Equal(t, entries[0].Message, "pipeline started")
	gt.Equal(t, entries[1].Message, "pipeline ended")
	gt.Value(t, entries[1].Attrs["duration"]).NotNil()
	gt.Equal(t, entries[1].Attrs["error"], any("boom"))
}

func TestExchangeLogging(t *testing.T) {
	slogger, th := newTestLogger()
	h := logger.New(logger.WithLogger(slogger))
	ctx := context.Background()

	exCtx := h.StartExchange(ctx, "generate-plan")
	h.EndExchange(exCtx, sampleExchange(), nil)

	entries := th.getEntries()
	gt.Equal(t, len(entries), 1)
	gt.Equal(t, entries[0].Message, "model exchange")
	gt.Equal(t, entries[0].Attrs["operation"], any("generate-plan"))
	gt.Equal(t, entries[0].Attrs["session_id"], any("generate-plan-req1"))
	gt.Equal(t, entries[0].Attrs["user_message"], any("user"))
	gt.Equal(t, entries[0].Attrs["response"], any(`{"steps":[]}`))
	gt.Equal(t, entries[0].Attrs["fallback"], any(false))
}

func TestSelectiveEvents(t *testing.T) {
	t.Run("response only", func(t *testing.T) {
		slogger, th := newTestLogger()
		h := logger.New(logger.WithLogger(slogger), logger.WithEvents(logger.ExchangeResponse))
		ctx := context.Background()

		pipelineCtx := h.StartPipeline(ctx)
		exCtx := h.StartExchange(pipelineCtx, "generate-plan")
		h.EndExchange(exCtx, sampleExchange(), nil)
		h.EndPipeline(pipelineCtx, nil)

		entries := th.getEntries()
		gt.Equal(t, len(entries), 1)
		_, hasPrompt := entries[0].Attrs["user_message"]
		gt.False(t, hasPrompt)
		gt.Equal(t, entries[0].Attrs["response"], any(`{"steps":[]}`))
	})

	t.Run("pipeline only", func(t *testing.T) {
		slogger, th := newTestLogger()
		h := logger.New(logger.WithLogger(slogger), logger.WithEvents(logger.Pipeline))
		ctx := context.Background()

		exCtx := h.StartExchange(ctx, "generate-plan")
		h.EndExchange(exCtx, sampleExchange(), nil)

		gt.Equal(t, len(th.getEntries()), 0)
	})
}
