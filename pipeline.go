package appforge

import (
	"context"
	"strings"

	"github.com/m-mizutani/appforge/trace"
)

// PipelineResult holds every stage output of RunPipeline. Tests is nil when
// test generation was skipped.
type PipelineResult struct {
	Intent *Intent     `json:"intent"`
	Plan   *Plan       `json:"plan"`
	Code   *CodeBundle `json:"code"`
	Tests  *TestBundle `json:"tests,omitempty"`
}

type pipelineConfig struct {
	skipTests bool
}

// PipelineOption configures RunPipeline.
type PipelineOption func(*pipelineConfig)

// WithSkipTests stops the pipeline after code generation.
func WithSkipTests() PipelineOption {
	return func(c *pipelineConfig) {
		c.skipTests = true
	}
}

// RunPipeline runs intent extraction, plan generation, code generation and
// test generation in order, each stage consuming the previous result. All
// exchanges share one request ID. The first stage error stops the pipeline.
func (x *Orchestrator) RunPipeline(ctx context.Context, prompt string, options ...PipelineOption) (_ *PipelineResult, err error) {
	var cfg pipelineConfig
	for _, opt := range options {
		opt(&cfg)
	}

	ctx, requestID := ensureRequestID(ctx)
	if h := trace.HandlerFrom(ctx); h != nil {
		ctx = h.StartPipeline(ctx)
		defer func() { h.EndPipeline(ctx, err) }()
	}

	logger := x.logger.With("appforge.request_id", requestID)
	logger.Info("pipeline started", "skip_tests", cfg.skipTests)

	intent, err := x.ExtractIntent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	plan, err := x.GeneratePlan(ctx, intent)
	if err != nil {
		return nil, err
	}

	code, err := x.GenerateCode(ctx, plan, buildCodeContext(intent))
	if err != nil {
		return nil, err
	}

	result := &PipelineResult{
		Intent: intent,
		Plan:   plan,
		Code:   code,
	}

	if !cfg.skipTests {
		tests, err := x.GenerateTests(ctx, code)
		if err != nil {
			return nil, err
		}
		result.Tests = tests
	}

	logger.Info("pipeline completed",
		"steps", len(plan.Steps),
		"files", len(code.Files),
	)
	return result, nil
}

// buildCodeContext summarizes intent as the additional context of code
// generation. Empty sections are omitted.
func buildCodeContext(intent *Intent) string {
	var lines []string
	if intent.Purpose != "" {
		lines = append(lines, "Generate code based on intent: "+intent.Purpose)
	}

	sections := []struct {
		label  string
		values []string
	}{
		{"Features", intent.Features},
		{"Tech stack", intent.TechStack},
		{"Constraints", intent.Constraints},
	}
	for _, s := range sections {
		if len(s.values) > 0 {
			lines = append(lines, s.label+": "+strings.Join(s.values, ", "))
		}
	}

	return strings.Join(lines, "\n")
}
