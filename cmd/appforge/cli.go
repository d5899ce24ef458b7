package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/m-mizutani/appforge"
	"github.com/m-mizutani/appforge/trace"
	"github.com/m-mizutani/appforge/trace/logger"
	traceOtel "github.com/m-mizutani/appforge/trace/otel"
	"github.com/m-mizutani/goerr/v2"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
)

const usageText = `appforge <command> <json-input> [flags]

commands:
  extract_intent  {"prompt": "..."}
  generate_plan   {"intent": {...}}
  generate_code   {"plan": {...}, "context": "..."}
  generate_tests  {"code": {...}}
  run             {"prompt": "...", "skipTests": false}
  serve           start HTTP server
  mcp             start MCP server on stdio`

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	errMissingInput = errors.New("JSON input is required")
	errInvalidInput = errors.New("invalid JSON input")
)

// orchestrator is the part of *appforge.Orchestrator used by the commands.
type orchestrator interface {
	ExtractIntent(ctx context.Context, prompt string) (*appforge.Intent, error)
	GeneratePlan(ctx context.Context, intent any) (*appforge.Plan, error)
	GenerateCode(ctx context.Context, plan any, codeContext string) (*appforge.CodeBundle, error)
	GenerateTests(ctx context.Context, code any) (*appforge.TestBundle, error)
	RunPipeline(ctx context.Context, prompt string, options ...appforge.PipelineOption) (*appforge.PipelineResult, error)
}

type orchestratorFactory func(ctx context.Context, cfg appforge.Config, options ...appforge.Option) (orchestrator, error)

func newOrchestrator(ctx context.Context, cfg appforge.Config, options ...appforge.Option) (orchestrator, error) {
	o, err := appforge.New(ctx, cfg, options...)
	if err != nil {
		return nil, err
	}
	return o, nil
}

type extractIntentInput struct {
	Prompt *string `json:"prompt"`
}

// Documents passed on to the orchestrator stay raw so that their keys reach
// the prompt unchanged.
type generatePlanInput struct {
	Intent json.RawMessage `json:"intent"`
}

type generateCodeInput struct {
	Plan    json.RawMessage `json:"plan"`
	Context string          `json:"context"`
}

type generateTestsInput struct {
	Code json.RawMessage `json:"code"`
}

type runInput struct {
	Prompt    *string `json:"prompt"`
	SkipTests bool    `json:"skipTests"`
}

var modelCommands = []string{"extract_intent", "generate_plan", "generate_code", "generate_tests", "run"}

var serverCommands = []string{"serve", "mcp"}

var helpArgs = []string{"help", "-h", "--help", "-v", "--version"}

// run executes the CLI and returns the process exit code. The command name is
// checked before any flag parsing so that a bad invocation never reaches the
// model.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, factory orchestratorFactory) int {
	if len(args) < 2 {
		fmt.Fprintf(stderr, "Usage: %s\n", usageText)
		return 1
	}

	name := args[1]
	if !lo.Contains(modelCommands, name) && !lo.Contains(serverCommands, name) && !lo.Contains(helpArgs, name) {
		fmt.Fprintf(stderr, "Error: unknown command %q\nUsage: %s\n", name, usageText)
		return 1
	}

	app := newApp(stdout, stderr, factory)
	if err := app.Run(ctx, args); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

type globalConfig struct {
	apiKey    string
	provider  string
	model     string
	baseURL   string
	strict    bool
	logLevel  string
	logFormat string
	traceLog  bool
	traceOtel bool
}

func globalFlags(cfg *globalConfig) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "api-key",
			Usage:       "Model provider API key",
			Sources:     cli.EnvVars("EMERGENT_LLM_KEY"),
			Destination: &cfg.apiKey,
		},
		&cli.StringFlag{
			Name:        "provider",
			Usage:       "Model provider (openai, anthropic, gemini)",
			Value:       "openai",
			Sources:     cli.EnvVars("AI_PROVIDER"),
			Destination: &cfg.provider,
		},
		&cli.StringFlag{
			Name:        "model",
			Usage:       "Model name (default depends on provider)",
			Sources:     cli.EnvVars("AI_MODEL"),
			Destination: &cfg.model,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "OpenAI-compatible API endpoint (openai provider only)",
			Sources:     cli.EnvVars("AI_BASE_URL"),
			Destination: &cfg.baseURL,
		},
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "Fail on undecodable or schema-violating model responses",
			Sources:     cli.EnvVars("APPFORGE_STRICT"),
			Destination: &cfg.strict,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("APPFORGE_LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (text, json)",
			Value:       "text",
			Sources:     cli.EnvVars("APPFORGE_LOG_FORMAT"),
			Destination: &cfg.logFormat,
		},
		&cli.BoolFlag{
			Name:        "trace-log",
			Usage:       "Log every model exchange",
			Sources:     cli.EnvVars("APPFORGE_TRACE_LOG"),
			Destination: &cfg.traceLog,
		},
		&cli.BoolFlag{
			Name:        "trace-otel",
			Usage:       "Emit OpenTelemetry spans to the global tracer provider",
			Sources:     cli.EnvVars("APPFORGE_TRACE_OTEL"),
			Destination: &cfg.traceOtel,
		},
	}
}

// setup builds the logger, trace handler and orchestrator from global flags.
func (g *globalConfig) setup(ctx context.Context, stderr io.Writer, factory orchestratorFactory) (context.Context, orchestrator, *slog.Logger, error) {
	log, err := newLogger(stderr, g.logLevel, g.logFormat)
	if err != nil {
		return nil, nil, nil, err
	}

	var handlers []trace.Handler
	if g.traceLog {
		handlers = append(handlers, logger.New(logger.WithLogger(log)))
	}
	if g.traceOtel {
		handlers = append(handlers, traceOtel.New())
	}
	switch len(handlers) {
	case 0:
	case 1:
		ctx = trace.WithHandler(ctx, handlers[0])
	default:
		ctx = trace.WithHandler(ctx, trace.Multi(handlers...))
	}

	options := []appforge.Option{appforge.WithLogger(log)}
	if g.strict {
		options = append(options, appforge.WithStrictParsing())
	}

	o, err := factory(ctx, appforge.Config{
		APIKey:   g.apiKey,
		Provider: g.provider,
		Model:    g.model,
		BaseURL:  g.baseURL,
	}, options...)
	if err != nil {
		return nil, nil, nil, err
	}

	return ctx, o, log, nil
}

func newApp(stdout, stderr io.Writer, factory orchestratorFactory) *cli.Command {
	var cfg globalConfig

	return &cli.Command{
		Name:      "appforge",
		Usage:     "Turn a natural-language request into intent, plan, code and tests",
		UsageText: usageText,
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags:     globalFlags(&cfg),
		Commands: []*cli.Command{
			modelCommand("extract_intent", "Extract intent from a prompt", &cfg, stdout, stderr, factory,
				func(ctx context.Context, o orchestrator, raw []byte) (any, error) {
					var input extractIntentInput
					if err := decodeInput(raw, &input); err != nil {
						return nil, err
					}
					if input.Prompt == nil {
						return nil, goerr.Wrap(errInvalidInput, "prompt is required")
					}
					return o.ExtractIntent(ctx, *input.Prompt)
				}),
			modelCommand("generate_plan", "Generate a plan from an intent", &cfg, stdout, stderr, factory,
				func(ctx context.Context, o orchestrator, raw []byte) (any, error) {
					var input generatePlanInput
					if err := decodeInput(raw, &input); err != nil {
						return nil, err
					}
					if isAbsent(input.Intent) {
						return nil, goerr.Wrap(errInvalidInput, "intent is required")
					}
					return o.GeneratePlan(ctx, input.Intent)
				}),
			modelCommand("generate_code", "Generate code from a plan", &cfg, stdout, stderr, factory,
				func(ctx context.Context, o orchestrator, raw []byte) (any, error) {
					var input generateCodeInput
					if err := decodeInput(raw, &input); err != nil {
						return nil, err
					}
					if isAbsent(input.Plan) {
						return nil, goerr.Wrap(errInvalidInput, "plan is required")
					}
					return o.GenerateCode(ctx, input.Plan, input.Context)
				}),
			modelCommand("generate_tests", "Generate tests for a code bundle", &cfg, stdout, stderr, factory,
				func(ctx context.Context, o orchestrator, raw []byte) (any, error) {
					var input generateTestsInput
					if err := decodeInput(raw, &input); err != nil {
						return nil, err
					}
					if isAbsent(input.Code) {
						return nil, goerr.Wrap(errInvalidInput, "code is required")
					}
					return o.GenerateTests(ctx, input.Code)
				}),
			modelCommand("run", "Run intent, plan, code and test generation in sequence", &cfg, stdout, stderr, factory,
				func(ctx context.Context, o orchestrator, raw []byte) (any, error) {
					var input runInput
					if err := decodeInput(raw, &input); err != nil {
						return nil, err
					}
					if input.Prompt == nil {
						return nil, goerr.Wrap(errInvalidInput, "prompt is required")
					}
					var options []appforge.PipelineOption
					if input.SkipTests {
						options = append(options, appforge.WithSkipTests())
					}
					return o.RunPipeline(ctx, *input.Prompt, options...)
				}),
			serveCommand(&cfg, stderr, factory),
			mcpCommand(&cfg, stderr, factory),
		},
	}
}

type modelAction func(ctx context.Context, o orchestrator, raw []byte) (any, error)

// modelCommand wraps a single-shot command: read the JSON argument, call the
// model, print one JSON line.
func modelCommand(name, usage string, cfg *globalConfig, stdout, stderr io.Writer, factory orchestratorFactory, action modelAction) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<json-input>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() < 1 {
				return goerr.Wrap(errMissingInput, "Usage: "+usageText)
			}
			raw := []byte(cmd.Args().First())
			if !json.Valid(raw) {
				return goerr.Wrap(errInvalidInput, "input is not valid JSON")
			}

			ctx, o, log, err := cfg.setup(ctx, stderr, factory)
			if err != nil {
				return err
			}

			result, err := action(ctx, o, raw)
			if err != nil {
				log.Error("command failed", slog.String("command", name), slog.Any("error", err))
				return err
			}

			return writeResult(stdout, result)
		},
	}
}

func decodeInput(raw []byte, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return goerr.Wrap(errInvalidInput, err.Error())
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

// writeResult prints v as a single JSON line.
func writeResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to encode result")
	}
	return nil
}
