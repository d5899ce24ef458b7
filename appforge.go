package appforge

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/m-mizutani/appforge/trace"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// Operation names. They prefix session IDs and label logs and trace spans.
const (
	OperationExtractIntent = "extract-intent"
	OperationGeneratePlan  = "generate-plan"
	OperationGenerateCode  = "generate-code"
	OperationGenerateTests = "generate-tests"
)

// Orchestrator turns chat model responses into typed results. It holds no
// mutable state and is safe for concurrent use.
type Orchestrator struct {
	client ChatClient

	orchestratorConfig
}

type orchestratorConfig struct {
	chatClient ChatClient
	logger     *slog.Logger
	strict     bool
	provider   string
	model      string
}

// Option configures an Orchestrator.
type Option func(*orchestratorConfig)

// WithChatClient uses client instead of building a provider adapter from
// Config. The API key is still validated.
func WithChatClient(client ChatClient) Option {
	return func(c *orchestratorConfig) {
		c.chatClient = client
	}
}

// WithLogger sets the logger. Default discards all records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *orchestratorConfig) {
		c.logger = logger
	}
}

// WithStrictParsing makes undecodable responses fail with ErrMalformedResponse
// and validates decoded documents against their JSON Schema, failing with
// ErrSchemaViolation. Without it, operations silently return fallback values.
func WithStrictParsing() Option {
	return func(c *orchestratorConfig) {
		c.strict = true
	}
}

// New validates cfg and creates an Orchestrator. A missing API key or an
// unknown provider is returned as an error and no client is created.
func New(ctx context.Context, cfg Config, options ...Option) (*Orchestrator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	oc := orchestratorConfig{
		logger:   slog.New(slog.DiscardHandler),
		provider: string(cfg.provider()),
		model:    cfg.Model,
	}
	for _, opt := range options {
		opt(&oc)
	}

	client := oc.chatClient
	if client == nil {
		c, err := newChatClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		client = c
	}

	oc.logger.Debug("orchestrator created",
		"provider", oc.provider,
		"model", oc.model,
		"strict", oc.strict,
		"injected_client", oc.chatClient != nil,
	)

	return &Orchestrator{
		client:             client,
		orchestratorConfig: oc,
	}, nil
}

// operation describes one request/response exchange with the model.
type operation[T any] struct {
	name         string
	systemPrompt string
	anchorKey    string
	schema       string
	fallback     func() *T
	normalize    func(*T)
	inspect      func(*slog.Logger, *T)
}

// ExtractIntent asks the model to summarize prompt as an Intent. If the
// response holds no decodable Intent, Purpose is the first 100 characters of
// prompt and all lists are empty.
func (x *Orchestrator) ExtractIntent(ctx context.Context, prompt string) (*Intent, error) {
	userMessage, err := buildIntentPrompt(prompt)
	if err != nil {
		return nil, err
	}

	return execute(ctx, x, operation[Intent]{
		name:         OperationExtractIntent,
		systemPrompt: intentSystemPrompt,
		anchorKey:    "purpose",
		schema:       schemaIntent,
		fallback:     func() *Intent { return fallbackIntent(prompt) },
		normalize:    normalizeIntent,
	}, userMessage)
}

// GeneratePlan asks the model for an implementation plan of intent. intent is
// any JSON-encodable value, typically an *Intent or the raw JSON object a
// caller received; it is embedded into the prompt as is, without validation.
func (x *Orchestrator) GeneratePlan(ctx context.Context, intent any) (*Plan, error) {
	userMessage, err := buildPlanPrompt(intent)
	if err != nil {
		return nil, err
	}

	return execute(ctx, x, operation[Plan]{
		name:         OperationGeneratePlan,
		systemPrompt: planSystemPrompt,
		anchorKey:    "steps",
		schema:       schemaPlan,
		fallback:     fallbackPlan,
		normalize:    normalizePlan,
		inspect:      warnUnknownStepTypes,
	}, userMessage)
}

// GenerateCode asks the model for the source files implementing plan. Like
// the intent of GeneratePlan, plan may be a *Plan or a raw JSON object.
// codeContext is appended as "Additional context" only when non-empty.
func (x *Orchestrator) GenerateCode(ctx context.Context, plan any, codeContext string) (*CodeBundle, error) {
	userMessage, err := buildCodePrompt(plan, codeContext)
	if err != nil {
		return nil, err
	}

	return execute(ctx, x, operation[CodeBundle]{
		name:         OperationGenerateCode,
		systemPrompt: codeSystemPrompt,
		anchorKey:    "files",
		schema:       schemaCode,
		fallback:     fallbackCodeBundle,
		normalize:    normalizeCodeBundle,
	}, userMessage)
}

// GenerateTests asks the model for tests of code, a *CodeBundle or a raw JSON
// object. Only files[].path of code is sent to the model.
func (x *Orchestrator) GenerateTests(ctx context.Context, code any) (*TestBundle, error) {
	paths, err := codePaths(code)
	if err != nil {
		return nil, err
	}

	userMessage, err := buildTestsPrompt(paths)
	if err != nil {
		return nil, err
	}

	return execute(ctx, x, operation[TestBundle]{
		name:         OperationGenerateTests,
		systemPrompt: testsSystemPrompt,
		anchorKey:    "files",
		schema:       schemaTests,
		fallback:     fallbackTestBundle,
		normalize:    normalizeTestBundle,
	}, userMessage)
}

func warnUnknownStepTypes(logger *slog.Logger, plan *Plan) {
	if unknown := plan.unknownStepTypes(); len(unknown) > 0 {
		logger.Warn("plan has unknown step types", "types", unknown)
	}
}

func codePaths(code any) ([]string, error) {
	if bundle, ok := code.(*CodeBundle); ok && bundle != nil {
		return bundle.Paths(), nil
	}

	raw, err := json.Marshal(code)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidParameter, "code is not JSON-encodable", goerr.V("error", err.Error()))
	}
	if string(raw) == "null" {
		return nil, goerr.Wrap(ErrInvalidParameter, "code is required")
	}

	paths, err := filePaths(raw)
	if err != nil {
		return nil, goerr.Wrap(ErrInvalidParameter, err.Error())
	}
	return paths, nil
}

// execute sends one message to the model and decodes the response into T.
func execute[T any](ctx context.Context, x *Orchestrator, op operation[T], userMessage string) (_ *T, err error) {
	ctx, requestID := ensureRequestID(ctx)
	sessionID := op.name + "-" + requestID

	logger := x.logger.With(
		"appforge.request_id", requestID,
		"appforge.operation", op.name,
	)
	ctx = ctxlog.With(ctx, logger)

	exchange := &trace.ExchangeData{
		Operation:    op.name,
		SessionID:    sessionID,
		Provider:     x.provider,
		Model:        x.model,
		SystemPrompt: op.systemPrompt,
		UserMessage:  userMessage,
	}
	if h := trace.HandlerFrom(ctx); h != nil {
		ctx = h.StartExchange(ctx, op.name)
		defer func() { h.EndExchange(ctx, exchange, err) }()
	}

	logger.Debug("sending message", "session_id", sessionID, "user_message_size", len(userMessage))

	response, err := x.client.SendMessage(ctx, op.systemPrompt, userMessage, sessionID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send message",
			goerr.V("operation", op.name),
			goerr.V("session_id", sessionID),
		)
	}
	exchange.Response = response

	result, doc, err := decodeResponse[T](response, op.anchorKey)
	if err != nil {
		if x.strict {
			return nil, goerr.Wrap(err, "failed to decode model response",
				goerr.V("operation", op.name),
				goerr.V("session_id", sessionID),
			)
		}

		logger.Warn("model response is not decodable, using fallback",
			"session_id", sessionID,
			"response_size", len(response),
		)
		exchange.Fallback = true
		return op.fallback(), nil
	}

	if x.strict {
		if err := validateDocument(op.schema, doc); err != nil {
			return nil, goerr.Wrap(err, "invalid model response",
				goerr.V("operation", op.name),
				goerr.V("session_id", sessionID),
			)
		}
	}

	op.normalize(result)
	if op.inspect != nil {
		op.inspect(logger, result)
	}
	logger.Debug("model response decoded", "session_id", sessionID)
	return result, nil
}
