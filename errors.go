package appforge

import (
	"errors"

	"github.com/m-mizutani/appforge/llm"
)

var (
	// ErrMissingAPIKey is returned by New when Config.APIKey is empty.
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrUnsupportedProvider is returned by New for a provider without an adapter.
	ErrUnsupportedProvider = llm.ErrUnsupportedProvider

	// ErrEmptyResponse is returned when the model answered with no text.
	ErrEmptyResponse = llm.ErrEmptyResponse

	// ErrMalformedResponse means no JSON document could be decoded from the
	// model response. Only surfaced with WithStrictParsing.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrSchemaViolation means the decoded document does not match the
	// operation's JSON Schema. Only surfaced with WithStrictParsing.
	ErrSchemaViolation = errors.New("model response violates schema")

	// ErrInvalidParameter means an operation input or a Config field cannot be
	// used. No model call is made.
	ErrInvalidParameter = errors.New("invalid parameter")
)
