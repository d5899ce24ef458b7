package main

import (
	"context"
	"io"
	"net/http"

	"github.com/m-mizutani/appforge"
)

// Run executes the CLI with orchestrators built by appforge.New plus extra.
func Run(ctx context.Context, args []string, stdout, stderr io.Writer, extra ...appforge.Option) int {
	factory := func(ctx context.Context, cfg appforge.Config, options ...appforge.Option) (orchestrator, error) {
		return newOrchestrator(ctx, cfg, append(options, extra...)...)
	}
	return run(ctx, args, stdout, stderr, factory)
}

// NewServer creates a server backed by an orchestrator with the given options.
func NewServer(o *appforge.Orchestrator) *server {
	return newServer(o)
}

// Handler returns the server's HTTP handler for testing.
func (s *server) Handler() http.Handler {
	return s.handler()
}

var NewLogger = newLogger
