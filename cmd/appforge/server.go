package main

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/m-mizutani/appforge/trace"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

const defaultAddr = ":18900"

type serverOption func(*server)

func withAddr(addr string) serverOption {
	return func(s *server) {
		s.addr = addr
	}
}

func withLogger(logger *slog.Logger) serverOption {
	return func(s *server) {
		s.logger = logger
	}
}

func withTraceHandler(h trace.Handler) serverOption {
	return func(s *server) {
		s.traceHandler = h
	}
}

type server struct {
	addr         string
	orchestrator orchestrator
	logger       *slog.Logger
	traceHandler trace.Handler
	mux          *http.ServeMux
}

func newServer(o orchestrator, opts ...serverOption) *server {
	s := &server{
		addr:         defaultAddr,
		orchestrator: o,
		logger:       slog.New(slog.DiscardHandler),
		mux:          http.NewServeMux(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.setupRoutes()
	return s
}

func (s *server) setupRoutes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)
	s.mux.HandleFunc("POST /api/intent", s.handleIntent)
	s.mux.HandleFunc("POST /api/plan", s.handlePlan)
	s.mux.HandleFunc("POST /api/code", s.handleCode)
	s.mux.HandleFunc("POST /api/tests", s.handleTests)
	s.mux.HandleFunc("POST /api/pipeline", s.handlePipeline)
}

func (s *server) handler() http.Handler {
	return s.mux
}

func (s *server) start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return goerr.Wrap(err, "failed to listen", goerr.V("addr", s.addr))
	}

	addr := listener.Addr().String()
	s.logger.Info("starting appforge server", slog.String("addr", addr))

	srv := &http.Server{
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			if s.traceHandler != nil {
				return trace.WithHandler(context.Background(), s.traceHandler)
			}
			return context.Background()
		},
	}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		return goerr.Wrap(err, "server error")
	}

	return nil
}

func serveCommand(cfg *globalConfig, stderr io.Writer, factory orchestratorFactory) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start HTTP server exposing the generation operations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "addr",
				Value:   defaultAddr,
				Sources: cli.EnvVars("APPFORGE_ADDR"),
				Usage:   "Server listen address",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			ctx, o, log, err := cfg.setup(ctx, stderr, factory)
			if err != nil {
				return err
			}

			opts := []serverOption{
				withAddr(cmd.String("addr")),
				withLogger(log),
			}
			if h := trace.HandlerFrom(ctx); h != nil {
				opts = append(opts, withTraceHandler(h))
			}

			return newServer(o, opts...).start(ctx)
		},
	}
}
