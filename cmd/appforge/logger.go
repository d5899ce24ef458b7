package main

import (
	"errors"
	"io"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var errInvalidLogOption = errors.New("invalid log option")

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lv slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lv = slog.LevelDebug
	case "info", "":
		lv = slog.LevelInfo
	case "warn", "warning":
		lv = slog.LevelWarn
	case "error":
		lv = slog.LevelError
	default:
		return nil, goerr.Wrap(errInvalidLogOption, "unknown log level", goerr.V("level", level))
	}

	opts := &slog.HandlerOptions{Level: lv}
	switch strings.ToLower(format) {
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, goerr.Wrap(errInvalidLogOption, "unknown log format", goerr.V("format", format))
	}
}
