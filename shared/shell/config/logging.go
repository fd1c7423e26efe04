package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the service logger from the log settings.
func NewLogger(cfg LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	handlerOptions := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "json":
		return slog.New(slog.NewJSONHandler(w, handlerOptions)), nil
	case "text":
		return slog.New(slog.NewTextHandler(w, handlerOptions)), nil
	default:
		return nil, fmt.Errorf("unsupported log format %q", cfg.Format)
	}
}

func parseLevel(level string) (slog.Level, error) {
	var parsed slog.Level

	if err := parsed.UnmarshalText([]byte(level)); err != nil {
		return 0, fmt.Errorf("unsupported log level %q: %w", level, err)
	}

	return parsed, nil
}
