// Package logger builds the process-wide slog.Logger: JSON output for
// production log aggregation, text for local development.
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format selects the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Config is populated from the environment at startup.
type Config struct {
	Level  slog.Level `env:"LOG_LEVEL" envDefault:"info"`
	Format Format     `env:"LOG_FORMAT" envDefault:"json"`
}

// Option configures logger creation.
type Option func(*options)

type options struct {
	output io.Writer
	attrs  []slog.Attr
}

// WithOutput sets a custom output destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.output = w
		}
	}
}

// WithAttr attaches static attributes to every record, e.g. the service name.
func WithAttr(attrs ...slog.Attr) Option {
	return func(o *options) {
		o.attrs = append(o.attrs, attrs...)
	}
}

// New builds a logger from config. An invalid format panics: logging
// misconfiguration should stop startup, not surface mid-request.
func New(cfg Config, opts ...Option) *slog.Logger {
	o := options{output: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case FormatJSON:
		handler = slog.NewJSONHandler(o.output, handlerOpts)
	case FormatText:
		handler = slog.NewTextHandler(o.output, handlerOpts)
	default:
		panic(fmt.Errorf("logger: invalid format %q, must be %q or %q", cfg.Format, FormatJSON, FormatText))
	}

	if len(o.attrs) > 0 {
		handler = handler.WithAttrs(o.attrs)
	}

	return slog.New(handler)
}
