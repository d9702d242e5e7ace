package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Environment names accepted by WithEnvironment.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Config holds logger settings loaded with pkg/config.
type Config struct {
	Env     string `env:"APP_ENV" envDefault:"development"`
	Service string `env:"SERVICE_NAME" envDefault:"entityvalidate"`
	Level   string `env:"LOG_LEVEL"`
}

// FromConfig applies environment defaults and an optional level override.
// Unknown level names are ignored.
func FromConfig(cfg Config) Option {
	return func(c *config) {
		WithEnvironment(cfg.Env, cfg.Service)(c)
		if cfg.Level == "" {
			return
		}
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.Level))); err == nil {
			c.level = level
		}
	}
}

// Format is the output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// Option configures logger creation.
type Option func(*config)

func WithLevel(l slog.Level) Option {
	return func(c *config) { c.level = l }
}

// WithFormat sets the output format. It panics on anything but FormatJSON or FormatText.
func WithFormat(f Format) Option {
	return func(c *config) {
		switch f {
		case FormatJSON, FormatText:
			c.format = f
		default:
			panic(fmt.Errorf("invalid log format %q: must be %q or %q", f, FormatJSON, FormatText))
		}
	}
}

// WithOutput sets the destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(c *config) {
		if w != nil {
			c.output = w
		}
	}
}

// WithAttr adds static attributes to every record.
func WithAttr(attrs ...slog.Attr) Option {
	return func(c *config) {
		c.attrs = append(c.attrs, attrs...)
	}
}

// WithContextExtractors registers callbacks that copy values from the
// context into every record, after the validation run attributes.
func WithContextExtractors(extractors ...ContextExtractor) Option {
	return func(c *config) {
		for _, ex := range extractors {
			if ex != nil {
				c.extractors = append(c.extractors, ex)
			}
		}
	}
}

// WithEnvironment applies the defaults of env for service: debug text for
// development (the fallback for unknown names), info JSON for staging and
// production. An empty service leaves the configuration untouched.
func WithEnvironment(env, service string) Option {
	return func(c *config) {
		if service == "" {
			return
		}
		switch env {
		case EnvProduction, "prod":
			c.apply(EnvProduction, slog.LevelInfo, FormatJSON)
		case EnvStaging, "stage":
			c.apply(EnvStaging, slog.LevelInfo, FormatJSON)
		default:
			c.apply(EnvDevelopment, slog.LevelDebug, FormatText)
		}
		c.attrs = append(c.attrs, slog.String("service", service))
	}
}

type config struct {
	level      slog.Level
	format     Format
	output     io.Writer
	attrs      []slog.Attr
	extractors []ContextExtractor
}

func (c *config) apply(env string, level slog.Level, format Format) {
	c.level = level
	c.format = format
	c.attrs = append(c.attrs, slog.String("env", env))
}

// New creates a logger. Defaults are JSON at info level on stdout.
// Records logged with a context carrying a Run get its attributes.
func New(opts ...Option) *slog.Logger {
	cfg := &config{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stdout,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level}
	var handler slog.Handler
	if cfg.format == FormatText {
		handler = slog.NewTextHandler(cfg.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(cfg.output, handlerOpts)
	}
	if len(cfg.attrs) > 0 {
		handler = handler.WithAttrs(cfg.attrs)
	}

	return slog.New(NewContextHandler(handler, cfg.extractors...))
}
