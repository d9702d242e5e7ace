package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Run identifies one validation run.
type Run struct {
	ID         uuid.UUID
	EntityType string
	Bundle     string
}

type runKey struct{}

// WithRun returns a context carrying run. Loggers built by New or wrapped
// by Decorate add its attributes to records logged with that context.
func WithRun(ctx context.Context, run Run) context.Context {
	return context.WithValue(ctx, runKey{}, run)
}

// RunFromContext returns the run stored by WithRun.
func RunFromContext(ctx context.Context) (Run, bool) {
	run, ok := ctx.Value(runKey{}).(Run)
	return run, ok
}

// ContextExtractor extracts a slog attribute from context.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextHandler adds the run attributes and extracted values of the
// record's context before delegating to the wrapped handler.
type ContextHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

// NewContextHandler wraps next. Nil extractors are dropped.
func NewContextHandler(next slog.Handler, extractors ...ContextExtractor) *ContextHandler {
	clean := make([]ContextExtractor, 0, len(extractors))
	for _, ex := range extractors {
		if ex != nil {
			clean = append(clean, ex)
		}
	}
	return &ContextHandler{next: next, extractors: clean}
}

// Decorate returns l with a ContextHandler. Loggers that already have one
// are returned as is.
func Decorate(l *slog.Logger) *slog.Logger {
	if _, ok := l.Handler().(*ContextHandler); ok {
		return l
	}
	return slog.New(NewContextHandler(l.Handler()))
}

func (h *ContextHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ContextHandler) Handle(ctx context.Context, rec slog.Record) error {
	if run, ok := RunFromContext(ctx); ok {
		if run.ID != uuid.Nil {
			rec.AddAttrs(RunID(run.ID))
		}
		if run.EntityType != "" {
			rec.AddAttrs(EntityType(run.EntityType))
		}
		if run.Bundle != "" {
			rec.AddAttrs(Bundle(run.Bundle))
		}
	}
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *ContextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ContextHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *ContextHandler) WithGroup(name string) slog.Handler {
	return &ContextHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
