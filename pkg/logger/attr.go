package logger

import (
	"log/slog"
	"strconv"
)

// Group creates a slog group attribute from the provided attributes.
func Group(name string, attrs ...slog.Attr) slog.Attr {
	return slog.Attr{Key: name, Value: slog.GroupValue(attrs...)}
}

// Errors groups multiple non-nil errors under the key "errors".
// If all errors are nil, it returns an empty Attr.
func Errors(errs ...error) slog.Attr {
	as := make([]slog.Attr, 0, len(errs))
	for i, err := range errs {
		if err != nil {
			as = append(as, slog.Any(strconv.Itoa(i), err))
		}
	}
	if len(as) == 0 {
		return slog.Attr{}
	}
	return slog.Attr{Key: "errors", Value: slog.GroupValue(as...)}
}

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// RunID records the validation run identifier under the key "run_id".
// If id is nil, it returns an empty Attr.
func RunID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("run_id", id)
}

// EntityType records the entity type under the key "entity_type".
func EntityType(entityType string) slog.Attr {
	return slog.String("entity_type", entityType)
}

// Bundle records the bundle under the key "bundle".
func Bundle(bundle string) slog.Attr {
	return slog.String("bundle", bundle)
}

// Field records a field name under the key "field".
func Field(name string) slog.Attr {
	return slog.String("field", name)
}

// Rule records a rule name under the key "rule".
func Rule(name string) slog.Attr {
	return slog.String("rule", name)
}

// Outcome records the terminal state of a run under the key "outcome".
func Outcome(outcome string) slog.Attr {
	return slog.String("outcome", outcome)
}

// ErrorCount records the number of violations under the key "error_count".
func ErrorCount(n int) slog.Attr {
	return slog.Int("error_count", n)
}

// Severity records a message severity under the key "severity".
func Severity(severity string) slog.Attr {
	return slog.String("severity", severity)
}

// Duration records a duration under the key "duration".
func Duration(d any) slog.Attr {
	return slog.Any("duration", d)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
