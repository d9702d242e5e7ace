package validator

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TypeDescriptor names the value type of a field. The engine only passes it
// to the TypeChecker.
type TypeDescriptor string

// FieldSpec describes one field of a schema.
type FieldSpec struct {
	// Name is the field's machine name, used as the error key.
	Name string
	// Property is the name passed to Properties; defaults to Name.
	Property string
	// Label is a human readable name.
	Label string
	// Required fields must not be empty.
	Required bool
	// Preprocessors are rule names applied to the value before validation.
	Preprocessors []string
	// Validators are rule names run in declared order.
	Validators []string
	// Type enables the type-conformance check when set.
	Type TypeDescriptor
	// Settings holds per-instance settings such as max_resolution.
	Settings map[string]string
}

// PropertyName returns the property the field is read from.
func (s FieldSpec) PropertyName() string {
	if s.Property != "" {
		return s.Property
	}
	return s.Name
}

// Metadata resolves the schema for an entity type and bundle.
// Fields are returned in declaration order.
type Metadata interface {
	FieldsInfo(ctx context.Context, entityType, bundle string) ([]FieldSpec, error)
}

// MetadataFunc adapts a function to the Metadata interface.
type MetadataFunc func(ctx context.Context, entityType, bundle string) ([]FieldSpec, error)

func (f MetadataFunc) FieldsInfo(ctx context.Context, entityType, bundle string) ([]FieldSpec, error) {
	return f(ctx, entityType, bundle)
}

// Properties reads and writes named properties of a record.
type Properties interface {
	Get(record any, property string) (any, error)
	Set(record any, property string, value any) error
}

// TypeChecker verifies that a value conforms to a type descriptor.
type TypeChecker interface {
	Verify(value any, t TypeDescriptor) bool
}

// TypeCheckerFunc adapts a function to the TypeChecker interface.
type TypeCheckerFunc func(value any, t TypeDescriptor) bool

func (f TypeCheckerFunc) Verify(value any, t TypeDescriptor) bool {
	return f(value, t)
}

// Severity classifies emitted messages.
type Severity string

const (
	SeverityStatus  Severity = "status"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Emitter delivers messages to the host's message channel.
// Emit must not block the validation run.
type Emitter interface {
	Emit(ctx context.Context, message string, severity Severity)
}

// Formatter renders a message template with its parameters.
type Formatter interface {
	Format(template string, params map[string]string) string
}

// Report summarizes one Validate call.
type Report struct {
	RunID      uuid.UUID
	EntityType string
	Bundle     string
	Outcome    State
	Duration   time.Duration
	// Violations holds every violation reported during the run, buffered or emitted.
	Violations []ValidationError
}

// Observer is notified after every Validate call that acquired the engine,
// including calls that ended with a configuration error.
type Observer interface {
	ObserveRun(ctx context.Context, r Report)
}
