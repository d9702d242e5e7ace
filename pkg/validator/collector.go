package validator

import (
	"errors"
	"maps"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrymomot/entityvalidate/pkg/message"
)

// Separator joins squashed error messages.
const Separator = "\n\r"

// failedPrefix starts the message of every *FailedError.
const failedPrefix = "The validation process failed: "

// ValidationError is a single violation recorded for a field.
type ValidationError struct {
	Field   string
	Message string
	Params  map[string]string
}

// ValidationErrors is an ordered list of violations.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}

	parts := make([]string, 0, len(ve))
	for _, err := range ve {
		parts = append(parts, err.Field+": "+message.Format(err.Message, err.Params))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (ve ValidationErrors) Has(field string) bool {
	for _, err := range ve {
		if err.Field == field {
			return true
		}
	}
	return false
}

// Get returns the raw message templates recorded for field.
func (ve ValidationErrors) Get(field string) []string {
	var messages []string
	for _, err := range ve {
		if err.Field == field {
			messages = append(messages, err.Message)
		}
	}
	return messages
}

func (ve ValidationErrors) Fields() []string {
	var fields []string
	seen := make(map[string]bool)
	for _, err := range ve {
		if !seen[err.Field] {
			fields = append(fields, err.Field)
			seen[err.Field] = true
		}
	}
	return fields
}

// Collector accumulates violations per field.
// Fields keep the order in which their first violation was recorded;
// violations keep the order in which they were recorded.
type Collector struct {
	order     []string
	errors    map[string][]ValidationError
	formatter Formatter
}

// NewCollector creates an empty collector rendering messages with f.
// A nil formatter falls back to message.Default.
func NewCollector(f Formatter) *Collector {
	if f == nil {
		f = message.Default
	}
	return &Collector{
		errors:    make(map[string][]ValidationError),
		formatter: f,
	}
}

// SetError records a violation for field. The "field" parameter is always set
// to the field name.
func (c *Collector) SetError(field, msg string, params map[string]string) {
	c.Add(NewValidationError(field, msg, params))
}

// Add records v as is.
func (c *Collector) Add(v ValidationError) {
	if _, ok := c.errors[v.Field]; !ok {
		c.order = append(c.order, v.Field)
	}
	c.errors[v.Field] = append(c.errors[v.Field], v)
}

// Errors returns a copy of the recorded violations keyed by field.
func (c *Collector) Errors() map[string][]ValidationError {
	out := make(map[string][]ValidationError, len(c.errors))
	for field, errs := range c.errors {
		out[field] = append([]ValidationError(nil), errs...)
	}
	return out
}

// Get returns the violations recorded for field.
func (c *Collector) Get(field string) []ValidationError {
	return append([]ValidationError(nil), c.errors[field]...)
}

func (c *Collector) Has(field string) bool {
	return len(c.errors[field]) > 0
}

// Fields returns the fields with violations in recording order.
func (c *Collector) Fields() []string {
	return append([]string(nil), c.order...)
}

// Len returns the total number of violations.
func (c *Collector) Len() int {
	n := 0
	for _, errs := range c.errors {
		n += len(errs)
	}
	return n
}

func (c *Collector) IsEmpty() bool {
	return len(c.order) == 0
}

// Flatten returns all violations in field-then-entry order.
func (c *Collector) Flatten() ValidationErrors {
	out := make(ValidationErrors, 0, c.Len())
	for _, field := range c.order {
		out = append(out, c.errors[field]...)
	}
	return out
}

// Format renders a single violation.
func (c *Collector) Format(v ValidationError) string {
	return c.formatter.Format(v.Message, v.Params)
}

// Squash renders all violations joined by Separator.
func (c *Collector) Squash() string {
	rendered := make([]string, 0, c.Len())
	for _, v := range c.Flatten() {
		rendered = append(rendered, c.Format(v))
	}
	return strings.Join(rendered, Separator)
}

// Clear drops every recorded violation.
func (c *Collector) Clear() {
	c.order = nil
	c.errors = make(map[string][]ValidationError)
}

// NewValidationError builds a violation, copying params and setting "field".
func NewValidationError(field, msg string, params map[string]string) ValidationError {
	p := make(map[string]string, len(params)+1)
	maps.Copy(p, params)
	p["field"] = field
	return ValidationError{Field: field, Message: msg, Params: p}
}

// FailedError is returned by a non-silent Validate call that recorded violations.
type FailedError struct {
	RunID      uuid.UUID
	EntityType string
	Bundle     string
	Errors     ValidationErrors
	Squashed   string
}

func (e *FailedError) Error() string {
	return failedPrefix + e.Squashed
}

func (e *FailedError) Is(target error) bool {
	return target == ErrValidationFailed
}

// ExtractFailed returns the *FailedError wrapped in err, if any.
func ExtractFailed(err error) *FailedError {
	if err == nil {
		return nil
	}

	var failed *FailedError
	if errors.As(err, &failed) {
		return failed
	}
	return nil
}

func IsValidationFailed(err error) bool {
	return errors.Is(err, ErrValidationFailed)
}
