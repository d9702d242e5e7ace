package validator

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Field is what a rule sees of the field it runs on.
type Field struct {
	spec FieldSpec
	run  *run
}

// Name returns the field's machine name.
func (f *Field) Name() string { return f.spec.Name }

// Spec returns the field's schema entry.
func (f *Field) Spec() FieldSpec { return f.spec }

// Setting returns a per-instance setting, or "" when unset.
func (f *Field) Setting(key string) string { return f.spec.Settings[key] }

func (f *Field) EntityType() string { return f.run.entityType }

func (f *Field) Bundle() string { return f.run.bundle }

// Context returns the context of the current Validate call.
func (f *Field) Context() context.Context { return f.run.ctx }

// Record returns the record under validation. Rules must not modify it.
func (f *Field) Record() any { return f.run.record }

// SetError records a violation for this field.
func (f *Field) SetError(msg string, params map[string]string) {
	f.run.report(NewValidationError(f.spec.Name, msg, params))
}

// Fail stops the run with a configuration error that Validate returns as is.
func (f *Field) Fail(err error) {
	f.run.fail(err)
}

// Stopped reports whether the run was aborted by the policy or by Fail.
// Rules that record several violations may check it between checks.
func (f *Field) Stopped() bool { return f.run.err != nil }

// run is the state of one Validate call.
type run struct {
	ctx        context.Context
	id         uuid.UUID
	entityType string
	bundle     string
	record     any
	collector  *Collector
	policy     Policy
	properties Properties
	types      TypeChecker
	logger     *slog.Logger
	err        error
	violations []ValidationError
}

func (r *run) report(v ValidationError) {
	if r.err != nil {
		return
	}
	r.violations = append(r.violations, v)
	if err := r.policy.Record(r.ctx, r.collector, v); err != nil {
		r.err = err
	}
}

func (r *run) fail(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}
