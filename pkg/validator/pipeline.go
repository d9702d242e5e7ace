package validator

import (
	"fmt"
	"log/slog"
	"reflect"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
)

// validateField runs the pipeline for one field. A returned error is a
// property access failure; violations and policy aborts live on the run.
func (r *run) validateField(p fieldPlan) error {
	f := &Field{spec: p.spec, run: r}
	property := p.spec.PropertyName()

	value, err := r.properties.Get(r.record, property)
	if err != nil {
		return fmt.Errorf("%w: get %q: %w", ErrPropertyAccess, property, err)
	}

	for _, pre := range p.preprocessors {
		next := pre.fn(f, value)
		if r.err != nil {
			return nil
		}
		if reflect.DeepEqual(next, value) {
			continue
		}
		if err := r.properties.Set(r.record, property, next); err != nil {
			return fmt.Errorf("%w: set %q: %w", ErrPropertyAccess, property, err)
		}
		r.logger.DebugContext(r.ctx, "preprocessor changed value",
			logger.Field(p.spec.Name),
			logger.Rule(pre.name),
		)
		value = next
	}

	if p.spec.Required {
		isNotEmpty(f, value)
		if r.err != nil {
			return nil
		}
	}

	if p.spec.Type != "" && !IsEmpty(value) {
		isValidValue(f, value, p.spec.Type, r.types)
		if r.err != nil {
			return nil
		}
	}

	for _, v := range p.validators {
		v.fn(f, value)
		if r.err != nil {
			r.logger.DebugContext(r.ctx, "field validation stopped",
				logger.Field(p.spec.Name),
				logger.Rule(v.name),
				slog.String("reason", r.err.Error()),
			)
			return nil
		}
	}
	return nil
}
