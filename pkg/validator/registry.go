package validator

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// ValidatorFunc inspects a value and reports violations through f.SetError.
type ValidatorFunc func(f *Field, value any)

// PreprocessorFunc returns the value to validate in place of value.
// Returning a value that is not deeply equal to the input commits it to the record.
type PreprocessorFunc func(f *Field, value any) any

// Built-in rule names.
const (
	RuleIsNotEmpty         = "isNotEmpty"
	RuleIsValidValue       = "isValidValue"
	RuleValidateImageField = "validateImageField"
	RuleIsText             = "isText"
	RuleIsNumeric          = "isNumeric"
	RuleIsList             = "isList"
	RuleIsYear             = "isYear"
	RuleIsUnixTimeStamp    = "isUnixTimeStamp"

	MorphText   = "morphText"
	MorphList   = "morphList"
	MorphUnique = "morphUnique"
	MorphDate   = "morphDate"
)

// Registry maps rule names to rule functions.
// It is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	validators    map[string]ValidatorFunc
	preprocessors map[string]PreprocessorFunc
}

// NewRegistry returns a registry holding the built-in rules.
func NewRegistry() *Registry {
	r := &Registry{
		validators:    make(map[string]ValidatorFunc),
		preprocessors: make(map[string]PreprocessorFunc),
	}

	r.MustRegisterValidator(RuleIsNotEmpty, isNotEmpty)
	r.MustRegisterValidator(RuleValidateImageField, validateImageField)
	r.MustRegisterValidator(RuleIsText, isText)
	r.MustRegisterValidator(RuleIsNumeric, isNumeric)
	r.MustRegisterValidator(RuleIsList, isList)
	r.MustRegisterValidator(RuleIsYear, isYear)
	r.MustRegisterValidator(RuleIsUnixTimeStamp, isUnixTimeStamp)

	r.MustRegisterPreprocessor(MorphText, morphText)
	r.MustRegisterPreprocessor(MorphList, morphList)
	r.MustRegisterPreprocessor(MorphUnique, morphUnique)
	r.MustRegisterPreprocessor(MorphDate, morphDate)

	return r
}

func (r *Registry) RegisterValidator(name string, fn ValidatorFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: validator %q", ErrInvalidRule, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.validators[name]; ok {
		return fmt.Errorf("%w: validator %q", ErrDuplicateRule, name)
	}
	r.validators[name] = fn
	return nil
}

func (r *Registry) RegisterPreprocessor(name string, fn PreprocessorFunc) error {
	if name == "" || fn == nil {
		return fmt.Errorf("%w: preprocessor %q", ErrInvalidRule, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.preprocessors[name]; ok {
		return fmt.Errorf("%w: preprocessor %q", ErrDuplicateRule, name)
	}
	r.preprocessors[name] = fn
	return nil
}

// MustRegisterValidator is like RegisterValidator but panics on error.
func (r *Registry) MustRegisterValidator(name string, fn ValidatorFunc) {
	if err := r.RegisterValidator(name, fn); err != nil {
		panic(err)
	}
}

// MustRegisterPreprocessor is like RegisterPreprocessor but panics on error.
func (r *Registry) MustRegisterPreprocessor(name string, fn PreprocessorFunc) {
	if err := r.RegisterPreprocessor(name, fn); err != nil {
		panic(err)
	}
}

func (r *Registry) Validator(name string) (ValidatorFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.validators[name]
	if !ok {
		return nil, fmt.Errorf("%w: validator %q", ErrUnknownRule, name)
	}
	return fn, nil
}

func (r *Registry) Preprocessor(name string) (PreprocessorFunc, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.preprocessors[name]
	if !ok {
		return nil, fmt.Errorf("%w: preprocessor %q", ErrUnknownRule, name)
	}
	return fn, nil
}

// Validators returns the registered validator names, sorted.
func (r *Registry) Validators() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.validators))
}

// Preprocessors returns the registered preprocessor names, sorted.
func (r *Registry) Preprocessors() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.preprocessors))
}

// Clone returns an independent copy of the registry.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return &Registry{
		validators:    maps.Clone(r.validators),
		preprocessors: maps.Clone(r.preprocessors),
	}
}

// Check resolves every rule referenced by specs and reports all unknown names.
func (r *Registry) Check(specs []FieldSpec) error {
	_, err := r.plan(specs)
	return err
}

type namedValidator struct {
	name string
	fn   ValidatorFunc
}

type namedPreprocessor struct {
	name string
	fn   PreprocessorFunc
}

// fieldPlan is a FieldSpec with its rule names resolved.
type fieldPlan struct {
	spec          FieldSpec
	preprocessors []namedPreprocessor
	validators    []namedValidator
}

func (r *Registry) plan(specs []FieldSpec) ([]fieldPlan, error) {
	plans := make([]fieldPlan, 0, len(specs))
	var errs []error

	for _, spec := range specs {
		p := fieldPlan{spec: spec}
		for _, name := range spec.Preprocessors {
			fn, err := r.Preprocessor(name)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", spec.Name, err))
				continue
			}
			p.preprocessors = append(p.preprocessors, namedPreprocessor{name: name, fn: fn})
		}
		for _, name := range spec.Validators {
			fn, err := r.Validator(name)
			if err != nil {
				errs = append(errs, fmt.Errorf("field %s: %w", spec.Name, err))
				continue
			}
			p.validators = append(p.validators, namedValidator{name: name, fn: fn})
		}
		plans = append(plans, p)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return plans, nil
}
