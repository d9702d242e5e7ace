package validator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
)

// State is a step of the engine's lifecycle.
type State string

const (
	StateIdle          State = "idle"
	StateValidating    State = "validating"
	StateValid         State = "valid"
	StateInvalidSilent State = "invalid_silent"
	StateInvalidRaised State = "invalid_raised"
	// StateError marks a call that ended with a configuration error.
	StateError State = "error"
)

// PreValidateFunc runs before the schema is resolved. An error aborts the call.
type PreValidateFunc func(ctx context.Context, e *Engine) error

// Engine validates records against the schema of one entity type and bundle.
type Engine struct {
	running sync.Mutex

	entityType string
	bundle     string

	metadata   Metadata
	properties Properties
	types      TypeChecker
	registry   *Registry
	policy     Policy
	policySet  bool
	emitter    Emitter
	formatter  Formatter
	logger     *slog.Logger

	collector   *Collector
	preValidate []PreValidateFunc
	observers   []Observer
	metaData    map[string]any

	stateMu sync.RWMutex
	state   State
	last    State
}

// New creates an engine. Without options it buffers violations, uses the
// built-in registry and logs nothing; Metadata and Properties must be set
// before Validate.
func New(opts ...Option) *Engine {
	e := &Engine{
		registry: NewRegistry(),
		policy:   Buffer{},
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		metaData: make(map[string]any),
		state:    StateIdle,
		last:     StateIdle,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.collector = NewCollector(e.formatter)
	return e
}

// SetEntityType sets the entity type whose schema is validated.
func (e *Engine) SetEntityType(entityType string) *Engine {
	e.entityType = entityType
	return e
}

func (e *Engine) EntityType() string { return e.entityType }

// SetBundle sets the bundle whose schema is validated.
func (e *Engine) SetBundle(bundle string) *Engine {
	e.bundle = bundle
	return e
}

func (e *Engine) Bundle() string { return e.bundle }

// SetPolicy replaces the error policy.
func (e *Engine) SetPolicy(p Policy) *Engine {
	if p != nil {
		e.policy = p
	}
	return e
}

// SetErrorLevel selects the policy by level. LevelEmit needs an emitter set with WithEmitter.
func (e *Engine) SetErrorLevel(level Level) error {
	p, err := PolicyForLevel(level, e.emitter)
	if err != nil {
		return err
	}
	e.policy = p
	return nil
}

// Registry returns the engine's rule registry for registering custom rules.
func (e *Engine) Registry() *Registry { return e.registry }

// PreValidate registers a hook run at the start of every Validate call.
func (e *Engine) PreValidate(fn PreValidateFunc) *Engine {
	if fn != nil {
		e.preValidate = append(e.preValidate, fn)
	}
	return e
}

// AddMetaData stores an arbitrary value on the engine, for use by hooks and rules.
func (e *Engine) AddMetaData(key string, value any) *Engine {
	e.metaData[key] = value
	return e
}

// MetaData returns a copy of the stored metadata.
func (e *Engine) MetaData() map[string]any {
	return maps.Clone(e.metaData)
}

// Errors returns the violations buffered by the last call, keyed by field.
func (e *Engine) Errors() map[string][]ValidationError {
	return e.collector.Errors()
}

// SquashedErrors renders the violations buffered by the last call.
func (e *Engine) SquashedErrors() string {
	return e.collector.Squash()
}

// ClearErrors drops buffered violations.
func (e *Engine) ClearErrors() {
	e.collector.Clear()
}

// State reports whether a call is in progress.
func (e *Engine) State() State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.state
}

// LastOutcome returns the terminal state of the previous call.
func (e *Engine) LastOutcome() State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()
	return e.last
}

// Clone returns an engine with the same configuration and its own error buffer.
// The registry is shared.
func (e *Engine) Clone() *Engine {
	c := &Engine{
		entityType:  e.entityType,
		bundle:      e.bundle,
		metadata:    e.metadata,
		properties:  e.properties,
		types:       e.types,
		registry:    e.registry,
		policy:      e.policy,
		policySet:   e.policySet,
		emitter:     e.emitter,
		formatter:   e.formatter,
		logger:      e.logger,
		preValidate: append([]PreValidateFunc(nil), e.preValidate...),
		observers:   append([]Observer(nil), e.observers...),
		metaData:    maps.Clone(e.metaData),
		state:       StateIdle,
		last:        StateIdle,
	}
	c.collector = NewCollector(c.formatter)
	return c
}

// Validate checks record against the schema of the engine's entity type and bundle.
//
// It returns (true, nil) when no violation is buffered. Otherwise it returns
// (false, nil) when silent is set, and (false, *FailedError) when not. The
// Raise policy always returns a *FailedError. Configuration problems are
// returned as errors regardless of silent.
func (e *Engine) Validate(ctx context.Context, record any, silent bool) (bool, error) {
	if !e.running.TryLock() {
		return false, ErrConcurrentValidation
	}
	defer e.running.Unlock()

	e.collector.Clear()
	e.setState(StateValidating)

	start := time.Now()
	id := uuid.New()
	ctx = logger.WithRun(ctx, logger.Run{ID: id, EntityType: e.entityType, Bundle: e.bundle})
	r := &run{
		ctx:        ctx,
		id:         id,
		entityType: e.entityType,
		bundle:     e.bundle,
		record:     record,
		collector:  e.collector,
		policy:     e.policy,
		properties: e.properties,
		types:      e.types,
		logger:     e.logger,
	}

	outcome := StateError
	defer func() {
		e.finish(outcome)
		e.observe(r.ctx, Report{
			RunID:      id,
			EntityType: r.entityType,
			Bundle:     r.bundle,
			Outcome:    outcome,
			Duration:   time.Since(start),
			Violations: r.violations,
		})
	}()

	if err := e.checkBindings(); err != nil {
		return false, err
	}

	ok, err := e.execute(r, silent, &outcome)
	if err != nil && !IsValidationFailed(err) {
		r.logger.ErrorContext(r.ctx, "validation could not run", logger.Error(err))
		return ok, err
	}
	r.logger.DebugContext(r.ctx, "validation finished",
		logger.Outcome(string(outcome)),
		logger.ErrorCount(e.collector.Len()),
	)
	return ok, err
}

func (e *Engine) execute(r *run, silent bool, outcome *State) (bool, error) {
	ctx := r.ctx
	r.logger.DebugContext(ctx, "validation started")

	for _, hook := range e.preValidate {
		if err := hook(ctx, e); err != nil {
			return false, errors.Join(ErrPreValidate, err)
		}
	}
	if e.entityType != r.entityType || e.bundle != r.bundle {
		// A hook retargeted the engine.
		if e.entityType == "" {
			return false, ErrMissingEntityType
		}
		r.entityType, r.bundle = e.entityType, e.bundle
		r.ctx = logger.WithRun(r.ctx, logger.Run{ID: r.id, EntityType: r.entityType, Bundle: r.bundle})
		ctx = r.ctx
	}

	specs, err := e.metadata.FieldsInfo(ctx, r.entityType, r.bundle)
	if err != nil {
		return false, errors.Join(ErrMetadata, err)
	}
	if len(specs) == 0 {
		*outcome = StateValid
		return true, nil
	}

	plans, err := e.registry.plan(specs)
	if err != nil {
		return false, err
	}
	if e.types == nil {
		for _, spec := range specs {
			if spec.Type != "" {
				return false, ErrMissingTypeChecker
			}
		}
	}

	for _, p := range plans {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if err := r.validateField(p); err != nil {
			return false, err
		}
		if r.err != nil {
			break
		}
	}

	if r.err != nil {
		if !errors.Is(r.err, ErrAbort) {
			return false, r.err
		}
		*outcome = StateInvalidRaised
		return false, e.failed(r)
	}

	if e.collector.IsEmpty() {
		*outcome = StateValid
		return true, nil
	}
	if silent {
		*outcome = StateInvalidSilent
		return false, nil
	}
	*outcome = StateInvalidRaised
	return false, e.failed(r)
}

func (e *Engine) checkBindings() error {
	switch {
	case e.metadata == nil:
		return ErrMissingMetadata
	case e.properties == nil:
		return ErrMissingProperties
	case e.entityType == "":
		return ErrMissingEntityType
	}
	if p, ok := e.policy.(Emit); ok && p.Emitter == nil {
		return ErrMissingEmitter
	}
	return nil
}

func (e *Engine) failed(r *run) *FailedError {
	return &FailedError{
		RunID:      r.id,
		EntityType: r.entityType,
		Bundle:     r.bundle,
		Errors:     e.collector.Flatten(),
		Squashed:   e.collector.Squash(),
	}
}

func (e *Engine) observe(ctx context.Context, r Report) {
	for _, o := range e.observers {
		o.ObserveRun(ctx, r)
	}
}

func (e *Engine) setState(s State) {
	e.stateMu.Lock()
	e.state = s
	e.stateMu.Unlock()
}

func (e *Engine) finish(outcome State) {
	e.stateMu.Lock()
	e.state = StateIdle
	e.last = outcome
	e.stateMu.Unlock()
}
