package validator

import (
	"log/slog"

	"github.com/dmitrymomot/entityvalidate/pkg/logger"
)

// Option configures an Engine.
type Option func(*Engine)

func WithMetadata(m Metadata) Option {
	return func(e *Engine) { e.metadata = m }
}

func WithProperties(p Properties) Option {
	return func(e *Engine) { e.properties = p }
}

func WithTypeChecker(t TypeChecker) Option {
	return func(e *Engine) { e.types = t }
}

// WithRegistry replaces the built-in registry. Nil is ignored.
func WithRegistry(r *Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithPolicy sets the error policy. Nil is ignored.
func WithPolicy(p Policy) Option {
	return func(e *Engine) {
		if p != nil {
			e.policy = p
			e.policySet = true
		}
	}
}

// WithEmitter sets the message channel used by the emit policy.
// If the current policy is Emit without an emitter, it is bound to em.
func WithEmitter(em Emitter) Option {
	return func(e *Engine) {
		e.emitter = em
		if p, ok := e.policy.(Emit); ok && p.Emitter == nil {
			p.Emitter = em
			e.policy = p
		}
	}
}

// WithErrorLevel selects the policy by level. For LevelEmit the emitter given
// by WithEmitter is used, whichever option comes first. Levels out of range
// select Buffer; use Config.Validate or Engine.SetErrorLevel to reject them.
func WithErrorLevel(level Level) Option {
	return func(e *Engine) {
		e.applyLevel(level)
		e.policySet = true
	}
}

// WithFormatter sets how messages are rendered. Nil keeps message.Default.
func WithFormatter(f Formatter) Option {
	return func(e *Engine) {
		if f != nil {
			e.formatter = f
		}
	}
}

// WithLogger sets the logger. Nil is ignored. Records logged during a run
// carry its run_id, entity_type and bundle.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = logger.Decorate(l)
		}
	}
}

func WithEntityType(entityType string) Option {
	return func(e *Engine) { e.entityType = entityType }
}

func WithBundle(bundle string) Option {
	return func(e *Engine) { e.bundle = bundle }
}

// WithPreValidate registers a pre-validate hook.
func WithPreValidate(fn PreValidateFunc) Option {
	return func(e *Engine) {
		if fn != nil {
			e.preValidate = append(e.preValidate, fn)
		}
	}
}

// WithConfig applies values loaded from the environment. The error level is
// used only when no earlier WithPolicy or WithErrorLevel chose a policy.
// cfg is not validated here; call cfg.Validate first.
func WithConfig(cfg Config) Option {
	return func(e *Engine) {
		if cfg.EntityType != "" {
			e.entityType = cfg.EntityType
		}
		if cfg.Bundle != "" {
			e.bundle = cfg.Bundle
		}
		if !e.policySet {
			e.applyLevel(Level(cfg.ErrorLevel))
		}
	}
}

// WithObserver adds an observer notified after every run. Nil is ignored.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		if o != nil {
			e.observers = append(e.observers, o)
		}
	}
}

func (e *Engine) applyLevel(level Level) {
	switch level {
	case LevelEmit:
		e.policy = Emit{Emitter: e.emitter, Severity: SeverityError}
	case LevelRaise:
		e.policy = Raise{}
	default:
		e.policy = Buffer{}
	}
}
