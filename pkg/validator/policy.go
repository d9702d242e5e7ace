package validator

import (
	"context"
	"fmt"
)

// Level selects a Policy by number, matching the host's error level setting.
type Level int

const (
	// LevelBuffer keeps violations for the end-of-call decision.
	LevelBuffer Level = 0
	// LevelEmit sends each violation to the message channel and continues.
	LevelEmit Level = 1
	// LevelRaise aborts the run at the first violation.
	LevelRaise Level = 2
)

// Policy decides what happens to each recorded violation.
// Returning a non-nil error stops the run; ErrAbort (or an error wrapping it)
// makes Validate return a *FailedError built from the collector.
type Policy interface {
	Record(ctx context.Context, c *Collector, v ValidationError) error
}

// PolicyFunc adapts a function to the Policy interface.
type PolicyFunc func(ctx context.Context, c *Collector, v ValidationError) error

func (f PolicyFunc) Record(ctx context.Context, c *Collector, v ValidationError) error {
	return f(ctx, c, v)
}

// Buffer stores every violation in the collector.
type Buffer struct{}

func (Buffer) Record(_ context.Context, c *Collector, v ValidationError) error {
	c.Add(v)
	return nil
}

// Emit renders every violation and hands it to Emitter. Nothing is buffered,
// so a run under Emit is reported as valid.
type Emit struct {
	Emitter  Emitter
	Severity Severity
}

func (p Emit) Record(ctx context.Context, c *Collector, v ValidationError) error {
	if p.Emitter == nil {
		return ErrMissingEmitter
	}
	severity := p.Severity
	if severity == "" {
		severity = SeverityError
	}
	p.Emitter.Emit(ctx, c.Format(v), severity)
	return nil
}

// Raise stores the violation and aborts the run.
type Raise struct{}

func (Raise) Record(_ context.Context, c *Collector, v ValidationError) error {
	c.Add(v)
	return ErrAbort
}

// PolicyForLevel maps an error level to its Policy.
// LevelEmit requires a non-nil emitter.
func PolicyForLevel(level Level, emitter Emitter) (Policy, error) {
	switch level {
	case LevelBuffer:
		return Buffer{}, nil
	case LevelEmit:
		if emitter == nil {
			return nil, ErrMissingEmitter
		}
		return Emit{Emitter: emitter, Severity: SeverityError}, nil
	case LevelRaise:
		return Raise{}, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrInvalidErrorLevel, level)
	}
}
