// Package validator implements a pluggable record validation engine.
//
// An Engine validates one record at a time against a schema resolved for an
// entity type and bundle. The schema comes from a Metadata provider and the
// record is read and written through a Properties facade, so the engine knows
// nothing about how records are represented or stored.
//
// # Pipeline
//
// For every field returned by the Metadata provider the engine:
//
//  1. reads the current value through Properties;
//  2. runs the field's preprocessors in order, committing a changed value
//     back through Properties;
//  3. runs the required check when the field is required;
//  4. runs the type-conformance check when the field declares a type and the
//     value is not empty;
//  5. runs the field's validators in declared order.
//
// No step short-circuits: every field and every rule runs, so a single call
// reports all violations of a record.
//
// # Rules
//
// Rules are named functions held in a Registry. Validators report problems by
// calling Field.SetError; they do not return a verdict, which lets a single
// rule record several independent violations. Preprocessors return a new value
// and the pipeline decides whether to commit it. Names referenced by a schema
// are resolved before any field runs, and an unknown name fails the call with
// ErrUnknownRule.
//
// # Error policies
//
// Each recorded violation is handed to the engine's Policy:
//
//   - Buffer keeps it in the Collector for the final decision;
//   - Emit renders it and sends it to an Emitter, then continues;
//   - Raise stops the run at the first violation.
//
// When buffering, Validate returns (true, nil) for a valid record. For an
// invalid one it returns (false, nil) in silent mode, or (false, err) where err
// is a *FailedError carrying the squashed message otherwise.
//
// # Usage
//
//	engine := validator.New(
//	    validator.WithMetadata(provider),
//	    validator.WithProperties(property.New()),
//	    validator.WithEntityType("node"),
//	    validator.WithBundle("article"),
//	)
//
//	ok, err := engine.Validate(ctx, record, false)
//	if err != nil {
//	    if failed := validator.ExtractFailed(err); failed != nil {
//	        // failed.Errors holds the structured violations
//	    }
//	}
//
// An Engine is not safe for concurrent Validate calls. Use Clone to get an
// independent engine per goroutine.
package validator
