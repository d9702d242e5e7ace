package validator

import "errors"

var (
	// ErrValidationFailed matches every *FailedError.
	ErrValidationFailed = errors.New("validation failed")

	// ErrAbort is returned by a Policy to stop the current run.
	ErrAbort = errors.New("validation aborted")

	// ErrUnknownRule is returned when a schema references a rule that is not registered.
	ErrUnknownRule = errors.New("unknown validation rule")

	// ErrDuplicateRule is returned when a rule name is registered twice.
	ErrDuplicateRule = errors.New("validation rule already registered")

	// ErrInvalidRule is returned for an empty rule name or a nil rule function.
	ErrInvalidRule = errors.New("invalid validation rule")

	// ErrMissingMetadata is returned when the engine has no Metadata provider.
	ErrMissingMetadata = errors.New("metadata provider is not configured")

	// ErrMissingProperties is returned when the engine has no Properties facade.
	ErrMissingProperties = errors.New("property facade is not configured")

	// ErrMissingEntityType is returned when Validate is called before an entity type is set.
	ErrMissingEntityType = errors.New("entity type is not set")

	// ErrMissingTypeChecker is returned when a field declares a type but no TypeChecker is configured.
	ErrMissingTypeChecker = errors.New("type checker is not configured")

	// ErrMissingEmitter is returned when the emit policy has no Emitter.
	ErrMissingEmitter = errors.New("message emitter is not configured")

	// ErrInvalidErrorLevel is returned for an error level outside 0..2.
	ErrInvalidErrorLevel = errors.New("invalid error level")

	// ErrMetadata wraps failures of the Metadata provider.
	ErrMetadata = errors.New("failed to resolve fields info")

	// ErrPropertyAccess wraps failures of the Properties facade.
	ErrPropertyAccess = errors.New("failed to access record property")

	// ErrPreValidate wraps failures of a pre-validate hook.
	ErrPreValidate = errors.New("pre-validate hook failed")

	// ErrInvalidResolution is returned when an image resolution setting is not "HxW".
	ErrInvalidResolution = errors.New("invalid image resolution setting")

	// ErrConcurrentValidation is returned when Validate is called while another call is running.
	ErrConcurrentValidation = errors.New("engine is already validating")
)
