package schema

import "errors"

var (
	ErrFailedToParseDocument = errors.New("failed to parse schema document")
	ErrFailedToReadSchema    = errors.New("failed to read schema source")
	ErrInvalidField          = errors.New("invalid schema field")
	ErrInvalidEntityType     = errors.New("entity type must not contain a slash")
	ErrDuplicateField        = errors.New("duplicate schema field")
	ErrDuplicateBundle       = errors.New("bundle defined twice")
	ErrUnsupportedDriver     = errors.New("unsupported database driver")
	ErrQueryFailed           = errors.New("schema query failed")
	ErrSaveFailed            = errors.New("failed to save schema")
	ErrMigrationFailed       = errors.New("failed to apply schema migrations")
	ErrStoreUnavailable      = errors.New("schema store unavailable")
	ErrWatchFailed           = errors.New("failed to watch schema files")
)
