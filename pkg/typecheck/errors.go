package typecheck

import "errors"

var (
	ErrInvalidDescriptor = errors.New("invalid type descriptor")
	ErrCompileSchema     = errors.New("failed to compile type schema")
)
