package pg

import "errors"

var (
	ErrEmptyConnectionString = errors.New("empty postgres connection string, use PG_CONN_URL env var")
	ErrInvalidConfig         = errors.New("invalid postgres connection string")
	ErrUnreachable           = errors.New("postgres schema store is unreachable")
	ErrUnhealthy             = errors.New("postgres schema store is unhealthy")
)
