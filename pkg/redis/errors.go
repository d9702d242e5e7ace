package redis

import "errors"

var (
	ErrEmptyConnectionURL = errors.New("empty redis connection URL, use REDIS_URL env var")
	ErrInvalidURL         = errors.New("invalid redis connection URL")
	ErrNotReady           = errors.New("redis schema store did not become ready")
	ErrUnhealthy          = errors.New("redis schema store is unhealthy")
)
