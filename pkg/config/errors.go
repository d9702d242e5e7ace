package config

import "errors"

var (
	// ErrParsingConfig is returned when environment variables cannot be parsed into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrReadingEnvFile is returned when a dotenv file exists but cannot be read.
	ErrReadingEnvFile = errors.New("failed to read env file")

	// ErrInvalidConfig is returned when the loaded config fails its own validation.
	ErrInvalidConfig = errors.New("invalid configuration")
)
