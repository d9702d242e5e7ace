// Package config loads typed configuration from environment variables.
//
// Struct fields are bound with caarlos0/env tags. Optional dotenv files are
// read first; variables already present in the process environment win.
// Nothing is written back to the process environment.
//
//	type Config struct {
//		Driver string `env:"SCHEMA_DB_DRIVER" envDefault:"sqlite"`
//		DSN    string `env:"SCHEMA_DB_DSN"`
//	}
//
//	cfg, err := config.Load[Config](config.WithEnvFiles(".env"))
//
// A config type with a Validate() error method is validated after parsing.
package config
