package config

import (
	"errors"
	"fmt"
	"maps"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type options struct {
	files       []string
	prefix      string
	environment map[string]string
}

// Option configures Load.
type Option func(*options)

// WithEnvFiles reads dotenv files in order. Missing files are skipped;
// earlier files win over later ones.
func WithEnvFiles(files ...string) Option {
	return func(o *options) { o.files = append(o.files, files...) }
}

// WithPrefix prepends prefix to every variable name.
func WithPrefix(prefix string) Option {
	return func(o *options) { o.prefix = prefix }
}

// WithEnvironment replaces the process environment, for tests.
func WithEnvironment(environment map[string]string) Option {
	return func(o *options) { o.environment = environment }
}

type validatable interface {
	Validate() error
}

// Load parses a T from the environment.
func Load[T any](opts ...Option) (T, error) {
	var cfg T

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}

	environment := maps.Clone(o.environment)
	if environment == nil {
		environment = env.ToMap(os.Environ())
	}
	if err := mergeEnvFiles(environment, o.files); err != nil {
		return cfg, err
	}

	if err := env.ParseWithOptions(&cfg, env.Options{
		Environment: environment,
		Prefix:      o.prefix,
	}); err != nil {
		return cfg, errors.Join(ErrParsingConfig, err)
	}

	if v, ok := any(cfg).(validatable); ok {
		if err := v.Validate(); err != nil {
			return cfg, errors.Join(ErrInvalidConfig, err)
		}
	} else if v, ok := any(&cfg).(validatable); ok {
		if err := v.Validate(); err != nil {
			return cfg, errors.Join(ErrInvalidConfig, err)
		}
	}

	return cfg, nil
}

// MustLoad works like Load but panics if configuration loading fails.
func MustLoad[T any](opts ...Option) T {
	cfg, err := Load[T](opts...)
	if err != nil {
		panic(fmt.Sprintf("failed to load required configuration: %v", err))
	}
	return cfg
}

func mergeEnvFiles(environment map[string]string, files []string) error {
	for _, file := range files {
		if _, err := os.Stat(file); errors.Is(err, os.ErrNotExist) {
			continue
		}
		values, err := godotenv.Read(file)
		if err != nil {
			return errors.Join(ErrReadingEnvFile, fmt.Errorf("%s: %w", file, err))
		}
		for k, v := range values {
			if _, ok := environment[k]; !ok {
				environment[k] = v
			}
		}
	}
	return nil
}
