package validator

import "fmt"

// Config holds engine settings loaded with pkg/config.
type Config struct {
	EntityType string `env:"VALIDATOR_ENTITY_TYPE"`
	Bundle     string `env:"VALIDATOR_BUNDLE"`
	ErrorLevel int    `env:"VALIDATOR_ERROR_LEVEL" envDefault:"0"`
}

// Validate reports settings that New would silently coerce.
func (c Config) Validate() error {
	if c.ErrorLevel < int(LevelBuffer) || c.ErrorLevel > int(LevelRaise) {
		return fmt.Errorf("%w: %d", ErrInvalidErrorLevel, c.ErrorLevel)
	}
	return nil
}
