package mapper

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is matched by all mapper registration errors.
var ErrInvalidConfiguration = errors.New("invalid mapper configuration")

// ErrInvalidSnapshot is returned when a mapper state snapshot does not match
// a valid mapper configuration.
var ErrInvalidSnapshot = errors.New("invalid mapper snapshot")

// ConfigError describes why a mapper could not be registered.
type ConfigError struct {
	Variant Variant
	ROMSize int
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: mapper %s with ROM size %d: %s",
		ErrInvalidConfiguration, e.Variant, e.ROMSize, e.Reason)
}

// Unwrap allows matching the error with ErrInvalidConfiguration.
func (e *ConfigError) Unwrap() error {
	return ErrInvalidConfiguration
}
