package galaxy

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks a missing or invalid world parameter
	ErrConfiguration = errors.New("invalid world configuration")
	// ErrUnknownDirection is returned for direction ordinals outside 0-7
	ErrUnknownDirection = errors.New("unknown direction")
	// ErrInvalidRange is returned for a negative laser range
	ErrInvalidRange = errors.New("invalid laser range")
	// ErrNothingThere is returned when collecting an empty cell
	ErrNothingThere = errors.New("nothing to collect")
	// ErrReadOnly is returned by World.Collect when the store cannot record expiry
	ErrReadOnly = errors.New("storage does not support expiry")
)

// ConfigError describes which world parameter is unusable
type ConfigError struct {
	Key    DataKey
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%v: %s %s", ErrConfiguration, e.Key, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return ErrConfiguration
}
