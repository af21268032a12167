package model

import (
	"errors"
	"fmt"
)

// ErrConfig matches every ConfigError with errors.Is.
var ErrConfig = errors.New("invalid configuration")

// ConfigError reports an invalid or contradictory setting.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("--%s %s", e.Field, e.Reason)
}

// Is makes errors.Is(err, ErrConfig) true for any ConfigError.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}
