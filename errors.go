package ctcnet

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotImplemented is returned by extension points that
// exist in the API but have no implementation.
var ErrNotImplemented = errors.New("not implemented")

// A ConfigError reports an invalid configuration value.
// It is returned by setup calls before any state changes.
type ConfigError struct {
	// Key names the offending setting.
	Key string

	// Value is the rejected value.
	Value interface{}

	// Valid lists the accepted values, if the set is
	// closed.
	Valid []string

	// Reason optionally explains the constraint.
	Reason string
}

// Error describes the key, the value and, if known, the
// valid set.
func (c *ConfigError) Error() string {
	msg := fmt.Sprintf("invalid %s: %v", c.Key, c.Value)
	if c.Reason != "" {
		msg += " (" + c.Reason + ")"
	}
	if len(c.Valid) > 0 {
		msg += fmt.Sprintf("; should be one of [%s]", strings.Join(c.Valid, ", "))
	}
	return msg
}

// IsConfigError checks if err is, or wraps, a
// *ConfigError.
func IsConfigError(err error) bool {
	var c *ConfigError
	return errors.As(err, &c)
}
