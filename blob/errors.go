package blob

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when the backend reports a missing object.
// Delete operations swallow it; URL lookups map it to an empty URL.
var ErrNotFound = errors.New("blob not found")

// ConfigError indicates a required setting was absent or invalid at
// initialization time.
type ConfigError struct {
	Setting string
	Reason  string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration %q: %s", e.Setting, e.Reason)
}

// IsNotFound reports whether err is the missing-object condition.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConfigError reports whether err is a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// transportErr wraps a backend failure with the key it was operating on.
// The original error is preserved for errors.Is / errors.As.
func transportErr(op, key string, err error) error {
	return fmt.Errorf("%s %q: %w", op, key, err)
}
