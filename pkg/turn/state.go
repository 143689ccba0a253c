package turn

import (
	"fmt"
	"reflect"
	"strings"
)

// Set stores a value in the turn's state bag. Keys are case-sensitive and
// the last write wins. Empty or whitespace-only keys are rejected.
func (c *Context) Set(key string, value any) error {
	if strings.TrimSpace(key) == "" {
		return NewError(ErrorInvalidArgument, "state key is required")
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[key] = value

	return nil
}

// Get returns the value stored under key, reporting whether one exists.
func (c *Context) Get(key string) (any, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	value, ok := c.state[key]

	return value, ok
}

// Has reports whether a value is stored under key.
func (c *Context) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.state[key]

	return ok
}

// SetValue stores value under an explicit key, or under the type's default
// key when none is given.
func SetValue[T any](c *Context, value T, key ...string) error {
	return c.Set(stateKey[T](key), value)
}

// GetValue returns the value stored under an explicit key, or under the
// type's default key when none is given. It reports false when nothing is
// stored, and fails when the stored value is not a T.
func GetValue[T any](c *Context, key ...string) (T, bool, error) {
	var zero T

	raw, ok := c.Get(stateKey[T](key))
	if !ok {
		return zero, false, nil
	}

	value, ok := raw.(T)
	if !ok {
		return zero, false, NewError(ErrorTypeMismatch, fmt.Sprintf("state value is %T, not %s", raw, DefaultKey[T]()))
	}

	return value, true, nil
}

// DefaultKey derives the deterministic state-bag key for a type from its
// fully qualified name.
func DefaultKey[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if path := t.PkgPath(); path != "" {
		return path + "." + t.Name()
	}

	return t.String()
}

func stateKey[T any](key []string) string {
	if len(key) > 0 && strings.TrimSpace(key[0]) != "" {
		return key[0]
	}

	return DefaultKey[T]()
}
