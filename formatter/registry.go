// Package formatter supplies type-indexed codecs for field types
// outside the fast-path kind set. The compiled codecs consult the
// registry at the first read or write of such a field; a missing
// formatter fails that call.
package formatter

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"csvcast/csvio"
)

// ErrNoFormatter is returned when no formatter is registered for a type.
var ErrNoFormatter = errors.New("formatter: no formatter registered")

// Formatter serializes and deserializes one field type over the
// byte-stream collaborators. On Read, v is an addressable value of the
// registered type and must be set in place.
type Formatter interface {
	Write(w *csvio.Writer, v reflect.Value) error
	Read(r *csvio.Reader, v reflect.Value) error
}

// Registry maps field types to their formatters. A Registry is safe
// for concurrent lookup once populated; populate it during program
// startup, before the first compiled codec runs.
type Registry struct {
	mu     sync.RWMutex
	byType map[reflect.Type]Formatter
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{byType: make(map[reflect.Type]Formatter)}
}

// Register binds f to the exact type t, replacing any previous binding.
func (r *Registry) Register(t reflect.Type, f Formatter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byType[t] = f
}

// For returns the formatter for t, or an error wrapping ErrNoFormatter.
func (r *Registry) For(t reflect.Type) (Formatter, error) {
	r.mu.RLock()
	f, ok := r.byType[t]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w for type %s", ErrNoFormatter, t)
	}
	return f, nil
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
)

// Default returns the shared registry, populated on first use with the
// built-in formatters (time.Time).
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry = NewRegistry()
		registerBuiltins(defaultRegistry)
	})
	return defaultRegistry
}
