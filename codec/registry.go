package codec

import (
	"fmt"
	"reflect"
	"sync"

	"csvcast/diagnostic"
)

// The process-wide registry maps record types to their compiled
// codecs so generic call sites can retrieve "the codec for T" without
// naming it. Populate it with explicit Register/TryRegister calls
// during program startup, before the first lookup.
var (
	regMu  sync.RWMutex
	codecs = make(map[reflect.Type]any)
)

// Register stores c as the codec for T, replacing any previous one.
func Register[T any](c *Codec[T]) {
	regMu.Lock()
	defer regMu.Unlock()
	codecs[typeFor[T]()] = c
}

// For retrieves the registered codec for T.
func For[T any]() (*Codec[T], bool) {
	regMu.RLock()
	v, ok := codecs[typeFor[T]()]
	regMu.RUnlock()
	if !ok {
		return nil, false
	}
	return v.(*Codec[T]), true
}

// MustFor is For panicking when no codec is registered for T.
func MustFor[T any]() *Codec[T] {
	c, ok := For[T]()
	if !ok {
		panic(fmt.Sprintf("codec: no codec registered for %s", typeFor[T]()))
	}
	return c
}

// TryRegister compiles and registers a codec for T, reporting whether
// it succeeded. Schema-definition errors are recorded in d and skip
// this type only; an unexpected panic during synthesis is recovered
// and skips the type silently. Either way the caller's batch continues
// with its remaining types.
func TryRegister[T any](d *diagnostic.Diagnostics, opts ...Option) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	c, err := Compile[T](append(opts, WithDiagnostics(d))...)
	if err != nil {
		return false
	}
	Register(c)
	return true
}

func typeFor[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}
