package registrar

import (
	"sync"

	"github.com/kilianp07/nsreg/core/namespace"
)

var (
	defaultMu  sync.RWMutex
	defaultReg *Registrar
)

// Default returns the process-wide registrar. It is created on first use
// over a fresh namespace unless SetDefault installed one earlier.
func Default() *Registrar {
	defaultMu.RLock()
	r := defaultReg
	defaultMu.RUnlock()
	if r != nil {
		return r
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultReg == nil {
		defaultReg = New(namespace.New())
	}
	return defaultReg
}

// SetDefault makes r the process-wide registrar and returns the previous
// one. Installing a registrar over Default().Namespace() keeps entries
// already registered through RegisterAPI and friends. A nil r makes the
// next Default call start over with an empty namespace.
func SetDefault(r *Registrar) *Registrar {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultReg
	defaultReg = r
	return prev
}

// RegisterAPI returns a decorator for the api partition of Default.
func RegisterAPI[T any](name string) Decorator[T] {
	return Register[T](Default(), namespace.API, name)
}

// RegisterModel returns a decorator for the models partition of Default.
func RegisterModel[T any](name string) Decorator[T] {
	return Register[T](Default(), namespace.Models, name)
}

// RegisterPlugin returns a decorator for the plugins partition of Default.
func RegisterPlugin[T any](name string) Decorator[T] {
	return Register[T](Default(), namespace.Plugins, name)
}

// API returns the api partition of Default.
func API() *namespace.Node { return Default().Namespace().Partition(namespace.API) }

// Models returns the models partition of Default.
func Models() *namespace.Node { return Default().Namespace().Partition(namespace.Models) }

// Plugins returns the plugins partition of Default.
func Plugins() *namespace.Node { return Default().Namespace().Partition(namespace.Plugins) }
