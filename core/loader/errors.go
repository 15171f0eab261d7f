package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrModuleNotFound is returned when a configured path has no module.
	ErrModuleNotFound = errors.New("module not found")
	// ErrInvalidModule is returned when a module has no path or no func.
	ErrInvalidModule = errors.New("invalid module")
	// ErrDuplicateModule is returned when a path is provided twice.
	ErrDuplicateModule = errors.New("module already provided")
)

// ImportError reports the module path that failed to load.
type ImportError struct {
	Path string
	Err  error
}

func (e *ImportError) Error() string { return fmt.Sprintf("import %s: %v", e.Path, e.Err) }

func (e *ImportError) Unwrap() error { return e.Err }

// PanicError carries the value a module panicked with.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string { return fmt.Sprintf("panic: %v", e.Value) }

// Unwrap exposes the panic value when it is an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
