package loader

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/go-viper/mapstructure/v2"

	"github.com/kilianp07/nsreg/core/registrar"
)

// ModuleFunc registers a module's entries. conf holds the module's raw
// settings from configuration and may be nil.
type ModuleFunc func(ctx context.Context, reg *registrar.Registrar, conf map[string]any) error

// Table maps module paths to their entry points.
type Table struct {
	mu      sync.RWMutex
	modules map[string]ModuleFunc
}

// NewTable returns an empty module table.
func NewTable() *Table {
	return &Table{modules: make(map[string]ModuleFunc)}
}

// DefaultTable is filled by Provide from package init functions.
var DefaultTable = NewTable()

// Provide adds a module to DefaultTable and panics if the path is invalid
// or already taken.
func Provide(path string, fn ModuleFunc) { DefaultTable.MustProvide(path, fn) }

// Provide adds a module under path.
func (t *Table) Provide(path string, fn ModuleFunc) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrInvalidModule)
	}
	if fn == nil {
		return fmt.Errorf("%w: nil func for %s", ErrInvalidModule, path)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.modules[path]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateModule, path)
	}
	t.modules[path] = fn
	return nil
}

// MustProvide is like Provide but panics on error.
func (t *Table) MustProvide(path string, fn ModuleFunc) {
	if err := t.Provide(path, fn); err != nil {
		panic(err)
	}
}

// Lookup returns the module provided under path.
func (t *Table) Lookup(path string) (ModuleFunc, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn, ok := t.modules[path]
	return fn, ok
}

// Paths returns every provided path in sorted order.
func (t *Table) Paths() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.modules))
	for p := range t.modules {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Decode fills out the provided struct from a module's raw settings using
// json tags.
func Decode(conf map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(conf)
}
