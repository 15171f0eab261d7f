// Package plugins holds the built-in startup modules. Importing the package
// provides them to loader.DefaultTable; listing a path under
// registry.import_on_start registers its entries.
package plugins

import (
	"context"

	"github.com/kilianp07/nsreg/core/loader"
	"github.com/kilianp07/nsreg/core/namespace"
	"github.com/kilianp07/nsreg/core/registrar"
)

const (
	ModuleFns     = "builtin.fns"
	ModuleModels  = "builtin.models"
	ModulePlugins = "builtin.plugins"
)

func init() {
	loader.Provide(ModuleFns, registerFns)
	loader.Provide(ModuleModels, registerModels)
	loader.Provide(ModulePlugins, registerPlugins)
}

// AddOne is registered as api fns.my_fn.
func AddOne(x int) int { return x + 1 }

// Identity is registered as api fns.identity.
func Identity(v any) any { return v }

func registerFns(_ context.Context, reg *registrar.Registrar, _ map[string]any) error {
	registrar.Register[func(int) int](reg, namespace.API, "fns.my_fn")(AddOne)
	registrar.Register[func(any) any](reg, namespace.API, "fns.identity")(Identity)
	return nil
}

func registerModels(_ context.Context, reg *registrar.Registrar, _ map[string]any) error {
	if err := reg.Insert(namespace.Models, "Task", NewTask); err != nil {
		return err
	}
	return reg.Insert(namespace.Models, "Flow", NewFlow)
}

func registerPlugins(_ context.Context, reg *registrar.Registrar, conf map[string]any) error {
	var c EchoConfig
	if err := loader.Decode(conf, &c); err != nil {
		return err
	}
	registrar.Register[*Echo](reg, namespace.Plugins, "echo")(NewEcho(c))
	return nil
}
