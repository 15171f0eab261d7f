package plugins

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/nsreg/core/loader"
	"github.com/kilianp07/nsreg/core/namespace"
	"github.com/kilianp07/nsreg/core/registrar"
)

func TestBuiltinModulesProvided(t *testing.T) {
	for _, p := range []string{ModuleFns, ModuleModels, ModulePlugins} {
		_, ok := loader.DefaultTable.Lookup(p)
		assert.True(t, ok, p)
	}
}

func TestBuiltinModulesRegister(t *testing.T) {
	reg := registrar.New(namespace.New())
	ld := loader.New(loader.DefaultTable, reg, loader.WithModuleConf(map[string]map[string]any{
		ModulePlugins: {"prefix": "> "},
	}))
	require.NoError(t, ld.Load(context.Background(), []string{"builtin.*"}))

	ns := reg.Namespace()
	fn, err := namespace.LookupAs[func(int) int](ns.Partition(namespace.API), "fns.my_fn")
	require.NoError(t, err)
	assert.Equal(t, 101, fn(100))
	assert.Equal(t, 101, AddOne(100))

	id, err := namespace.LookupAs[func(any) any](ns.Partition(namespace.API), "fns.identity")
	require.NoError(t, err)
	assert.Equal(t, "x", id("x"))

	newFlow, err := namespace.LookupAs[func(string, ...*Task) *Flow](ns.Partition(namespace.Models), "Flow")
	require.NoError(t, err)
	newTask, err := namespace.LookupAs[func(string) *Task](ns.Partition(namespace.Models), "Task")
	require.NoError(t, err)
	f := newFlow("etl", newTask("extract"), newTask("load"))
	assert.Len(t, f.Tasks, 2)

	echo, err := namespace.LookupAs[*Echo](ns.Partition(namespace.Plugins), "echo")
	require.NoError(t, err)
	assert.Equal(t, "> hi", echo.Echo("hi"))
}

func TestRegisterPlugins_BadConf(t *testing.T) {
	reg := registrar.New(namespace.New())
	err := registerPlugins(context.Background(), reg, map[string]any{"prefix": map[string]any{"a": 1}})
	assert.Error(t, err)
}
