package registrar

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/nsreg/core/metrics"
	"github.com/kilianp07/nsreg/core/namespace"
	"github.com/kilianp07/nsreg/internal/eventbus"
)

type failingSink struct{ calls int }

func (f *failingSink) RecordRegistration(metrics.RegistrationEvent) error {
	f.calls++
	return errors.New("sink down")
}

type flow struct{ Name string }

func TestRegister_ReturnsSameObject(t *testing.T) {
	r := New(namespace.New())
	f := &flow{Name: "etl"}
	got := Register[*flow](r, namespace.Models, "flows.etl")(f)
	assert.Same(t, f, got)

	v, err := r.Namespace().Lookup(namespace.Models, "flows.etl")
	require.NoError(t, err)
	assert.Same(t, f, v)
}

func TestRegister_FunctionStaysCallable(t *testing.T) {
	r := New(namespace.New())
	f := Register[func(int) int](r, namespace.API, "fns.my_fn")(func(x int) int { return x + 1 })

	fn, err := namespace.LookupAs[func(int) int](r.Namespace().Partition(namespace.API), "fns.my_fn")
	require.NoError(t, err)
	assert.Equal(t, 101, fn(100))
	assert.Equal(t, 101, f(100))
}

func TestRegister_PanicsOnInvalidName(t *testing.T) {
	r := New(namespace.New())
	assert.PanicsWithError(t, `register api.: invalid dotted name: empty name`, func() {
		Register[int](r, namespace.API, "")(1)
	})
}

func TestRegister_StrictConflictPanics(t *testing.T) {
	r := New(namespace.New(namespace.WithStrict()))
	Register[string](r, namespace.Plugins, "echo")("a")
	assert.Panics(t, func() {
		Register[string](r, namespace.Plugins, "echo")("b")
	})
}

func TestInsert_ReportsEvents(t *testing.T) {
	sink := metrics.NewMemorySink()
	bus := eventbus.New[metrics.RegistrationEvent](4)
	sub := bus.Subscribe()
	r := New(namespace.New(), WithSink(sink), WithBus(bus))

	require.NoError(t, r.Insert(namespace.API, "fns.a", 1))
	require.NoError(t, r.Insert(namespace.API, "fns.a", "two"))

	first := <-sub
	second := <-sub
	assert.Equal(t, "fns.a", first.Path)
	assert.Equal(t, namespace.API, first.Partition)
	assert.Equal(t, "int", first.Type)
	assert.False(t, first.Replaced)
	assert.True(t, second.Replaced)
	assert.NotEqual(t, first.ID, second.ID)

	st := sink.Snapshot()
	assert.Equal(t, 2, st.Registrations)
	assert.Equal(t, 1, st.Replacements)
}

func TestInsert_ErrorWrapsCause(t *testing.T) {
	sink := metrics.NewMemorySink()
	r := New(namespace.New(), WithSink(sink))
	require.NoError(t, r.Insert(namespace.API, "fns", 1))
	err := r.Insert(namespace.API, "fns.a", 2)
	assert.ErrorIs(t, err, namespace.ErrNotNamespace)
	assert.Equal(t, 1, sink.Snapshot().Registrations)
}

func TestInsert_SinkErrorIsNotFatal(t *testing.T) {
	sink := &failingSink{}
	r := New(namespace.New(), WithSink(sink))
	assert.NoError(t, r.Insert(namespace.Plugins, "p", 1))
	assert.Equal(t, 1, sink.calls)
}

func TestDefault_Handles(t *testing.T) {
	assert.Same(t, Default(), Default())

	add := RegisterAPI[func(int) int]("registrar_test.fns.my_fn")(func(x int) int { return x + 1 })
	a, b := &flow{"A"}, &flow{"B"}
	RegisterModel[*flow]("registrar_test.models.Foo")(a)
	RegisterModel[*flow]("registrar_test.models.Bar")(b)
	RegisterPlugin[string]("registrar_test.echo")("echo")

	fn, err := namespace.LookupAs[func(int) int](API(), "registrar_test.fns.my_fn")
	require.NoError(t, err)
	assert.Equal(t, 101, fn(100))
	assert.Equal(t, 101, add(100))

	foo, err := Models().Lookup("registrar_test.models.Foo")
	require.NoError(t, err)
	assert.Same(t, a, foo)
	bar, err := Models().Lookup("registrar_test.models.Bar")
	require.NoError(t, err)
	assert.Same(t, b, bar)
	_, err = Models().Lookup("registrar_test.models.models")
	assert.ErrorIs(t, err, namespace.ErrNotFound)

	v, err := Plugins().Lookup("registrar_test.echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", v)
}

func TestSetDefault_SharesNamespace(t *testing.T) {
	base := Default()
	sink := metrics.NewMemorySink()
	r := New(base.Namespace(), WithSink(sink))
	prev := SetDefault(r)
	t.Cleanup(func() { SetDefault(prev) })
	assert.Same(t, base, prev)
	assert.Same(t, r, Default())

	RegisterPlugin[string]("registrar_test.shared")("x")
	assert.Equal(t, 1, sink.Snapshot().Registrations)
	v, err := base.Namespace().Lookup(namespace.Plugins, "registrar_test.shared")
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestSetDefault_NilStartsOver(t *testing.T) {
	prev := SetDefault(nil)
	t.Cleanup(func() { SetDefault(prev) })
	fresh := Default()
	assert.NotSame(t, prev, fresh)
	assert.Zero(t, fresh.Namespace().Count())
}
