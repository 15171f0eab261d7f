package app

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/nsreg/config"
	"github.com/kilianp07/nsreg/core/loader"
	coremetrics "github.com/kilianp07/nsreg/core/metrics"
	"github.com/kilianp07/nsreg/core/namespace"
	"github.com/kilianp07/nsreg/core/registrar"
	"github.com/kilianp07/nsreg/infra/logger"
	"github.com/kilianp07/nsreg/internal/eventbus"
)

func testTable(t *testing.T, boom error) *loader.Table {
	t.Helper()
	table := loader.NewTable()
	table.MustProvide("pkg.a", func(_ context.Context, reg *registrar.Registrar, _ map[string]any) error {
		registrar.Register[func(int) int](reg, namespace.API, "fns.my_fn")(func(x int) int { return x + 1 })
		return boom
	})
	table.MustProvide("pkg.b", func(_ context.Context, reg *registrar.Registrar, conf map[string]any) error {
		return reg.Insert(namespace.Plugins, "b", conf["name"])
	})
	return table
}

func newService(t *testing.T, cfg *config.Config, table *loader.Table) *Service {
	t.Helper()
	svc, err := New(cfg, WithTable(table), WithNamespace(namespace.New()), WithLogOutput(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, svc.Close()) })
	return svc
}

func TestService_Start(t *testing.T) {
	cfg := config.Default()
	cfg.Registry.ImportOnStart = []string{"pkg.a", "pkg.b"}
	cfg.Registry.Modules = []config.ModuleConfig{{Path: "pkg.b", Conf: map[string]any{"name": "bee"}}}
	svc := newService(t, cfg, testTable(t, nil))

	require.NoError(t, svc.Start(context.Background()))
	assert.Equal(t, []string{"pkg.a", "pkg.b"}, svc.Loaded())

	v, err := svc.Namespace().Get("api.fns.my_fn")
	require.NoError(t, err)
	assert.Equal(t, 101, v.(func(int) int)(100))
	v, err = svc.Namespace().Get("plugins.b")
	require.NoError(t, err)
	assert.Equal(t, "bee", v)

	st := svc.Stats()
	assert.Equal(t, 2, st.Registrations)
	assert.Equal(t, 2, st.ModulesLoaded)
}

func TestService_StartAbortsOnFailure(t *testing.T) {
	boom := errors.New("boom")
	cfg := config.Default()
	cfg.Registry.ImportOnStart = []string{"pkg.a", "pkg.b"}
	svc := newService(t, cfg, testTable(t, boom))

	err := svc.Start(context.Background())
	require.ErrorIs(t, err, boom)
	var ie *loader.ImportError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, "pkg.a", ie.Path)

	_, err = svc.Namespace().Get("plugins.b")
	assert.ErrorIs(t, err, namespace.ErrNotFound)
	assert.Equal(t, 1, svc.Stats().ModuleFailures)
}

func TestService_StrictConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Registry.Strict = true
	svc := newService(t, cfg, loader.NewTable())
	assert.True(t, svc.Namespace().Strict())
	require.NoError(t, svc.Registrar().Insert(namespace.Models, "Foo", 1))
	assert.ErrorIs(t, svc.Registrar().Insert(namespace.Models, "Foo", 2), namespace.ErrConflict)
}

func TestService_SubscribeSeesLateRegistrations(t *testing.T) {
	svc := newService(t, config.Default(), loader.NewTable())
	sub := svc.Subscribe()
	require.NoError(t, svc.Registrar().Insert(namespace.Plugins, "late", true))
	select {
	case ev := <-sub:
		assert.Equal(t, "late", ev.Path)
	case <-time.After(time.Second):
		t.Fatal("no registration event")
	}
}

func TestService_RunWithoutMetrics(t *testing.T) {
	svc := newService(t, config.Default(), loader.NewTable())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, svc.Run(ctx))
}

func TestService_InvalidLogging(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	_, err := New(cfg, WithLogOutput(io.Discard))
	assert.Error(t, err)
}

// freshDefault gives the test its own process-wide registrar.
func freshDefault(t *testing.T) {
	t.Helper()
	prev := registrar.SetDefault(registrar.New(namespace.New()))
	t.Cleanup(func() { registrar.SetDefault(prev) })
}

func TestService_SharesDefaultRegistry(t *testing.T) {
	freshDefault(t)
	plusTwo := registrar.RegisterAPI[func(int) int]("ext.plus_two")(func(x int) int { return x + 2 })

	cfg := config.Default()
	cfg.Registry.ImportOnStart = []string{"pkg.a"}
	svc, err := New(cfg, WithTable(testTable(t, nil)), WithLogOutput(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, svc.Close()) })
	assert.Same(t, svc.Registrar(), registrar.Default())
	require.NoError(t, svc.Start(context.Background()))

	v, err := svc.Namespace().Lookup(namespace.API, "ext.plus_two")
	require.NoError(t, err)
	assert.Equal(t, 5, v.(func(int) int)(3))
	assert.Equal(t, 5, plusTwo(3))

	fn, err := namespace.LookupAs[func(int) int](registrar.API(), "fns.my_fn")
	require.NoError(t, err)
	assert.Equal(t, 101, fn(100))

	registrar.RegisterPlugin[string]("late")("after start")
	assert.Equal(t, 2, svc.Stats().Registrations)
}

func TestService_CloseRestoresDefault(t *testing.T) {
	freshDefault(t)
	before := registrar.Default()
	svc, err := New(config.Default(), WithTable(loader.NewTable()), WithLogOutput(io.Discard))
	require.NoError(t, err)
	assert.Same(t, before.Namespace(), svc.Namespace())
	require.NoError(t, svc.Close())
	require.NoError(t, svc.Close())
	assert.Same(t, before, registrar.Default())
}

func TestService_StrictAppliesToDefault(t *testing.T) {
	freshDefault(t)
	cfg := config.Default()
	cfg.Registry.Strict = true
	svc, err := New(cfg, WithTable(loader.NewTable()), WithLogOutput(io.Discard))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, svc.Close()) })
	registrar.RegisterModel[int]("Foo")(1)
	assert.Panics(t, func() { registrar.RegisterModel[int]("Foo")(2) })
}

func TestWatchRegistrations_LogsLateEntries(t *testing.T) {
	var buf syncBuffer
	logg, err := logger.NewWithOptions("watch", logger.Options{Out: &buf})
	require.NoError(t, err)
	bus := eventbus.New[coremetrics.RegistrationEvent](4)
	ctx, cancel := context.WithCancel(context.Background())
	done := watchRegistrations(ctx, bus, logg)

	bus.Publish(coremetrics.RegistrationEvent{Partition: namespace.API, Path: "fns.late", Type: "int"})
	bus.Publish(coremetrics.RegistrationEvent{Partition: namespace.API, Path: "fns.late", Type: "int", Replaced: true})
	require.Eventually(t, func() bool {
		return strings.Contains(buf.String(), "replaced an existing entry")
	}, time.Second, 10*time.Millisecond)
	assert.Contains(t, buf.String(), "late registration api.fns.late (int)")

	cancel()
	<-done
	assert.Zero(t, bus.Subscribers())
}

func TestWatchRegistrations_ReportsDrops(t *testing.T) {
	var buf syncBuffer
	logg, err := logger.NewWithOptions("watch", logger.Options{Out: &buf})
	require.NoError(t, err)
	bus := eventbus.New[coremetrics.RegistrationEvent](1)
	stalled := bus.Subscribe()
	ctx, cancel := context.WithCancel(context.Background())
	done := watchRegistrations(ctx, bus, logg)

	bus.Publish(coremetrics.RegistrationEvent{Partition: namespace.Plugins, Path: "a"})
	bus.Publish(coremetrics.RegistrationEvent{Partition: namespace.Plugins, Path: "b"})
	cancel()
	<-done
	assert.Contains(t, buf.String(), "registration events dropped by slow subscribers")
	assert.Len(t, stalled, 1)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
