package loader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"

	"github.com/kilianp07/nsreg/core/logger"
	"github.com/kilianp07/nsreg/core/metrics"
	"github.com/kilianp07/nsreg/core/registrar"
)

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithRecorder reports every module outcome to rec.
func WithRecorder(rec metrics.ModuleLoadRecorder) Option {
	return func(ld *Loader) { ld.rec = rec }
}

// WithModuleConf sets the raw settings handed to each module, keyed by path.
func WithModuleConf(conf map[string]map[string]any) Option {
	return func(ld *Loader) { ld.conf = conf }
}

// Loader runs startup modules from a Table against a Registrar.
// It is meant to be driven from a single goroutine during startup.
type Loader struct {
	table  *Table
	reg    *registrar.Registrar
	log    logger.Logger
	rec    metrics.ModuleLoadRecorder
	conf   map[string]map[string]any
	loaded map[string]struct{}
	order  []string
}

// New returns a Loader running modules from table.
func New(table *Table, reg *registrar.Registrar, opts ...Option) *Loader {
	ld := &Loader{
		table:  table,
		reg:    reg,
		log:    logger.NopLogger{},
		loaded: make(map[string]struct{}),
	}
	for _, o := range opts {
		o(ld)
	}
	return ld
}

// Loaded returns the paths loaded so far, in load order.
func (l *Loader) Loaded() []string { return append([]string(nil), l.order...) }

// Load runs the modules named by paths in order. Entries containing glob
// metacharacters expand to every matching provided path, with dots acting
// as separators ("builtin.*", "ext.**"). Already loaded modules are
// skipped. The first failure aborts the remaining entries.
func (l *Loader) Load(ctx context.Context, paths []string) error {
	runID := uuid.NewString()
	l.log.Infof("loading %d startup module entries (run %s)", len(paths), runID)
	for _, entry := range paths {
		targets, err := l.expand(entry)
		if err != nil {
			l.record(metrics.ModuleLoadEvent{RunID: runID, Module: entry, Err: err.Error(), Time: time.Now()})
			return err
		}
		for _, path := range targets {
			if err := l.loadOne(ctx, runID, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *Loader) loadOne(ctx context.Context, runID, path string) (err error) {
	ev := metrics.ModuleLoadEvent{RunID: runID, Module: path, Time: time.Now()}
	defer func() {
		ev.Duration = time.Since(ev.Time)
		if err != nil {
			ev.Err = err.Error()
			l.log.Errorf("%v", err)
		}
		l.record(ev)
	}()

	if err := ctx.Err(); err != nil {
		return &ImportError{Path: path, Err: err}
	}
	if _, ok := l.loaded[path]; ok {
		ev.Skipped = true
		l.log.Debugf("module %s already loaded", path)
		return nil
	}
	fn, ok := l.table.Lookup(path)
	if !ok {
		return &ImportError{Path: path, Err: ErrModuleNotFound}
	}
	if err := run(ctx, fn, l.reg, l.conf[path]); err != nil {
		return &ImportError{Path: path, Err: err}
	}
	l.loaded[path] = struct{}{}
	l.order = append(l.order, path)
	l.log.Infof("module %s loaded", path)
	return nil
}

func run(ctx context.Context, fn ModuleFunc, reg *registrar.Registrar, conf map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r}
		}
	}()
	return fn(ctx, reg, conf)
}

func (l *Loader) expand(entry string) ([]string, error) {
	if !strings.ContainsAny(entry, "*?[{") {
		return []string{entry}, nil
	}
	pattern := strings.ReplaceAll(entry, ".", "/")
	if !doublestar.ValidatePattern(pattern) {
		return nil, &ImportError{Path: entry, Err: doublestar.ErrBadPattern}
	}
	var out []string
	for _, p := range l.table.Paths() {
		ok, err := doublestar.Match(pattern, strings.ReplaceAll(p, ".", "/"))
		if err != nil {
			return nil, &ImportError{Path: entry, Err: err}
		}
		if ok {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil, &ImportError{Path: entry, Err: fmt.Errorf("%w: no module matches pattern", ErrModuleNotFound)}
	}
	return out, nil
}

func (l *Loader) record(ev metrics.ModuleLoadEvent) {
	if l.rec == nil {
		return
	}
	if err := l.rec.RecordModuleLoad(ev); err != nil {
		l.log.Warnf("record module load %s: %v", ev.Module, err)
	}
}
