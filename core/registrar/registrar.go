// Package registrar turns the namespace into a registration surface.
// Register returns a decorator: a func(T) T that stores its argument at a
// dotted path and hands it back untouched, so the registered value keeps
// its identity at the definition site.
//
//	addOne := registrar.RegisterAPI[func(int) int]("fns.add_one")(func(x int) int { return x + 1 })
//
// Decorators cannot return errors, so an insertion failure panics, the
// same way database/sql.Register does for init-time registration. Use
// Registrar.Insert where an error value is preferred.
package registrar

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/nsreg/core/logger"
	"github.com/kilianp07/nsreg/core/metrics"
	"github.com/kilianp07/nsreg/core/namespace"
	"github.com/kilianp07/nsreg/internal/eventbus"
)

// Decorator registers its argument and returns it unchanged.
type Decorator[T any] func(T) T

// Option configures a Registrar.
type Option func(*Registrar)

// WithLogger sets the logger used for registration messages.
func WithLogger(l logger.Logger) Option {
	return func(r *Registrar) {
		if l != nil {
			r.log = l
		}
	}
}

// WithSink records every registration on s.
func WithSink(s metrics.RegistrySink) Option {
	return func(r *Registrar) {
		if s != nil {
			r.sink = s
		}
	}
}

// WithBus publishes every registration on b.
func WithBus(b *eventbus.Bus[metrics.RegistrationEvent]) Option {
	return func(r *Registrar) { r.bus = b }
}

// Registrar inserts values into a namespace and reports each insertion.
type Registrar struct {
	ns   *namespace.Namespace
	log  logger.Logger
	sink metrics.RegistrySink
	bus  *eventbus.Bus[metrics.RegistrationEvent]
}

// New returns a Registrar writing to ns.
func New(ns *namespace.Namespace, opts ...Option) *Registrar {
	r := &Registrar{ns: ns, log: logger.NopLogger{}, sink: metrics.NopSink{}}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Namespace returns the namespace the registrar writes to.
func (r *Registrar) Namespace() *namespace.Namespace { return r.ns }

// Insert stores v at name below partition p.
func (r *Registrar) Insert(p namespace.Partition, name string, v any) error {
	replaced, err := r.ns.Put(p, name, v)
	if err != nil {
		return fmt.Errorf("register %s.%s: %w", p, name, err)
	}
	ev := metrics.RegistrationEvent{
		ID:        uuid.NewString(),
		Partition: p,
		Path:      name,
		Type:      namespace.Describe(v),
		Replaced:  replaced,
		Time:      time.Now(),
	}
	r.log.Debugw("registered", map[string]any{
		"partition": p.String(),
		"path":      name,
		"type":      ev.Type,
		"replaced":  replaced,
	})
	if err := r.sink.RecordRegistration(ev); err != nil {
		r.log.Warnf("record registration %s.%s: %v", p, name, err)
	}
	if r.bus != nil {
		r.bus.Publish(ev)
	}
	return nil
}

// Register returns a decorator storing its argument at name below p.
func Register[T any](r *Registrar, p namespace.Partition, name string) Decorator[T] {
	return func(obj T) T {
		if err := r.Insert(p, name, obj); err != nil {
			panic(err)
		}
		return obj
	}
}
