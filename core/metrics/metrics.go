package metrics

import (
	"time"

	"github.com/kilianp07/nsreg/core/namespace"
)

// RegistrationEvent describes one insertion into the namespace.
type RegistrationEvent struct {
	ID        string
	Partition namespace.Partition
	Path      string
	Type      string
	Replaced  bool
	Time      time.Time
}

// RegistrySink records registrations for observability purposes.
type RegistrySink interface {
	RecordRegistration(ev RegistrationEvent) error
}

// ModuleLoadEvent captures the outcome of running one startup module.
type ModuleLoadEvent struct {
	RunID    string
	Module   string
	Skipped  bool
	Err      string
	Duration time.Duration
	Time     time.Time
}

// ModuleLoadRecorder records startup module loads.
type ModuleLoadRecorder interface {
	RecordModuleLoad(ev ModuleLoadEvent) error
}

// NopSink discards every event.
type NopSink struct{}

func (NopSink) RecordRegistration(RegistrationEvent) error { return nil }
func (NopSink) RecordModuleLoad(ModuleLoadEvent) error     { return nil }
