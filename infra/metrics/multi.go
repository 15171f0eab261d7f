package metrics

import coremetrics "github.com/kilianp07/nsreg/core/metrics"

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.RegistrySink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.RegistrySink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordRegistration forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordRegistration(ev coremetrics.RegistrationEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordRegistration(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordModuleLoad forwards module outcomes to the sinks that record them.
func (m *MultiSink) RecordModuleLoad(ev coremetrics.ModuleLoadEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.ModuleLoadRecorder); ok {
			if err := rec.RecordModuleLoad(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
