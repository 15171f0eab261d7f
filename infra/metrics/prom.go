package metrics

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/nsreg/core/metrics"
)

// PromSink records registrations and module loads in Prometheus metrics.
type PromSink struct {
	registrations *prometheus.CounterVec
	modules       *prometheus.CounterVec
	loadDuration  *prometheus.HistogramVec
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	registrations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nsreg_registrations_total",
		Help: "Total number of namespace registrations",
	}, []string{"partition", "replaced"})
	modules := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nsreg_startup_modules_total",
		Help: "Startup module outcomes",
	}, []string{"result"})
	loadDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nsreg_startup_module_duration_seconds",
		Help:    "Time spent running a startup module",
		Buckets: prometheus.DefBuckets,
	}, []string{"module"})

	var err error
	if registrations, err = register(reg, registrations); err != nil {
		return nil, err
	}
	if modules, err = register(reg, modules); err != nil {
		return nil, err
	}
	if loadDuration, err = register(reg, loadDuration); err != nil {
		return nil, err
	}
	return &PromSink{registrations: registrations, modules: modules, loadDuration: loadDuration}, nil
}

// register returns the already registered collector when an identical one
// exists, so several sinks can share a registerer.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordRegistration increments the registration counter.
func (s *PromSink) RecordRegistration(ev coremetrics.RegistrationEvent) error {
	s.registrations.WithLabelValues(ev.Partition.String(), strconv.FormatBool(ev.Replaced)).Inc()
	return nil
}

// RecordModuleLoad counts the module outcome and observes its duration.
func (s *PromSink) RecordModuleLoad(ev coremetrics.ModuleLoadEvent) error {
	result := "loaded"
	switch {
	case ev.Err != "":
		result = "failed"
	case ev.Skipped:
		result = "skipped"
	}
	s.modules.WithLabelValues(result).Inc()
	if result == "loaded" {
		s.loadDuration.WithLabelValues(ev.Module).Observe(ev.Duration.Seconds())
	}
	return nil
}
