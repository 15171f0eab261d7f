package app

import (
	"context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kilianp07/nsreg/config"
	"github.com/kilianp07/nsreg/core/loader"
	coremetrics "github.com/kilianp07/nsreg/core/metrics"
	"github.com/kilianp07/nsreg/core/namespace"
	"github.com/kilianp07/nsreg/core/registrar"
	"github.com/kilianp07/nsreg/infra/logger"
	"github.com/kilianp07/nsreg/infra/metrics"
	"github.com/kilianp07/nsreg/internal/eventbus"
)

// Option configures a Service.
type Option func(*Service)

// WithTable runs startup modules from t instead of loader.DefaultTable.
func WithTable(t *loader.Table) Option {
	return func(s *Service) { s.table = t }
}

// WithNamespace fills ns instead of the process-wide namespace behind
// registrar.Default. The service then leaves the default registrar alone.
func WithNamespace(ns *namespace.Namespace) Option {
	return func(s *Service) { s.ns = ns }
}

// WithLogOutput sends logs to w.
func WithLogOutput(w io.Writer) Option {
	return func(s *Service) { s.logOut = w }
}

// Service owns the namespace and populates it from configuration.
type Service struct {
	cfg    *config.Config
	table  *loader.Table
	logOut io.Writer

	log    *logger.ZerologLogger
	ns     *namespace.Namespace
	reg    *registrar.Registrar
	loader *loader.Loader
	stats  *coremetrics.MemorySink
	bus    *eventbus.Bus[coremetrics.RegistrationEvent]
	prom   *prometheus.Registry

	// prevDefault is the registrar this service replaced as the process
	// default, nil when it runs over its own namespace.
	prevDefault *registrar.Registrar
}

// New creates a Service from the configuration. Nothing is registered
// until Start runs. Unless WithNamespace is given, the service fills the
// namespace behind registrar.Default and installs its own registrar as the
// default, so RegisterAPI and the API handle see the same entries as
// startup modules.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{cfg: cfg, table: loader.DefaultTable}
	for _, o := range opts {
		o(s)
	}
	logg, err := logger.NewWithOptions("service", logger.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Out:    s.logOut,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	s.log = logg

	s.stats = coremetrics.NewMemorySink()
	var sink coremetrics.RegistrySink = s.stats
	if cfg.Metrics.Enabled {
		s.prom = prometheus.NewRegistry()
		prom, err := metrics.NewPromSinkWithRegistry(s.prom)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sink = metrics.NewMultiSink(s.stats, prom)
	}

	shared := s.ns == nil
	if shared {
		s.ns = registrar.Default().Namespace()
	}
	if cfg.Registry.Strict {
		s.ns.SetStrict(true)
	}

	s.bus = eventbus.New[coremetrics.RegistrationEvent](eventbus.DefaultBuffer)
	s.reg = registrar.New(s.ns,
		registrar.WithLogger(logg.With("registrar")),
		registrar.WithSink(sink),
		registrar.WithBus(s.bus),
	)
	var rec coremetrics.ModuleLoadRecorder = s.stats
	if r, ok := sink.(coremetrics.ModuleLoadRecorder); ok {
		rec = r
	}
	s.loader = loader.New(s.table, s.reg,
		loader.WithLogger(logg.With("loader")),
		loader.WithRecorder(rec),
		loader.WithModuleConf(cfg.Registry.ModuleConf()),
	)
	if shared {
		s.prevDefault = registrar.SetDefault(s.reg)
	}
	return s, nil
}

// Start runs the configured import_on_start modules. A failure aborts
// startup and is returned unchanged apart from context.
func (s *Service) Start(ctx context.Context) error {
	if err := s.loader.Load(ctx, s.cfg.Registry.ImportOnStart); err != nil {
		return fmt.Errorf("import on start: %w", err)
	}
	st := s.stats.Snapshot()
	s.log.Infof("namespace ready: %d modules, %d registrations (%d replaced)",
		st.ModulesLoaded, st.Registrations, st.Replacements)
	return nil
}

// Run blocks until the context is cancelled, serving metrics when enabled.
// Registrations made while running are logged.
func (s *Service) Run(ctx context.Context) error {
	done := watchRegistrations(ctx, s.bus, s.log.With("watch"))
	defer func() { <-done }()
	if s.prom != nil {
		return metrics.StartPromServer(ctx, s.cfg.Metrics.Addr, s.prom, s.log.With("metrics"))
	}
	<-ctx.Done()
	return nil
}

// Subscribe returns a channel receiving every later registration.
func (s *Service) Subscribe() <-chan coremetrics.RegistrationEvent { return s.bus.Subscribe() }

// Namespace returns the populated namespace.
func (s *Service) Namespace() *namespace.Namespace { return s.ns }

// Registrar returns the registrar writing to the namespace.
func (s *Service) Registrar() *registrar.Registrar { return s.reg }

// Loaded returns the startup modules loaded so far.
func (s *Service) Loaded() []string { return s.loader.Loaded() }

// Stats returns the registration counters.
func (s *Service) Stats() coremetrics.Stats { return s.stats.Snapshot() }

// Close releases resources held by the service and hands the process
// default back to the registrar it replaced. Entries stay in the namespace.
func (s *Service) Close() error {
	if s.prevDefault != nil && registrar.Default() == s.reg {
		registrar.SetDefault(s.prevDefault)
		s.prevDefault = nil
	}
	s.bus.Close()
	return nil
}
