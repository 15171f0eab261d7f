package metrics

import "sync"

// Stats is a point-in-time summary kept by MemorySink.
type Stats struct {
	Registrations  int
	Replacements   int
	PerPartition   map[string]int
	ModulesLoaded  int
	ModulesSkipped int
	ModuleFailures int
}

// MemorySink keeps counters in memory. It backs the CLI summary and tests.
type MemorySink struct {
	mu    sync.Mutex
	stats Stats
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{stats: Stats{PerPartition: map[string]int{}}}
}

// RecordRegistration counts the registration against its partition.
func (s *MemorySink) RecordRegistration(ev RegistrationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats.Registrations++
	if ev.Replaced {
		s.stats.Replacements++
	}
	s.stats.PerPartition[ev.Partition.String()]++
	return nil
}

// RecordModuleLoad counts loaded, skipped and failed modules.
func (s *MemorySink) RecordModuleLoad(ev ModuleLoadEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch {
	case ev.Err != "":
		s.stats.ModuleFailures++
	case ev.Skipped:
		s.stats.ModulesSkipped++
	default:
		s.stats.ModulesLoaded++
	}
	return nil
}

// Snapshot returns a copy of the current counters.
func (s *MemorySink) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.stats
	out.PerPartition = make(map[string]int, len(s.stats.PerPartition))
	for k, v := range s.stats.PerPartition {
		out.PerPartition[k] = v
	}
	return out
}
