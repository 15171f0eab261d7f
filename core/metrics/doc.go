// Package metrics defines the sinks that observe the registry. A
// RegistrySink sees every insertion made through a registrar; sinks that
// also implement ModuleLoadRecorder see the outcome of each startup module.
// MemorySink keeps plain counters, the Prometheus sink lives in
// infra/metrics and several sinks can be combined with its MultiSink.
package metrics
