// Package metrics provides the Prometheus implementation of the registry
// sinks, a MultiSink to combine sinks, and the /metrics HTTP endpoint.
package metrics
