// Package infra contains technical adapters such as the zerolog logger
// and the Prometheus exporter. These packages depend only on the
// interfaces defined in the core packages.
package infra
