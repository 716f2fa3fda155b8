// Package metrics defines the observability events emitted by the simulation
// driver and the sink interfaces that record them. Concrete sinks live in
// infra/metrics and register themselves with the factory registry.
package metrics
