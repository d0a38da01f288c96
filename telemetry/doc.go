// Package telemetry adds optional OpenTelemetry instrumentation around a
// memory store. The engine itself performs no I/O, so observability is a
// wrapper concern: hosts that want metrics and traces instrument a store,
// hosts that do not keep using the plain one.
//
// All instrumentation degrades to a silent no-op when no providers are
// configured.
package telemetry
