// Package observability provides metrics recorders and tracers for editing
// sessions and the profile backend: Prometheus and OpenTelemetry for
// deployments, expvar and JSON-lines exporters for process-local inspection.
package observability
