// Package otel binds goJWT metrics to OpenTelemetry observable instruments.
//
// [NewOTelExporter] registers one Int64ObservableCounter per counter family.
// Sign and decode results share gojwt_tokens_total with operation and
// outcome attributes, and audit drops carry an event_type attribute. A single
// callback reads the service on each collection cycle.
//
// # What this package must NOT do
//
//   - Own the OTel MeterProvider. Callers supply the Meter.
//   - Mutate service state.
package otel
