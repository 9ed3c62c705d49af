// Package prometheus renders goJWT metrics in Prometheus text exposition format.
//
// [NewPrometheusExporter] accepts a [goJWT.Service] and exposes an [http.Handler].
// Sign and decode results share gojwt_tokens_total, split by the operation and
// outcome labels; audit drops carry an event_type label; decode latency is the
// gojwt_decode_latency_seconds histogram with its sum and count.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate service state.
package prometheus
