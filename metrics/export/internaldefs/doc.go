// Package internaldefs turns a token service's metrics snapshot into the
// metric families both exporters publish.
//
// [Collect] groups the sign and decode counters into gojwt_tokens_total with
// operation and outcome labels, reports audit drops per event type and
// carries the decode latency histogram with its sum. Exporters only decide
// how to write the families out.
//
// # What this package must NOT do
//
//   - Import any exporter package.
//   - Perform I/O.
package internaldefs
