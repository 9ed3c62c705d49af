// Package internal holds helpers that are private to goJWT.
//
// # Sub-packages
//
//   - audit: async event dispatch (Dispatcher + Sink implementations)
//   - timeutil: replaceable clock and UTC/epoch conversions
//   - workers: bounded worker pool behind the async sign/decode calls
//
// # What this package must NOT do
//
//   - Export types that appear in the public goJWT API.
//   - Be imported by any package outside the goJWT module.
package internal
