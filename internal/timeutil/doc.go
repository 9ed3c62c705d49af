// Package timeutil provides the UTC clock and epoch conversion used when stamping
// time-based claims.
//
// # Rules
//
//   - Every instant handed to the claim builder is in UTC.
//   - Epoch values are whole seconds computed with calendar (UTC) semantics, never local time.
//   - An ambiguous local wall time (DST fold) resolves to the earliest matching instant.
//
// # What this package must NOT do
//
//   - Read time.Local implicitly when converting to epoch seconds.
//   - Import goJWT or any sibling package.
package timeutil
