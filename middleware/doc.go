// Package middleware exposes HTTP middleware that guards handlers with a
// bearer token verified by goJWT.Service.
//
// # Guards
//
//   - [Guard]: verifies the token against the service's base configuration.
//   - [GuardWith]: verifies with per-route configuration overrides.
//   - [RequireAudience]: shorthand for a route that expects its own audience.
//
// Each guard reads the Authorization header, calls Service.DecodeContext and
// injects the decoded claims into the request context.
//
// # Architecture boundaries
//
// This package translates HTTP semantics into service calls. Every
// verification decision is delegated to DecodeContext.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly.
//   - Echo the token or the failure cause back to the client.
//   - Make authorization decisions beyond pass/reject.
package middleware
