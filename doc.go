// Package goJWT signs and verifies JSON Web Tokens for one configured token
// profile: algorithm, keys, audience, issuer, leeway and lifetime.
//
// A [Service] is created once through [Builder.Build], [Setup] or
// [SetupFromHost] and is safe to call from multiple goroutines. Every call may
// carry [Overrides] that are merged into a fresh [Configuration] for that call
// only; the base configuration never changes after construction.
//
// # Architecture boundaries
//
// goJWT is the public surface. Cryptography lives in the jwt sub-package and
// remote key sets in jwks. Audit dispatch, the async worker pool and the clock
// live under internal/ and are never exported.
//
// # Error contract
//
// Decode rejects a token with a [*TokenError] whose message is one of two
// fixed strings: [MessageInvalidAlgorithm] when the token names an algorithm
// other than the configured one, [MessageTokenInvalid] for everything else.
// Match with errors.Is against [ErrInvalidAlgorithm] or [ErrTokenInvalid].
// Configuration problems wrap [ErrConfigValidation]; a missing host block
// wraps [ErrSetup].
//
// # What this package must NOT do
//
//   - Log or return key material or raw tokens.
//   - Accept a token whose header names an algorithm other than the configured one.
//   - Mutate a caller's payload map.
package goJWT
