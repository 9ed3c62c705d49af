// Package jwt is the cryptographic primitive behind goJWT. It encodes claim sets
// into compact JWS strings and verifies/parses them back, delegating every
// signature operation to github.com/golang-jwt/jwt/v5.
//
// # Error contract
//
// Decode reports exactly two failure classes:
//
//   - [ErrInvalidAlgorithm]: the token header names an algorithm outside the allowed set.
//   - [ErrInvalidToken]: every other failure, such as a bad signature, expiry,
//     audience or issuer mismatch, malformed input or an unusable key.
//
// The underlying library error stays wrapped for operators; callers are expected to
// collapse it further before exposing it.
//
// # What this package must NOT do
//
//   - Resolve keys remotely (see package jwks).
//   - Accept a token whose header algorithm differs from the configured one.
package jwt
