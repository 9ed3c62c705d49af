// Package jwks resolves verification keys from a remote JSON Web Key Set.
//
// A [Client] fetches the set from a URL, parses it with go-jose, and looks keys up
// by the "kid" header of the token being verified. Fetched sets are kept in a
// [Cache] ([MemoryCache] by default, [RedisCache] for sharing across processes) and
// concurrent fetches of the same URL are collapsed into one request.
//
// # Refresh policy
//
//   - A cached set is served until its TTL elapses.
//   - An unknown kid triggers one forced refetch, rate limited by MinRefreshInterval.
//   - Fetch timeouts belong to the supplied *http.Client.
//
// # What this package must NOT do
//
//   - Verify signatures or claims (see package jwt).
//   - Rotate, generate or revoke keys.
//   - Distinguish failure causes to goJWT callers; goJWT collapses every lookup error.
package jwks
