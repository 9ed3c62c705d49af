package goJWT

import (
	"strings"

	"github.com/MrEthical07/goJWT/jwt"
)

// Algorithm names a JWS signing algorithm.
type Algorithm string

const (
	HS256 Algorithm = "HS256"
	HS384 Algorithm = "HS384"
	HS512 Algorithm = "HS512"
	RS256 Algorithm = "RS256"
	RS384 Algorithm = "RS384"
	RS512 Algorithm = "RS512"
	ES256 Algorithm = "ES256"
	ES384 Algorithm = "ES384"
	ES512 Algorithm = "ES512"
)

var supportedAlgorithms = []Algorithm{HS256, HS384, HS512, RS256, RS384, RS512, ES256, ES384, ES512}

// SupportedAlgorithms returns the closed set of algorithms a Configuration accepts.
func SupportedAlgorithms() []Algorithm {
	out := make([]Algorithm, len(supportedAlgorithms))
	copy(out, supportedAlgorithms)
	return out
}

// Symmetric reports whether a is an HMAC algorithm.
func (a Algorithm) Symmetric() bool {
	return strings.HasPrefix(string(a), "HS")
}

// Valid reports whether a belongs to the supported set.
func (a Algorithm) Valid() bool {
	for _, alg := range supportedAlgorithms {
		if alg == a {
			return true
		}
	}
	return false
}

func (a Algorithm) String() string {
	return string(a)
}

// asymmetricBackend reports whether the signing backend can handle an
// asymmetric algorithm. Replaced in tests to simulate a missing backend.
var asymmetricBackend = func(alg Algorithm) bool {
	return jwt.Supported(string(alg)) && !jwt.Symmetric(string(alg))
}

func backendSupports(alg Algorithm) bool {
	if alg.Symmetric() {
		return jwt.Supported(string(alg))
	}
	return asymmetricBackend(alg)
}
