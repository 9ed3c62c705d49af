package goJWT

import "time"

// LintWarning is an advisory finding about a valid Configuration.
type LintWarning struct {
	Code    string
	Message string
}

// LintWarnings is the result of Configuration.Lint.
type LintWarnings []LintWarning

// Codes returns the warning codes in order.
func (ws LintWarnings) Codes() []string {
	out := make([]string, 0, len(ws))
	for _, w := range ws {
		out = append(out, w.Code)
	}
	return out
}

const (
	minHMACSecretBytes = 32
	largeLeeway        = time.Minute
	longLifetime       = time.Hour
)

// Lint reports settings that are valid but risky. It never fails.
func (c Configuration) Lint() LintWarnings {
	var ws LintWarnings

	if c.Algorithm.Symmetric() && len(c.SigningSecretKey) < minHMACSecretBytes {
		ws = append(ws, LintWarning{
			Code:    "hmac_secret_short",
			Message: "HMAC secrets shorter than 256 bits are easy to brute force",
		})
	}
	if c.Algorithm.Symmetric() && c.VerifyingSecretKey != "" {
		ws = append(ws, LintWarning{
			Code:    "verifying_key_ignored",
			Message: "HS algorithms verify with SigningSecretKey; VerifyingSecretKey is unused",
		})
	}
	if c.Algorithm.Symmetric() && c.JWKURL != "" {
		ws = append(ws, LintWarning{
			Code:    "jwk_url_ignored",
			Message: "HS algorithms never consult the remote key set",
		})
	}
	if !c.Algorithm.Symmetric() && c.VerifyingSecretKey == "" && c.JWKURL == "" {
		ws = append(ws, LintWarning{
			Code:    "no_verification_source",
			Message: "asymmetric profile has neither VerifyingSecretKey nor JWKURL; public key is derived from the signing key",
		})
	}
	if c.Leeway > largeLeeway {
		ws = append(ws, LintWarning{
			Code:    "leeway_large",
			Message: "Leeway above one minute widens the replay window of expired tokens",
		})
	}
	if c.Lifetime > longLifetime {
		ws = append(ws, LintWarning{
			Code:    "lifetime_long",
			Message: "token Lifetime above one hour",
		})
	}

	return ws
}
