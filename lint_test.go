package goJWT

import (
	"testing"
	"time"
)

func TestLint_DefaultWithLongSecretNoWarnings(t *testing.T) {
	ws := hsConfig().Lint()
	if len(ws) != 0 {
		t.Fatalf("expected no warnings, got %v", ws.Codes())
	}
}

func TestLint_ShortHMACSecret(t *testing.T) {
	cfg := hsConfig()
	cfg.SigningSecretKey = "no_secret"
	if !containsCode(cfg.Lint().Codes(), "hmac_secret_short") {
		t.Error("expected hmac_secret_short warning")
	}
}

func TestLint_LargeLeeway(t *testing.T) {
	cfg := hsConfig()
	cfg.Leeway = 90 * time.Second
	if !containsCode(cfg.Lint().Codes(), "leeway_large") {
		t.Error("expected leeway_large warning")
	}
}

func TestLint_LongLifetime(t *testing.T) {
	cfg := hsConfig()
	cfg.Lifetime = 24 * time.Hour
	if !containsCode(cfg.Lint().Codes(), "lifetime_long") {
		t.Error("expected lifetime_long warning")
	}
}

func TestLint_SymmetricIgnoresAsymmetricSources(t *testing.T) {
	cfg := hsConfig()
	cfg.VerifyingSecretKey = "unused"
	cfg.JWKURL = "https://issuer.example.com/jwks.json"
	codes := cfg.Lint().Codes()
	if !containsCode(codes, "verifying_key_ignored") {
		t.Error("expected verifying_key_ignored warning")
	}
	if !containsCode(codes, "jwk_url_ignored") {
		t.Error("expected jwk_url_ignored warning")
	}
}

func TestLint_AsymmetricWithoutVerificationSource(t *testing.T) {
	cfg := Configuration{Algorithm: ES256, SigningSecretKey: "pem", JTIClaim: "jti", Lifetime: time.Minute}
	if !containsCode(cfg.Lint().Codes(), "no_verification_source") {
		t.Error("expected no_verification_source warning")
	}

	cfg.JWKURL = "https://issuer.example.com/jwks.json"
	if containsCode(cfg.Lint().Codes(), "no_verification_source") {
		t.Error("JWKURL is a verification source")
	}
}
