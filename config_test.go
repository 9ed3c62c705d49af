package goJWT

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestNewConfigurationAppliesDefaults(t *testing.T) {
	cfg, err := NewConfiguration(Configuration{SigningSecretKey: testSecret})
	if err != nil {
		t.Fatalf("NewConfiguration failed: %v", err)
	}
	if cfg.Algorithm != HS256 {
		t.Fatalf("expected HS256 default, got %s", cfg.Algorithm)
	}
	if cfg.JTIClaim != "jti" {
		t.Fatalf("expected jti default, got %q", cfg.JTIClaim)
	}
	if cfg.Lifetime != 5*time.Minute {
		t.Fatalf("expected 5m default lifetime, got %v", cfg.Lifetime)
	}
	if cfg.Leeway != 0 {
		t.Fatalf("expected zero leeway, got %v", cfg.Leeway)
	}
}

func TestConfigurationValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Configuration)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(*Configuration) {},
			wantValid: true,
		},
		{
			name: "every supported algorithm valid",
			mutate: func(c *Configuration) {
				c.Algorithm = ES512
			},
			wantValid: true,
		},
		{
			name: "unknown algorithm invalid",
			mutate: func(c *Configuration) {
				c.Algorithm = "HS1024"
			},
			wantValid: false,
		},
		{
			name: "none algorithm invalid",
			mutate: func(c *Configuration) {
				c.Algorithm = "none"
			},
			wantValid: false,
		},
		{
			name: "lowercase algorithm invalid",
			mutate: func(c *Configuration) {
				c.Algorithm = "hs256"
			},
			wantValid: false,
		},
		{
			name: "missing signing key invalid",
			mutate: func(c *Configuration) {
				c.SigningSecretKey = ""
			},
			wantValid: false,
		},
		{
			name: "https jwk url valid",
			mutate: func(c *Configuration) {
				c.JWKURL = "https://issuer.example.com/.well-known/jwks.json"
			},
			wantValid: true,
		},
		{
			name: "relative jwk url invalid",
			mutate: func(c *Configuration) {
				c.JWKURL = "/jwks.json"
			},
			wantValid: false,
		},
		{
			name: "ftp jwk url invalid",
			mutate: func(c *Configuration) {
				c.JWKURL = "ftp://issuer.example.com/jwks.json"
			},
			wantValid: false,
		},
		{
			name: "negative leeway invalid",
			mutate: func(c *Configuration) {
				c.Leeway = -time.Second
			},
			wantValid: false,
		},
		{
			name: "zero lifetime invalid",
			mutate: func(c *Configuration) {
				c.Lifetime = 0
			},
			wantValid: false,
		},
		{
			name: "blank jti claim invalid",
			mutate: func(c *Configuration) {
				c.JTIClaim = "  "
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := hsConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.wantValid {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrConfigValidation) {
					t.Fatalf("expected ErrConfigValidation, got %v", err)
				}
			}
		})
	}
}

func TestNewConfigurationRS256RequiresAsymmetricBackend(t *testing.T) {
	_, priv, pub := testRSAKey(t)
	cfg := Configuration{
		Algorithm:          RS256,
		SigningSecretKey:   priv,
		VerifyingSecretKey: pub,
	}

	if _, err := NewConfiguration(cfg); err != nil {
		t.Fatalf("RS256 with backend available should succeed: %v", err)
	}

	prev := asymmetricBackend
	asymmetricBackend = func(Algorithm) bool { return false }
	t.Cleanup(func() { asymmetricBackend = prev })

	_, err := NewConfiguration(cfg)
	if !errors.Is(err, ErrConfigValidation) {
		t.Fatalf("expected ErrConfigValidation without backend, got %v", err)
	}

	if _, err := NewConfiguration(hsConfig()); err != nil {
		t.Fatalf("HS256 must not depend on the asymmetric backend: %v", err)
	}
}

func TestMergeDoesNotMutateBase(t *testing.T) {
	base := hsConfig()
	base.Audience = "client-id"

	merged, err := Merge(base, Overrides{
		Audience: Ptr("other"),
		Lifetime: Ptr(time.Hour),
		Issuer:   Ptr("https://example.com"),
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if merged.Audience != "other" || merged.Lifetime != time.Hour || merged.Issuer != "https://example.com" {
		t.Fatalf("overrides not applied: %+v", merged)
	}
	if base.Audience != "client-id" || base.Lifetime != DefaultLifetime || base.Issuer != "" {
		t.Fatalf("base mutated: %+v", base)
	}
	if merged.SigningSecretKey != base.SigningSecretKey {
		t.Fatal("unset override fields must come from base")
	}
}

func TestMergeRevalidates(t *testing.T) {
	_, err := Merge(hsConfig(), Overrides{Algorithm: Ptr(Algorithm("XX999"))})
	if !errors.Is(err, ErrConfigValidation) {
		t.Fatalf("expected ErrConfigValidation, got %v", err)
	}

	_, err = Merge(hsConfig(), Overrides{Leeway: Ptr(-time.Second)})
	if !errors.Is(err, ErrConfigValidation) {
		t.Fatalf("expected ErrConfigValidation for negative leeway, got %v", err)
	}

	zeroed := map[string]Overrides{
		"lifetime":  {Lifetime: Ptr(time.Duration(0))},
		"algorithm": {Algorithm: Ptr(Algorithm(""))},
		"jti claim": {JTIClaim: Ptr("")},
		"signing":   {SigningSecretKey: Ptr("")},
	}
	for name, o := range zeroed {
		if _, err := Merge(hsConfig(), o); !errors.Is(err, ErrConfigValidation) {
			t.Fatalf("%s: expected ErrConfigValidation for zero override, got %v", name, err)
		}
	}
}

func TestMergeFillsDefaultsOnlyForBase(t *testing.T) {
	merged, err := Merge(Configuration{SigningSecretKey: testSecret}, Overrides{Issuer: Ptr("iss")})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Algorithm != HS256 || merged.Lifetime != DefaultLifetime || merged.JTIClaim != DefaultJTIClaim {
		t.Fatalf("expected defaults on base fields, got %+v", merged)
	}
	if merged.Issuer != "iss" {
		t.Fatalf("override not applied: %q", merged.Issuer)
	}
}

func TestMergeEmptyStringClearsOptionalField(t *testing.T) {
	base := hsConfig()
	base.Audience = "client-id"

	merged, err := Merge(base, Overrides{Audience: Ptr("")})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if merged.Audience != "" {
		t.Fatalf("expected audience cleared, got %q", merged.Audience)
	}
}

func TestOverridesIsZero(t *testing.T) {
	if !(Overrides{}).IsZero() {
		t.Fatal("empty overrides must be zero")
	}
	if (Overrides{Issuer: Ptr("")}).IsZero() {
		t.Fatal("a set pointer is not zero even when it points at an empty string")
	}
	enc := func(any) ([]byte, error) { return nil, nil }
	if (Overrides{PayloadEncoder: enc}).IsZero() {
		t.Fatal("encoder override is not zero")
	}
}

func TestNormalizeLeeway(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want time.Duration
	}{
		{name: "nil", in: nil, want: 0},
		{name: "int seconds", in: 10, want: 10 * time.Second},
		{name: "int64 seconds", in: int64(3), want: 3 * time.Second},
		{name: "float seconds", in: 1.5, want: 1500 * time.Millisecond},
		{name: "duration", in: 250 * time.Millisecond, want: 250 * time.Millisecond},
		{name: "duration string", in: "2m", want: 2 * time.Minute},
		{name: "numeric string", in: "30", want: 30 * time.Second},
		{name: "blank string", in: " ", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeLeeway(tt.in)
			if err != nil {
				t.Fatalf("NormalizeLeeway(%v) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Fatalf("NormalizeLeeway(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalizeLeewayRejectsGarbage(t *testing.T) {
	for _, in := range []any{"soon", true, []int{1}} {
		if _, err := NormalizeLeeway(in); !errors.Is(err, ErrConfigValidation) {
			t.Fatalf("NormalizeLeeway(%v): expected ErrConfigValidation, got %v", in, err)
		}
	}
}

func TestNormalizeLeewayRejectsOverflow(t *testing.T) {
	for _, in := range []any{
		int64(math.MaxInt64),
		int64(math.MinInt64),
		uint64(math.MaxUint64),
		int64(1 << 34),
		uint(1 << 40),
		1e10,
		"1e300",
	} {
		if d, err := NormalizeLeeway(in); !errors.Is(err, ErrConfigValidation) {
			t.Fatalf("NormalizeLeeway(%v) = %v, %v; expected ErrConfigValidation", in, d, err)
		}
	}

	// The largest representable whole-second value still converts.
	limit := int64(math.MaxInt64 / int64(time.Second))
	if d, err := NormalizeLeeway(limit); err != nil || d != time.Duration(limit)*time.Second {
		t.Fatalf("NormalizeLeeway(%d) = %v, %v", limit, d, err)
	}
}

func TestConfigurationFromBlockRejectsOverflowingLifetime(t *testing.T) {
	_, err := ConfigurationFromBlock(map[string]any{
		"signing_secret_key": testSecret,
		"lifetime":           uint64(1 << 63),
	})
	if !errors.Is(err, ErrConfigValidation) {
		t.Fatalf("expected ErrConfigValidation, got %v", err)
	}
}

func TestAlgorithmHelpers(t *testing.T) {
	if len(SupportedAlgorithms()) != 9 {
		t.Fatalf("expected 9 algorithms, got %d", len(SupportedAlgorithms()))
	}
	algs := SupportedAlgorithms()
	algs[0] = "tampered"
	if SupportedAlgorithms()[0] != HS256 {
		t.Fatal("SupportedAlgorithms must return a copy")
	}
	if !HS384.Symmetric() || RS256.Symmetric() || ES256.Symmetric() {
		t.Fatal("Symmetric reports the HS family only")
	}
	if Algorithm("PS256").Valid() {
		t.Fatal("PS256 is outside the supported set")
	}
}
