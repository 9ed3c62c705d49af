package goJWT

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestSetupFromHostMapConfig(t *testing.T) {
	host := MapConfig{
		"JWT_CONFIG": map[string]any{
			"algorithm":          "HS256",
			"signing_secret_key": "no_secret",
			"issuer":             "https://ellar.com",
			"lifetime":           30 * time.Minute,
			"leeway":             nil,
		},
	}

	svc, err := SetupFromHost(host)
	if err != nil {
		t.Fatalf("SetupFromHost failed: %v", err)
	}
	defer svc.Close()

	cfg := svc.Configuration()
	if cfg.Issuer != "https://ellar.com" || cfg.Lifetime != 30*time.Minute || cfg.Leeway != 0 {
		t.Fatalf("unexpected configuration %+v", cfg)
	}

	token, err := svc.Sign(map[string]any{"sub": 23}, nil, Overrides{})
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}
	claims, err := svc.Decode(token, true, Overrides{})
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if claims["sub"] != int64(23) {
		t.Fatalf("expected sub=23, got %#v", claims["sub"])
	}
}

func TestSetupFromHostMissingBlock(t *testing.T) {
	cases := []struct {
		name string
		host HostConfig
	}{
		{name: "nil host", host: nil},
		{name: "no block", host: MapConfig{"OTHER": 1}},
		{name: "empty block", host: MapConfig{"JWT_CONFIG": map[string]any{}}},
		{name: "wrong block type", host: MapConfig{"JWT_CONFIG": "HS256"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc, err := SetupFromHost(tc.host)
			if svc != nil {
				t.Fatal("no service may be returned without a config block")
			}
			if !errors.Is(err, ErrSetup) {
				t.Fatalf("expected ErrSetup, got %v", err)
			}
			if !strings.Contains(err.Error(), "could not find `JWT_CONFIG` in application config") {
				t.Fatalf("unexpected message %q", err.Error())
			}
		})
	}
}

func TestSetupFromHostInvalidValues(t *testing.T) {
	cases := []map[string]any{
		{"signing_secret_key": "s", "algorithm": "HS999"},
		{"signing_secret_key": 42},
		{"signing_secret_key": "s", "leeway": "later"},
		{"algorithm": "HS256"},
	}

	for _, block := range cases {
		_, err := SetupFromHost(MapConfig{"JWT_CONFIG": block})
		if !errors.Is(err, ErrConfigValidation) {
			t.Fatalf("block %v: expected ErrConfigValidation, got %v", block, err)
		}
		if errors.Is(err, ErrSetup) {
			t.Fatalf("block %v: invalid values are not a missing block", block)
		}
	}
}

func TestConfigurationFromBlockAcceptsStrings(t *testing.T) {
	cfg, err := ConfigurationFromBlock(map[string]any{
		"algorithm":          "hs512",
		"signing_secret_key": testSecret,
		"audience":           "client-id",
		"leeway":             "15",
		"lifetime":           "1h",
		"jti":                "token_id",
	})
	if err != nil {
		t.Fatalf("ConfigurationFromBlock failed: %v", err)
	}
	if cfg.Algorithm != HS512 {
		t.Fatalf("expected HS512, got %s", cfg.Algorithm)
	}
	if cfg.Leeway != 15*time.Second || cfg.Lifetime != time.Hour {
		t.Fatalf("unexpected durations leeway=%v lifetime=%v", cfg.Leeway, cfg.Lifetime)
	}
	if cfg.JTIClaim != "token_id" || cfg.Audience != "client-id" {
		t.Fatalf("unexpected configuration %+v", cfg)
	}
}

func TestConfigurationFromBlockNumericLifetime(t *testing.T) {
	cfg, err := ConfigurationFromBlock(map[string]any{
		"signing_secret_key": testSecret,
		"lifetime":           1800,
		"leeway":             2.5,
	})
	if err != nil {
		t.Fatalf("ConfigurationFromBlock failed: %v", err)
	}
	if cfg.Lifetime != 30*time.Minute {
		t.Fatalf("expected 30m lifetime, got %v", cfg.Lifetime)
	}
	if cfg.Leeway != 2500*time.Millisecond {
		t.Fatalf("expected 2.5s leeway, got %v", cfg.Leeway)
	}
}

func TestEnvConfig(t *testing.T) {
	t.Setenv("JWT_SIGNING_SECRET_KEY", testSecret)
	t.Setenv("JWT_ALGORITHM", "HS384")
	t.Setenv("JWT_ISSUER", "https://example.com")
	t.Setenv("JWT_LEEWAY", "5s")
	t.Setenv("JWT_LIFETIME", "600")

	cfg, err := ConfigurationFromHost(EnvConfig{})
	if err != nil {
		t.Fatalf("ConfigurationFromHost failed: %v", err)
	}
	if cfg.Algorithm != HS384 || cfg.Issuer != "https://example.com" {
		t.Fatalf("unexpected configuration %+v", cfg)
	}
	if cfg.Leeway != 5*time.Second || cfg.Lifetime != 10*time.Minute {
		t.Fatalf("unexpected durations leeway=%v lifetime=%v", cfg.Leeway, cfg.Lifetime)
	}
}

func TestEnvConfigCustomPrefixMissingSigningKey(t *testing.T) {
	t.Setenv("AUTHZ_ALGORITHM", "HS256")

	_, err := SetupFromHost(EnvConfig{Prefix: "AUTHZ"})
	if !errors.Is(err, ErrSetup) {
		t.Fatalf("expected ErrSetup without AUTHZ_SIGNING_SECRET_KEY, got %v", err)
	}

	if _, ok := (EnvConfig{Prefix: "AUTHZ"}).Lookup("SOMETHING_ELSE"); ok {
		t.Fatal("EnvConfig only serves the JWT_CONFIG key")
	}
}
