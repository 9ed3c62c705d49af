package goJWT

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// HostConfigKey is the key under which an application stores the JWT block.
const HostConfigKey = "JWT_CONFIG"

// Keys recognized inside the host configuration block.
const (
	blockAlgorithm          = "algorithm"
	blockSigningSecretKey   = "signing_secret_key"
	blockVerifyingSecretKey = "verifying_secret_key"
	blockAudience           = "audience"
	blockIssuer             = "issuer"
	blockJWKURL             = "jwk_url"
	blockLeeway             = "leeway"
	blockJTI                = "jti"
	blockLifetime           = "lifetime"
)

// HostConfig is the application configuration the service is set up from.
type HostConfig interface {
	Lookup(key string) (any, bool)
}

// MapConfig is a HostConfig backed by a plain map.
type MapConfig map[string]any

func (m MapConfig) Lookup(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// EnvConfig is a HostConfig that assembles the JWT block from environment
// variables named Prefix + "_ALGORITHM", Prefix + "_SIGNING_SECRET_KEY" and so
// on. The block exists only when the signing key variable is set. An empty
// Prefix means "JWT".
type EnvConfig struct {
	Prefix string
}

func (e EnvConfig) Lookup(key string) (any, bool) {
	if key != HostConfigKey {
		return nil, false
	}

	prefix := e.Prefix
	if prefix == "" {
		prefix = "JWT"
	}
	name := func(suffix string) string {
		return prefix + "_" + suffix
	}

	signing, ok := os.LookupEnv(name("SIGNING_SECRET_KEY"))
	if !ok {
		return nil, false
	}

	block := map[string]any{blockSigningSecretKey: signing}
	setIfPresent(block, blockAlgorithm, name("ALGORITHM"))
	setIfPresent(block, blockVerifyingSecretKey, name("VERIFYING_SECRET_KEY"))
	setIfPresent(block, blockAudience, name("AUDIENCE"))
	setIfPresent(block, blockIssuer, name("ISSUER"))
	setIfPresent(block, blockJWKURL, name("JWK_URL"))
	setIfPresent(block, blockLeeway, name("LEEWAY"))
	setIfPresent(block, blockJTI, name("JTI"))
	setIfPresent(block, blockLifetime, name("LIFETIME"))
	return block, true
}

func setIfPresent(block map[string]any, key, env string) {
	if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
		block[key] = v
	}
}

// ConfigurationFromHost reads the JWT block from host and builds a validated
// Configuration. A missing or malformed block yields an error wrapping ErrSetup;
// invalid values inside the block yield ErrConfigValidation.
func ConfigurationFromHost(host HostConfig) (Configuration, error) {
	if host == nil {
		return Configuration{}, missingHostBlock()
	}
	raw, ok := host.Lookup(HostConfigKey)
	if !ok || raw == nil {
		return Configuration{}, missingHostBlock()
	}

	var block map[string]any
	switch v := raw.(type) {
	case map[string]any:
		block = v
	case MapConfig:
		block = v
	case map[string]string:
		block = make(map[string]any, len(v))
		for k, s := range v {
			block[k] = s
		}
	default:
		return Configuration{}, missingHostBlock()
	}
	if len(block) == 0 {
		return Configuration{}, missingHostBlock()
	}

	return ConfigurationFromBlock(block)
}

func missingHostBlock() error {
	return fmt.Errorf("%w: could not find `%s` in application config", ErrSetup, HostConfigKey)
}

// ConfigurationFromBlock converts a host configuration block into a validated
// Configuration. Unknown keys are ignored.
func ConfigurationFromBlock(block map[string]any) (Configuration, error) {
	var cfg Configuration
	var err error

	if cfg.SigningSecretKey, err = blockString(block, blockSigningSecretKey); err != nil {
		return Configuration{}, err
	}
	alg, err := blockString(block, blockAlgorithm)
	if err != nil {
		return Configuration{}, err
	}
	cfg.Algorithm = Algorithm(strings.ToUpper(strings.TrimSpace(alg)))
	if cfg.VerifyingSecretKey, err = blockString(block, blockVerifyingSecretKey); err != nil {
		return Configuration{}, err
	}
	if cfg.Audience, err = blockString(block, blockAudience); err != nil {
		return Configuration{}, err
	}
	if cfg.Issuer, err = blockString(block, blockIssuer); err != nil {
		return Configuration{}, err
	}
	if cfg.JWKURL, err = blockString(block, blockJWKURL); err != nil {
		return Configuration{}, err
	}
	if cfg.JTIClaim, err = blockString(block, blockJTI); err != nil {
		return Configuration{}, err
	}
	if cfg.Leeway, err = NormalizeLeeway(block[blockLeeway]); err != nil {
		return Configuration{}, err
	}
	if cfg.Lifetime, err = normalizeDuration(blockLifetime, block[blockLifetime]); err != nil {
		return Configuration{}, err
	}

	return NewConfiguration(cfg)
}

func blockString(block map[string]any, key string) (string, error) {
	v, ok := block[key]
	if !ok || v == nil {
		return "", nil
	}
	switch s := v.(type) {
	case string:
		return s, nil
	case []byte:
		return string(s), nil
	case fmt.Stringer:
		return s.String(), nil
	default:
		return "", fmt.Errorf("%w: %s must be a string, got %T", ErrConfigValidation, key, v)
	}
}

// NormalizeLeeway converts a leeway given as nil, a number of seconds, a
// time.Duration or a string into a Duration. Strings are parsed with
// time.ParseDuration first and as a number of seconds second.
func NormalizeLeeway(v any) (time.Duration, error) {
	return normalizeDuration(blockLeeway, v)
}

func normalizeDuration(field string, v any) (time.Duration, error) {
	switch d := v.(type) {
	case nil:
		return 0, nil
	case time.Duration:
		return d, nil
	case int:
		return intSeconds(field, int64(d))
	case int32:
		return intSeconds(field, int64(d))
	case int64:
		return intSeconds(field, d)
	case uint:
		return uintSeconds(field, uint64(d))
	case uint32:
		return uintSeconds(field, uint64(d))
	case uint64:
		return uintSeconds(field, d)
	case float32:
		return secondsToDuration(field, float64(d))
	case float64:
		return secondsToDuration(field, d)
	case string:
		s := strings.TrimSpace(d)
		if s == "" {
			return 0, nil
		}
		if parsed, err := time.ParseDuration(s); err == nil {
			return parsed, nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %s %q is neither a duration nor a number of seconds", ErrConfigValidation, field, d)
		}
		return secondsToDuration(field, f)
	default:
		return 0, fmt.Errorf("%w: unsupported %s type %T", ErrConfigValidation, field, v)
	}
}

// maxSeconds is the largest whole number of seconds a time.Duration holds.
const maxSeconds = math.MaxInt64 / int64(time.Second)

func intSeconds(field string, n int64) (time.Duration, error) {
	if n > maxSeconds || n < -maxSeconds {
		return 0, fmt.Errorf("%w: %s %d seconds out of range", ErrConfigValidation, field, n)
	}
	return time.Duration(n) * time.Second, nil
}

func uintSeconds(field string, n uint64) (time.Duration, error) {
	if n > uint64(maxSeconds) {
		return 0, fmt.Errorf("%w: %s %d seconds out of range", ErrConfigValidation, field, n)
	}
	return time.Duration(n) * time.Second, nil
}

func secondsToDuration(field string, f float64) (time.Duration, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || math.Abs(f) >= float64(maxSeconds) {
		return 0, fmt.Errorf("%w: %s %v out of range", ErrConfigValidation, field, f)
	}
	return time.Duration(f * float64(time.Second)), nil
}
