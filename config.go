package goJWT

import (
	"fmt"
	"strings"
	"time"

	"github.com/MrEthical07/goJWT/jwks"
)

const (
	// DefaultLifetime is the token validity window used when none is configured.
	DefaultLifetime = 5 * time.Minute
	// DefaultJTIClaim is the claim name holding the generated token identifier.
	DefaultJTIClaim = "jti"
)

// PayloadEncoder serializes the final claim set to JSON. It receives the whole
// claim map so values json.Marshal cannot handle can be encoded by the caller.
type PayloadEncoder func(v any) ([]byte, error)

// Configuration describes how one token profile is signed and verified.
//
// A Configuration is validated once by NewConfiguration and is then treated as
// read-only. Per-call changes go through Merge, which returns a new value.
// Empty Audience, Issuer and JWKURL mean "not configured".
type Configuration struct {
	Algorithm          Algorithm
	SigningSecretKey   string
	VerifyingSecretKey string
	Audience           string
	Issuer             string
	JWKURL             string
	Leeway             time.Duration
	JTIClaim           string
	Lifetime           time.Duration
	PayloadEncoder     PayloadEncoder
}

// Overrides carries per-call configuration changes. Nil fields are left as in
// the base configuration.
type Overrides struct {
	Algorithm          *Algorithm
	SigningSecretKey   *string
	VerifyingSecretKey *string
	Audience           *string
	Issuer             *string
	JWKURL             *string
	Leeway             *time.Duration
	JTIClaim           *string
	Lifetime           *time.Duration
	PayloadEncoder     PayloadEncoder
}

// Ptr returns a pointer to v. It keeps Overrides literals short.
func Ptr[T any](v T) *T {
	return &v
}

// IsZero reports whether o changes nothing.
func (o Overrides) IsZero() bool {
	return o.Algorithm == nil &&
		o.SigningSecretKey == nil &&
		o.VerifyingSecretKey == nil &&
		o.Audience == nil &&
		o.Issuer == nil &&
		o.JWKURL == nil &&
		o.Leeway == nil &&
		o.JTIClaim == nil &&
		o.Lifetime == nil &&
		o.PayloadEncoder == nil
}

func defaultConfiguration() Configuration {
	return Configuration{
		Algorithm: HS256,
		JTIClaim:  DefaultJTIClaim,
		Lifetime:  DefaultLifetime,
	}
}

// NewConfiguration fills defaults into cfg and validates it. The error wraps
// ErrConfigValidation.
func NewConfiguration(cfg Configuration) (Configuration, error) {
	cfg = withDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

func withDefaults(cfg Configuration) Configuration {
	if cfg.Algorithm == "" {
		cfg.Algorithm = HS256
	}
	if cfg.JTIClaim == "" {
		cfg.JTIClaim = DefaultJTIClaim
	}
	if cfg.Lifetime == 0 {
		cfg.Lifetime = DefaultLifetime
	}
	return cfg
}

// Merge overwrites base with every field set in o and validates the result.
// Defaults fill only the unset fields of base; an override that sets a field
// to its zero value is validated as given. base is not modified.
func Merge(base Configuration, o Overrides) (Configuration, error) {
	out := withDefaults(base)
	if o.Algorithm != nil {
		out.Algorithm = *o.Algorithm
	}
	if o.SigningSecretKey != nil {
		out.SigningSecretKey = *o.SigningSecretKey
	}
	if o.VerifyingSecretKey != nil {
		out.VerifyingSecretKey = *o.VerifyingSecretKey
	}
	if o.Audience != nil {
		out.Audience = *o.Audience
	}
	if o.Issuer != nil {
		out.Issuer = *o.Issuer
	}
	if o.JWKURL != nil {
		out.JWKURL = *o.JWKURL
	}
	if o.Leeway != nil {
		out.Leeway = *o.Leeway
	}
	if o.JTIClaim != nil {
		out.JTIClaim = *o.JTIClaim
	}
	if o.Lifetime != nil {
		out.Lifetime = *o.Lifetime
	}
	if o.PayloadEncoder != nil {
		out.PayloadEncoder = o.PayloadEncoder
	}
	if err := out.Validate(); err != nil {
		return Configuration{}, err
	}
	return out, nil
}

/*
====================================
VALIDATION
====================================
*/

// Validate checks cfg without applying defaults.
func (c Configuration) Validate() error {
	if !c.Algorithm.Valid() {
		return fmt.Errorf("%w: unsupported algorithm %q", ErrConfigValidation, c.Algorithm)
	}
	if !backendSupports(c.Algorithm) {
		return fmt.Errorf("%w: an asymmetric crypto backend is required to use %s", ErrConfigValidation, c.Algorithm)
	}
	if c.SigningSecretKey == "" {
		return fmt.Errorf("%w: SigningSecretKey is required", ErrConfigValidation)
	}
	if c.JWKURL != "" {
		if err := jwks.ValidateURL(c.JWKURL); err != nil {
			return fmt.Errorf("%w: %w", ErrConfigValidation, err)
		}
	}
	if c.Leeway < 0 {
		return fmt.Errorf("%w: Leeway must be >= 0", ErrConfigValidation)
	}
	if c.Lifetime <= 0 {
		return fmt.Errorf("%w: Lifetime must be > 0", ErrConfigValidation)
	}
	if strings.TrimSpace(c.JTIClaim) == "" {
		return fmt.Errorf("%w: JTIClaim must not be blank", ErrConfigValidation)
	}
	return nil
}
