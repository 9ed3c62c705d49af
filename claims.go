package goJWT

import (
	"encoding/hex"
	"fmt"
	"time"

	"github.com/MrEthical07/goJWT/internal/timeutil"
	"github.com/google/uuid"
)

// Claims is a decoded or about-to-be-signed claim set. Numbers returned by
// Decode are int64 when integral and float64 otherwise.
type Claims map[string]any

// ClaimBuilder assembles the registered claims of one token. The current time
// is captured once by NewClaimBuilder so exp and iat agree.
type ClaimBuilder struct {
	cfg    Configuration
	now    time.Time
	claims Claims
}

// NewClaimBuilder captures the current time and an empty claim set.
func NewClaimBuilder(cfg Configuration) *ClaimBuilder {
	return &ClaimBuilder{
		cfg:    cfg,
		now:    timeutil.NowAware(),
		claims: Claims{},
	}
}

// Now returns the instant captured at construction.
func (b *ClaimBuilder) Now() time.Time {
	return b.now
}

// Claims returns the claims accumulated so far. The map is owned by the builder.
func (b *ClaimBuilder) Claims() Claims {
	return b.claims
}

// Build sets exp, iat and the token id, merges payload over them, then adds
// aud and iss when configured. Payload keys win over the generated ones.
func (b *ClaimBuilder) Build(payload map[string]any) Claims {
	b.SetExp("exp", nil, nil)
	b.SetIAT("iat", nil)
	b.SetJTI()

	for k, v := range payload {
		b.claims[k] = v
	}

	if b.cfg.Audience != "" {
		b.claims["aud"] = b.cfg.Audience
	}
	if b.cfg.Issuer != "" {
		b.claims["iss"] = b.cfg.Issuer
	}

	return b.claims
}

// SetExp writes claim as the epoch seconds of from + lifetime. Nil arguments
// default to the captured time and the configured lifetime.
func (b *ClaimBuilder) SetExp(claim string, from *time.Time, lifetime *time.Duration) *ClaimBuilder {
	start := b.now
	if from != nil {
		start = *from
	}
	ttl := b.cfg.Lifetime
	if lifetime != nil {
		ttl = *lifetime
	}
	b.claims[claim] = timeutil.ToEpochSeconds(start.Add(ttl))
	return b
}

// SetIAT writes claim as the epoch seconds of at, or of the captured time.
func (b *ClaimBuilder) SetIAT(claim string, at *time.Time) *ClaimBuilder {
	issued := b.now
	if at != nil {
		issued = *at
	}
	b.claims[claim] = timeutil.ToEpochSeconds(issued)
	return b
}

// SetJTI writes a fresh 128-bit hex identifier under the configured claim name.
func (b *ClaimBuilder) SetJTI() *ClaimBuilder {
	b.claims[b.cfg.JTIClaim] = newTokenID()
	return b
}

func newTokenID() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])
}

// copyPayload deep-copies maps and slices so later caller mutation cannot
// reach a token being signed.
func copyPayload(payload map[string]any) map[string]any {
	if payload == nil {
		return nil
	}
	out := make(map[string]any, len(payload))
	for k, v := range payload {
		out[k] = copyValue(v)
	}
	return out
}

func copyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return copyPayload(t)
	case Claims:
		return Claims(copyPayload(t))
	case []any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = copyValue(t[i])
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []byte:
		out := make([]byte, len(t))
		copy(out, t)
		return out
	default:
		return v
	}
}

func stringify(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	default:
		return fmt.Sprint(t)
	}
}
