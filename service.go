package goJWT

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goJWT/internal/audit"
	"github.com/MrEthical07/goJWT/internal/timeutil"
	"github.com/MrEthical07/goJWT/internal/workers"
	"github.com/MrEthical07/goJWT/jwks"
	"github.com/MrEthical07/goJWT/jwt"
)

// ResolverFactory creates a key-set resolver for a JWK URL. It is consulted
// once per distinct URL.
type ResolverFactory func(url string) (jwks.Resolver, error)

// Service signs and verifies tokens for one base Configuration. It is safe for
// concurrent use. Construct it with [Builder.Build] or [Setup].
type Service struct {
	cfg Configuration

	resolverFactory ResolverFactory
	resolvers       sync.Map // url -> jwks.Resolver

	metrics *Metrics
	audit   *audit.Dispatcher
	pool    *workers.Pool
	closed  atomic.Bool
}

// Configuration returns a copy of the base configuration.
func (s *Service) Configuration() Configuration {
	return s.cfg
}

// Sign issues a token for payload. See SignContext.
func (s *Service) Sign(payload map[string]any, headers map[string]any, overrides Overrides) (string, error) {
	return s.SignContext(context.Background(), payload, headers, overrides)
}

// SignContext merges overrides into the base configuration, builds the claim
// set from a copy of payload and signs it. headers are added to the JOSE
// header; "alg" always reflects the effective algorithm. The only expected
// failures are configuration errors from overrides and unusable key material.
func (s *Service) SignContext(ctx context.Context, payload map[string]any, headers map[string]any, overrides Overrides) (string, error) {
	cfg, err := s.effective(overrides)
	if err != nil {
		s.metrics.Inc(MetricSignFailure)
		return "", err
	}

	claims := NewClaimBuilder(cfg).Build(copyPayload(payload))

	var enc jwt.Encoder
	if cfg.PayloadEncoder != nil {
		enc = jwt.Encoder(cfg.PayloadEncoder)
	}

	token, err := jwt.Encode(claims, cfg.SigningSecretKey, string(cfg.Algorithm), enc, headers)
	if err != nil {
		s.metrics.Inc(MetricSignFailure)
		s.emitAudit(ctx, AuditTokenSigned, cfg, claims, err)
		return "", fmt.Errorf("sign %s token: %w", cfg.Algorithm, err)
	}

	s.metrics.Inc(MetricSignSuccess)
	s.emitAudit(ctx, AuditTokenSigned, cfg, claims, nil)
	return token, nil
}

// Decode verifies token and returns its claims. See DecodeContext.
func (s *Service) Decode(token string, verify bool, overrides Overrides) (Claims, error) {
	return s.DecodeContext(context.Background(), token, verify, overrides)
}

// DecodeContext verifies token against the effective configuration.
//
// Only the configured algorithm is accepted. A token naming any other
// algorithm fails with a *TokenError matching ErrInvalidAlgorithm; every other
// rejection (signature, expiry, audience, issuer, malformed input, key-set
// lookup) matches ErrTokenInvalid. With verify set to false the signature is
// not checked and no key is resolved, but time, audience and issuer claims
// still are. ctx bounds remote key-set fetches.
func (s *Service) DecodeContext(ctx context.Context, token string, verify bool, overrides Overrides) (Claims, error) {
	if s.metrics.LatencyEnabled() {
		start := time.Now()
		defer func() {
			s.metrics.Observe(MetricDecodeLatency, time.Since(start))
		}()
	}

	cfg, err := s.effective(overrides)
	if err != nil {
		return nil, err
	}

	// The algorithm check runs before any remote key lookup.
	if alg, herr := jwt.HeaderAlgorithm(token); herr == nil && alg != string(cfg.Algorithm) {
		return nil, s.reject(ctx, cfg, newTokenError(ErrInvalidAlgorithm, fmt.Errorf("%w: %s", jwt.ErrInvalidAlgorithm, alg)))
	}

	var key any
	if verify {
		key, err = s.verifyingKey(ctx, cfg, token)
		if err != nil {
			s.metrics.Inc(MetricKeySetLookupFailure)
			return nil, s.reject(ctx, cfg, newTokenError(ErrTokenInvalid, err))
		}
	}

	raw, err := jwt.Decode(token, key, jwt.DecodeOptions{
		Algorithms:      []string{string(cfg.Algorithm)},
		Audience:        cfg.Audience,
		Issuer:          cfg.Issuer,
		Leeway:          cfg.Leeway,
		VerifyAudience:  cfg.Audience != "",
		VerifySignature: verify,
		Now:             timeutil.NowAware,
	})
	if err != nil {
		if errors.Is(err, jwt.ErrInvalidAlgorithm) {
			return nil, s.reject(ctx, cfg, newTokenError(ErrInvalidAlgorithm, err))
		}
		return nil, s.reject(ctx, cfg, newTokenError(ErrTokenInvalid, err))
	}

	normalized, _ := jwt.NormalizeNumbers(raw).(map[string]any)
	claims := Claims(normalized)

	s.metrics.Inc(MetricDecodeSuccess)
	s.emitAudit(ctx, AuditTokenDecoded, cfg, claims, nil)
	return claims, nil
}

// SignAsync runs SignContext on the service worker pool. If ctx ends first
// the caller gets ctx.Err() and the signing work finishes in the background
// with its result discarded.
func (s *Service) SignAsync(ctx context.Context, payload map[string]any, headers map[string]any, overrides Overrides) (string, error) {
	if s.closed.Load() {
		return "", ErrServiceClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	payload = copyPayload(payload)
	work := context.WithoutCancel(ctx)

	token, err := workers.Do(ctx, s.pool, func() (string, error) {
		return s.SignContext(work, payload, headers, overrides)
	})
	s.countCancelled(ctx, err)
	return token, err
}

// DecodeAsync runs DecodeContext on the service worker pool with the same
// cancellation contract as SignAsync. A remote key-set fetch started by the
// work is not interrupted by ctx.
func (s *Service) DecodeAsync(ctx context.Context, token string, verify bool, overrides Overrides) (Claims, error) {
	if s.closed.Load() {
		return nil, ErrServiceClosed
	}
	if ctx == nil {
		ctx = context.Background()
	}
	work := context.WithoutCancel(ctx)

	claims, err := workers.Do(ctx, s.pool, func() (Claims, error) {
		return s.DecodeContext(work, token, verify, overrides)
	})
	s.countCancelled(ctx, err)
	return claims, err
}

// MetricsSnapshot returns a copy of the in-process metrics.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	if s == nil {
		return MetricsSnapshot{}
	}
	return s.metrics.Snapshot()
}

// AuditDropped reports audit events dropped because the buffer was full.
func (s *Service) AuditDropped() uint64 {
	if s == nil {
		return 0
	}
	return s.audit.Dropped()
}

// AuditDroppedByType reports dropped audit events per event type.
func (s *Service) AuditDroppedByType() map[string]uint64 {
	var d *audit.Dispatcher
	if s != nil {
		d = s.audit
	}
	return d.DroppedByType()
}

// Close stops the audit dispatcher after draining buffered events, waiting at
// most AuditConfig.DrainTimeout for the sink. Async
// calls made after Close return ErrServiceClosed; synchronous calls keep
// working without audit.
func (s *Service) Close() {
	if s == nil {
		return
	}
	if s.closed.Swap(true) {
		return
	}
	s.audit.Close()
}

func (s *Service) effective(overrides Overrides) (Configuration, error) {
	if overrides.IsZero() {
		return s.cfg, nil
	}
	return Merge(s.cfg, overrides)
}

func (s *Service) verifyingKey(ctx context.Context, cfg Configuration, token string) (any, error) {
	if cfg.Algorithm.Symmetric() {
		return cfg.SigningSecretKey, nil
	}
	if cfg.JWKURL != "" {
		r, err := s.resolverFor(cfg.JWKURL)
		if err != nil {
			return nil, err
		}
		return r.SigningKeyFor(ctx, token)
	}
	if cfg.VerifyingSecretKey != "" {
		return cfg.VerifyingSecretKey, nil
	}
	return cfg.SigningSecretKey, nil
}

func (s *Service) resolverFor(url string) (jwks.Resolver, error) {
	if r, ok := s.resolvers.Load(url); ok {
		return r.(jwks.Resolver), nil
	}
	if s.resolverFactory == nil {
		return nil, fmt.Errorf("no key set resolver for %s", url)
	}
	r, err := s.resolverFactory(url)
	if err != nil {
		return nil, err
	}
	actual, _ := s.resolvers.LoadOrStore(url, r)
	return actual.(jwks.Resolver), nil
}

func (s *Service) reject(ctx context.Context, cfg Configuration, err *TokenError) error {
	if errors.Is(err, ErrInvalidAlgorithm) {
		s.metrics.Inc(MetricDecodeInvalidAlgorithm)
	} else {
		s.metrics.Inc(MetricDecodeInvalidToken)
	}
	s.emitAudit(ctx, AuditTokenRejected, cfg, nil, err)
	return err
}

func (s *Service) countCancelled(ctx context.Context, err error) {
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) {
		s.metrics.Inc(MetricAsyncCancelled)
	}
}
