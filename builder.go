package goJWT

import (
	"errors"
	"net/http"

	"github.com/MrEthical07/goJWT/internal/workers"
	"github.com/MrEthical07/goJWT/jwks"
)

// Builder assembles a Service. It is configured during initialization and
// can be built once.
type Builder struct {
	config    *Configuration
	host      HostConfig
	resolver  jwks.Resolver
	http      *http.Client
	keyCache  jwks.Cache
	auditSink AuditSink
	auditCfg  AuditConfig
	metrics   MetricsConfig
	workers   int

	built bool
}

// New returns an empty Builder. Either WithConfiguration or WithHostConfig
// must be called before Build.
func New() *Builder {
	return &Builder{}
}

// WithConfiguration sets explicit configuration parameters. They take
// precedence over a host configuration.
func (b *Builder) WithConfiguration(cfg Configuration) *Builder {
	c := cfg
	b.config = &c
	return b
}

// WithHostConfig sets the application configuration holding the JWT_CONFIG block.
func (b *Builder) WithHostConfig(host HostConfig) *Builder {
	b.host = host
	return b
}

// WithKeySetResolver replaces the remote key-set client used for the base
// JWKURL. Overrides naming another URL still get a default client.
func (b *Builder) WithKeySetResolver(r jwks.Resolver) *Builder {
	b.resolver = r
	return b
}

// WithHTTPClient sets the HTTP client used by default key-set clients.
func (b *Builder) WithHTTPClient(c *http.Client) *Builder {
	b.http = c
	return b
}

// WithKeySetCache sets the cache shared by default key-set clients, for
// example a jwks.RedisCache shared across processes.
func (b *Builder) WithKeySetCache(cache jwks.Cache) *Builder {
	b.keyCache = cache
	return b
}

// WithAuditSink sets the audit sink and enables auditing with default buffering.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	if sink != nil && !b.auditCfg.Enabled {
		b.auditCfg = AuditConfig{Enabled: true, BufferSize: 1024, DropIfFull: true}
	}
	return b
}

// WithAudit sets the audit dispatcher configuration.
func (b *Builder) WithAudit(cfg AuditConfig) *Builder {
	b.auditCfg = cfg
	return b
}

// WithMetricsEnabled turns on the in-process counters read by
// MetricsSnapshot and the exporters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms records decode latency. It has no effect unless
// metrics are enabled.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.metrics.EnableLatencyHistograms = enabled
	return b
}

// WithAsyncWorkers bounds concurrent SignAsync and DecodeAsync work. Zero
// means GOMAXPROCS.
func (b *Builder) WithAsyncWorkers(n int) *Builder {
	b.workers = n
	return b
}

// Build validates the configuration and returns a ready Service.
func (b *Builder) Build() (*Service, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	var (
		cfg Configuration
		err error
	)
	switch {
	case b.config != nil:
		cfg, err = NewConfiguration(*b.config)
	case b.host != nil:
		cfg, err = ConfigurationFromHost(b.host)
	default:
		err = missingHostBlock()
	}
	if err != nil {
		return nil, err
	}

	var opts []jwks.Option
	if b.http != nil {
		opts = append(opts, jwks.WithHTTPClient(b.http))
	}
	if b.keyCache != nil {
		opts = append(opts, jwks.WithCache(b.keyCache))
	}

	svc := &Service{
		cfg: cfg,
		resolverFactory: func(url string) (jwks.Resolver, error) {
			return jwks.NewClient(url, opts...)
		},
		metrics: NewMetrics(b.metrics),
		audit:   newAuditDispatcher(b.auditCfg, b.auditSink),
		pool:    workers.New(b.workers),
	}
	if b.resolver != nil && cfg.JWKURL != "" {
		svc.resolvers.Store(cfg.JWKURL, b.resolver)
	}

	return svc, nil
}

// Setup builds a Service from explicit configuration parameters.
func Setup(cfg Configuration) (*Service, error) {
	return New().WithConfiguration(cfg).Build()
}

// SetupFromHost builds a Service from the JWT_CONFIG block of host. It fails
// with an error wrapping ErrSetup when the block is absent.
func SetupFromHost(host HostConfig) (*Service, error) {
	return New().WithHostConfig(host).Build()
}
