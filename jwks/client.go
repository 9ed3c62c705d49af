package jwks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/go-jose/go-jose/v4"
	"golang.org/x/sync/singleflight"

	"github.com/MrEthical07/goJWT/jwt"
)

const (
	defaultTTL                = 10 * time.Minute
	defaultMinRefreshInterval = 30 * time.Second
	maxKeySetSize             = 1 << 20
)

var (
	// ErrInvalidURL is returned by NewClient for a URL that is not absolute http(s).
	ErrInvalidURL = errors.New("invalid key set url")
	// ErrMalformedToken is returned when the token header cannot be read.
	ErrMalformedToken = errors.New("malformed token header")
	// ErrMissingKeyID is returned when the token carries no kid header.
	ErrMissingKeyID = errors.New("token has no kid header")
	// ErrKeyNotFound is returned when no usable key matches the kid.
	ErrKeyNotFound = errors.New("signing key not found")
	// ErrFetch is returned when the key set cannot be retrieved or parsed.
	ErrFetch = errors.New("key set fetch failed")
)

// Resolver returns the verification key for a token.
type Resolver interface {
	SigningKeyFor(ctx context.Context, token string) (any, error)
}

// HTTPError carries a non-success response from the key set endpoint.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e HTTPError) Error() string {
	return fmt.Sprintf("status code: %d: body: %s", e.StatusCode, string(e.Body))
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the client used for fetches. Its Timeout bounds each fetch.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithCache sets the key set cache.
func WithCache(cache Cache) Option {
	return func(c *Client) {
		if cache != nil {
			c.cache = cache
		}
	}
}

// WithTTL sets how long a fetched set is served from cache.
func WithTTL(ttl time.Duration) Option {
	return func(c *Client) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMinRefreshInterval bounds how often an unknown kid may force a refetch.
func WithMinRefreshInterval(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.minRefresh = d
		}
	}
}

// Client resolves keys from one JWKS endpoint. It is safe for concurrent use.
type Client struct {
	url        string
	httpClient *http.Client
	cache      Cache
	ttl        time.Duration
	minRefresh time.Duration
	now        func() time.Time

	group singleflight.Group

	mu          sync.Mutex
	lastRefresh time.Time
}

// NewClient creates a Client for rawURL.
func NewClient(rawURL string, opts ...Option) (*Client, error) {
	if err := ValidateURL(rawURL); err != nil {
		return nil, err
	}

	c := &Client{
		url:        rawURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		ttl:        defaultTTL,
		minRefresh: defaultMinRefreshInterval,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.cache == nil {
		c.cache = NewMemoryCache()
	}

	return c, nil
}

// ValidateURL reports whether rawURL is an absolute http or https URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	return nil
}

// URL returns the endpoint this client reads from.
func (c *Client) URL() string {
	return c.url
}

// SigningKeyFor returns the public key matching the kid header of token.
func (c *Client) SigningKeyFor(ctx context.Context, token string) (any, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	kid, err := jwt.KeyID(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	if kid == "" {
		return nil, ErrMissingKeyID
	}

	set, err := c.KeySet(ctx, false)
	if err != nil {
		return nil, err
	}
	if key, ok := lookup(set, kid); ok {
		return key, nil
	}

	if !c.refreshAllowed() {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
	}
	set, err = c.KeySet(ctx, true)
	if err != nil {
		return nil, err
	}
	if key, ok := lookup(set, kid); ok {
		return key, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, kid)
}

// KeySet returns the current key set, from cache unless force is set.
func (c *Client) KeySet(ctx context.Context, force bool) (*jose.JSONWebKeySet, error) {
	if !force {
		raw, ok, err := c.cache.Get(ctx, c.url)
		if err != nil {
			log.Print("goJWT: key set cache read failed")
		}
		if ok {
			if set, err := parseKeySet(raw); err == nil {
				return set, nil
			}
		}
	}

	// The shared fetch outlives any single waiter; each waiter gives up on its
	// own ctx and the HTTP client timeout bounds the fetch itself.
	ch := c.group.DoChan(c.url, func() (any, error) {
		return c.fetch(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*jose.JSONWebKeySet), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrFetch, ctx.Err())
	}
}

func (c *Client) fetch(ctx context.Context) (*jose.JSONWebKeySet, error) {
	c.mu.Lock()
	c.lastRefresh = c.now()
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: %w", ErrFetch, HTTPError{StatusCode: resp.StatusCode, Body: body})
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxKeySetSize))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	set, err := parseKeySet(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	if err := c.cache.Set(ctx, c.url, raw, c.ttl); err != nil {
		log.Print("goJWT: key set cache write failed")
	}

	return set, nil
}

func (c *Client) refreshAllowed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastRefresh.IsZero() || c.now().Sub(c.lastRefresh) >= c.minRefresh
}

func parseKeySet(raw []byte) (*jose.JSONWebKeySet, error) {
	var set jose.JSONWebKeySet
	if err := json.Unmarshal(raw, &set); err != nil {
		return nil, err
	}
	return &set, nil
}

func lookup(set *jose.JSONWebKeySet, kid string) (any, bool) {
	if set == nil {
		return nil, false
	}
	for _, k := range set.Key(kid) {
		if k.Use != "" && k.Use != "sig" {
			continue
		}
		if !k.IsPublic() {
			k = k.Public()
		}
		if k.Key == nil {
			continue
		}
		return k.Key, true
	}
	return nil, false
}
