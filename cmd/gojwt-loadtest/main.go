package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"flag"
	"fmt"
	mrand "math/rand"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	goJWT "github.com/MrEthical07/goJWT"
	"github.com/MrEthical07/goJWT/jwks"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-jose/go-jose/v4"
	"github.com/redis/go-redis/v9"
)

const loadtestKeyID = "loadtest-1"

func main() {
	var (
		alg         = flag.String("alg", "HS256", "signing algorithm (HS256, RS256, ES256, ...)")
		useJWKS     = flag.Bool("jwks", false, "verify asymmetric tokens through a local JWK set endpoint")
		tokens      = flag.Int("tokens", 10000, "number of tokens to pre-sign for the decode phase")
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		ops         = flag.Int("ops", 200000, "operations per phase (sign + decode)")
		async       = flag.Bool("async", false, "use SignAsync/DecodeAsync")
		redisAddr   = flag.String("redis-addr", "", "redis address for the key set cache; if empty, REDIS_ADDR env or miniredis is used")
		prefix      = flag.String("prefix", "jwks", "key set cache prefix")
	)
	flag.Parse()

	if *tokens <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "tokens, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()
	algorithm := goJWT.Algorithm(*alg)

	cfg := goJWT.Configuration{
		Algorithm: algorithm,
		Lifetime:  time.Hour,
		Audience:  "loadtest",
	}
	builder := goJWT.New().WithMetricsEnabled(true).WithLatencyHistograms(true).WithAsyncWorkers(*concurrency)

	if algorithm.Symmetric() {
		cfg.SigningSecretKey = "loadtest-secret-loadtest-secret-"
	} else {
		priv, public, err := generateKey(algorithm)
		if err != nil {
			fmt.Fprintf(os.Stderr, "key generation failed: %v\n", err)
			os.Exit(1)
		}
		cfg.SigningSecretKey = priv

		if *useJWKS {
			srv, err := serveKeySet(public, algorithm)
			if err != nil {
				fmt.Fprintf(os.Stderr, "jwks server failed: %v\n", err)
				os.Exit(1)
			}
			defer srv.Close()
			cfg.JWKURL = srv.URL

			client, cleanup := redisClient(*redisAddr)
			defer cleanup()
			builder = builder.WithKeySetCache(jwks.NewRedisCache(client, *prefix))
		}
	}

	svc, err := builder.WithConfiguration(cfg).Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup failed: %v\n", err)
		os.Exit(1)
	}
	defer svc.Close()

	for _, w := range cfg.Lint() {
		fmt.Printf("lint: %s: %s\n", w.Code, w.Message)
	}

	headers := map[string]any{"kid": loadtestKeyID}

	fmt.Printf("pre-signing %d %s tokens...\n", *tokens, algorithm)
	signed := make([]string, *tokens)
	startSeed := time.Now()
	for i := range signed {
		token, err := svc.Sign(map[string]any{"sub": fmt.Sprintf("user-%d", i)}, headers, goJWT.Overrides{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "sign failed: %v\n", err)
			os.Exit(1)
		}
		signed[i] = token
	}
	fmt.Printf("pre-signed in %s\n", time.Since(startSeed).Round(time.Millisecond))

	signStats := runPhase(*ops, *concurrency, func(r *mrand.Rand) error {
		payload := map[string]any{"sub": fmt.Sprintf("user-%d", r.Intn(*tokens))}
		if *async {
			_, err := svc.SignAsync(ctx, payload, headers, goJWT.Overrides{})
			return err
		}
		_, err := svc.Sign(payload, headers, goJWT.Overrides{})
		return err
	})
	decodeStats := runPhase(*ops, *concurrency, func(r *mrand.Rand) error {
		token := signed[r.Intn(len(signed))]
		if *async {
			_, err := svc.DecodeAsync(ctx, token, true, goJWT.Overrides{})
			return err
		}
		_, err := svc.Decode(token, true, goJWT.Overrides{})
		return err
	})

	fmt.Println("---- results ----")
	printStats("sign", signStats)
	printStats("decode", decodeStats)

	snap := svc.MetricsSnapshot()
	fmt.Printf("metrics: sign_success=%d decode_success=%d decode_invalid=%d keyset_failures=%d\n",
		snap.Counters[goJWT.MetricSignSuccess],
		snap.Counters[goJWT.MetricDecodeSuccess],
		snap.Counters[goJWT.MetricDecodeInvalidToken],
		snap.Counters[goJWT.MetricKeySetLookupFailure],
	)
}

func runPhase(ops, concurrency int, op func(r *mrand.Rand) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := mrand.New(mrand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				err := op(r)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}

func generateKey(alg goJWT.Algorithm) (string, any, error) {
	switch {
	case strings.HasPrefix(string(alg), "RS"):
		key, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			return "", nil, err
		}
		block := &pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)}
		return string(pem.EncodeToMemory(block)), &key.PublicKey, nil
	case strings.HasPrefix(string(alg), "ES"):
		curve := map[goJWT.Algorithm]elliptic.Curve{
			goJWT.ES256: elliptic.P256(),
			goJWT.ES384: elliptic.P384(),
			goJWT.ES512: elliptic.P521(),
		}[alg]
		if curve == nil {
			return "", nil, fmt.Errorf("unsupported algorithm %s", alg)
		}
		key, err := ecdsa.GenerateKey(curve, rand.Reader)
		if err != nil {
			return "", nil, err
		}
		der, err := x509.MarshalECPrivateKey(key)
		if err != nil {
			return "", nil, err
		}
		return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})), &key.PublicKey, nil
	default:
		return "", nil, fmt.Errorf("unsupported algorithm %s", alg)
	}
}

func serveKeySet(public any, alg goJWT.Algorithm) (*httptest.Server, error) {
	raw, err := json.Marshal(jose.JSONWebKeySet{Keys: []jose.JSONWebKey{
		{Key: public, KeyID: loadtestKeyID, Algorithm: string(alg), Use: "sig"},
	}})
	if err != nil {
		return nil, err
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(raw)
	})), nil
}

func redisClient(addr string) (redis.UniversalClient, func()) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		client := redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{mr.Addr()},
		})
		fmt.Printf("using miniredis at %s\n", mr.Addr())
		return client, func() {
			_ = client.Close()
			mr.Close()
		}
	}

	client := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs: []string{addr},
	})
	fmt.Printf("using redis at %s\n", addr)
	return client, func() { _ = client.Close() }
}
