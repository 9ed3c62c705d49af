package goJWT_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	goJWT "github.com/MrEthical07/goJWT"
)

// ExampleSetup demonstrates service construction from an explicit configuration.
func ExampleSetup() {
	cfg, err := goJWT.NewConfiguration(goJWT.Configuration{
		Algorithm:        goJWT.HS256,
		SigningSecretKey: "0123456789abcdef0123456789abcdef",
		Issuer:           "https://issuer.example",
		Lifetime:         15 * time.Minute,
	})
	if err != nil {
		panic(err)
	}

	svc, err := goJWT.Setup(cfg)
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	fmt.Println(svc.Configuration().Algorithm)
	// Output: HS256
}

// ExampleService_Sign shows a sign/decode round trip.
func ExampleService_Sign() {
	svc, _ := goJWT.Setup(goJWT.Configuration{
		Algorithm:        goJWT.HS256,
		SigningSecretKey: "0123456789abcdef0123456789abcdef",
	})
	defer svc.Close()

	token, _ := svc.Sign(map[string]any{"sub": "alice"}, nil, goJWT.Overrides{})
	claims, _ := svc.Decode(token, true, goJWT.Overrides{})

	fmt.Println(claims["sub"])
	// Output: alice
}

// ExampleService_DecodeContext shows structured error handling on rejection.
func ExampleService_DecodeContext() {
	svc, _ := goJWT.Setup(goJWT.Configuration{
		Algorithm:        goJWT.HS256,
		SigningSecretKey: "0123456789abcdef0123456789abcdef",
	})
	defer svc.Close()

	_, err := svc.DecodeContext(context.Background(), "not.a.token", true, goJWT.Overrides{})

	fmt.Println(errors.Is(err, goJWT.ErrTokenInvalid))
	// Output: true
}

// ExampleSetupFromHost shows configuration through the JWT_CONFIG host block.
func ExampleSetupFromHost() {
	svc, err := goJWT.SetupFromHost(goJWT.MapConfig{
		goJWT.HostConfigKey: map[string]any{
			"algorithm":          "hs384",
			"signing_secret_key": "0123456789abcdef0123456789abcdef0123456789abcdef",
			"lifetime":           "1h",
		},
	})
	if err != nil {
		panic(err)
	}
	defer svc.Close()

	cfg := svc.Configuration()
	fmt.Println(cfg.Algorithm, cfg.Lifetime)
	// Output: HS384 1h0m0s
}

// ExampleService_MetricsSnapshot shows how to read in-process metrics counters.
func ExampleService_MetricsSnapshot() {
	var svc *goJWT.Service
	snapshot := svc.MetricsSnapshot()
	_ = snapshot
}
