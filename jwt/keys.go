package jwt

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// SigningKey converts key material into the type the backend signs with for alg.
// HMAC keys are raw bytes; RSA and ECDSA keys may be given parsed or as PEM.
func SigningKey(alg string, key any) (any, error) {
	switch jwt.GetSigningMethod(alg).(type) {
	case *jwt.SigningMethodHMAC:
		b, ok := asBytes(key)
		if !ok || len(b) == 0 {
			return nil, fmt.Errorf("%w: %s requires a non-empty secret", ErrInvalidKey, alg)
		}
		return b, nil
	case *jwt.SigningMethodRSA:
		if k, ok := key.(*rsa.PrivateKey); ok {
			return k, nil
		}
		b, ok := asBytes(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires an RSA private key", ErrInvalidKey, alg)
		}
		k, err := jwt.ParseRSAPrivateKeyFromPEM(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}
		return k, nil
	case *jwt.SigningMethodECDSA:
		if k, ok := key.(*ecdsa.PrivateKey); ok {
			return k, nil
		}
		b, ok := asBytes(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s requires an EC private key", ErrInvalidKey, alg)
		}
		k, err := jwt.ParseECPrivateKeyFromPEM(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}
		return k, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

// VerifyingKey converts key material into the type the backend verifies with
// for alg. For asymmetric algorithms a PEM private key is accepted as well and
// reduced to its public half.
func VerifyingKey(alg string, key any) (any, error) {
	switch jwt.GetSigningMethod(alg).(type) {
	case *jwt.SigningMethodHMAC:
		b, ok := asBytes(key)
		if !ok || len(b) == 0 {
			return nil, fmt.Errorf("%w: %s requires a non-empty secret", ErrInvalidKey, alg)
		}
		return b, nil
	case *jwt.SigningMethodRSA:
		switch k := key.(type) {
		case *rsa.PublicKey:
			return k, nil
		case *rsa.PrivateKey:
			return &k.PublicKey, nil
		}
		b, ok := asBytes(key)
		if !ok || len(b) == 0 {
			return nil, fmt.Errorf("%w: %s requires an RSA public key", ErrInvalidKey, alg)
		}
		if pub, err := jwt.ParseRSAPublicKeyFromPEM(b); err == nil {
			return pub, nil
		}
		priv, err := jwt.ParseRSAPrivateKeyFromPEM(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}
		return &priv.PublicKey, nil
	case *jwt.SigningMethodECDSA:
		switch k := key.(type) {
		case *ecdsa.PublicKey:
			return k, nil
		case *ecdsa.PrivateKey:
			return &k.PublicKey, nil
		}
		b, ok := asBytes(key)
		if !ok || len(b) == 0 {
			return nil, fmt.Errorf("%w: %s requires an EC public key", ErrInvalidKey, alg)
		}
		if pub, err := jwt.ParseECPublicKeyFromPEM(b); err == nil {
			return pub, nil
		}
		priv, err := jwt.ParseECPrivateKeyFromPEM(b)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidKey, err)
		}
		return &priv.PublicKey, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
}

func asBytes(key any) ([]byte, bool) {
	switch k := key.(type) {
	case []byte:
		return k, true
	case string:
		return []byte(k), true
	default:
		return nil, false
	}
}
