package jwt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidAlgorithm reports a token signed with an algorithm that is not allowed.
	ErrInvalidAlgorithm = errors.New("invalid algorithm")
	// ErrInvalidToken reports every other verification or parsing failure.
	ErrInvalidToken = errors.New("invalid token")
	// ErrInvalidKey reports key material that cannot be used with the algorithm.
	ErrInvalidKey = errors.New("invalid key")
	// ErrUnsupportedAlgorithm reports an algorithm unknown to the signing backend.
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
)

// Encoder serializes the complete claim set to JSON.
type Encoder func(v any) ([]byte, error)

// DecodeOptions controls verification performed by Decode.
type DecodeOptions struct {
	Algorithms      []string
	Audience        string
	Issuer          string
	Leeway          time.Duration
	VerifyAudience  bool
	VerifySignature bool
	Now             func() time.Time
}

// encodedClaims lets a custom Encoder take over JSON serialization while still
// satisfying jwt.Claims.
type encodedClaims struct {
	jwt.MapClaims
	encode Encoder
}

func (c encodedClaims) MarshalJSON() ([]byte, error) {
	return c.encode(map[string]any(c.MapClaims))
}

// Encode signs claims with key using alg and returns the compact token.
// Header entries are copied onto the JOSE header; "alg" cannot be overridden.
func Encode(claims map[string]any, key any, alg string, enc Encoder, headers map[string]any) (string, error) {
	method := jwt.GetSigningMethod(alg)
	if method == nil {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedAlgorithm, alg)
	}
	signKey, err := SigningKey(alg, key)
	if err != nil {
		return "", err
	}

	var payload jwt.Claims = jwt.MapClaims(claims)
	if enc != nil {
		payload = encodedClaims{MapClaims: claims, encode: enc}
	}

	token := jwt.NewWithClaims(method, payload)
	for k, v := range headers {
		if k == "alg" {
			continue
		}
		token.Header[k] = v
	}

	return token.SignedString(signKey)
}

// Decode verifies token and returns its claims. Numbers are decoded as
// json.Number so callers can normalize integral values.
func Decode(token string, key any, opts DecodeOptions) (map[string]any, error) {
	alg, err := HeaderAlgorithm(token)
	if err != nil {
		return nil, err
	}
	if !contains(opts.Algorithms, alg) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAlgorithm, alg)
	}

	parserOpts := []jwt.ParserOption{
		jwt.WithValidMethods(opts.Algorithms),
		jwt.WithJSONNumber(),
		jwt.WithIssuedAt(),
	}
	if opts.Leeway > 0 {
		parserOpts = append(parserOpts, jwt.WithLeeway(opts.Leeway))
	}
	if opts.Issuer != "" {
		parserOpts = append(parserOpts, jwt.WithIssuer(opts.Issuer))
	}
	if opts.VerifyAudience && opts.Audience != "" {
		parserOpts = append(parserOpts, jwt.WithAudience(opts.Audience))
	}
	if opts.Now != nil {
		parserOpts = append(parserOpts, jwt.WithTimeFunc(opts.Now))
	}

	claims := jwt.MapClaims{}
	if !opts.VerifySignature {
		parser := jwt.NewParser(parserOpts...)
		if _, _, err := parser.ParseUnverified(token, claims); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		if err := jwt.NewValidator(parserOpts...).Validate(claims); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
		}
		return claims, nil
	}

	verifyKey, err := VerifyingKey(alg, key)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	parser := jwt.NewParser(parserOpts...)
	parsed, err := parser.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return verifyKey, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// HeaderAlgorithm returns the "alg" header of token without verifying it.
func HeaderAlgorithm(token string) (string, error) {
	header, err := parseHeader(token)
	if err != nil {
		return "", err
	}
	alg, _ := header["alg"].(string)
	if alg == "" {
		return "", fmt.Errorf("%w: missing alg header", ErrInvalidToken)
	}
	return alg, nil
}

// KeyID returns the "kid" header of token without verifying it.
func KeyID(token string) (string, error) {
	header, err := parseHeader(token)
	if err != nil {
		return "", err
	}
	kid, _ := header["kid"].(string)
	return kid, nil
}

func parseHeader(token string) (map[string]any, error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, jwt.ErrTokenMalformed)
	}
	raw, err := jwt.NewParser().DecodeSegment(parts[0])
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, jwt.ErrTokenMalformed)
	}
	header := map[string]any{}
	if err := json.Unmarshal(raw, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, jwt.ErrTokenMalformed)
	}
	return header, nil
}

// Supported reports whether the signing backend knows alg.
func Supported(alg string) bool {
	return jwt.GetSigningMethod(alg) != nil
}

// Symmetric reports whether alg is an HMAC algorithm.
func Symmetric(alg string) bool {
	_, ok := jwt.GetSigningMethod(alg).(*jwt.SigningMethodHMAC)
	return ok
}

// NormalizeNumbers converts json.Number values (recursively through maps and
// slices) into int64 when integral and float64 otherwise.
func NormalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return i
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	case map[string]any:
		for k, item := range t {
			t[k] = NormalizeNumbers(item)
		}
		return t
	case jwt.MapClaims:
		for k, item := range t {
			t[k] = NormalizeNumbers(item)
		}
		return map[string]any(t)
	case []any:
		for i, item := range t {
			t[i] = NormalizeNumbers(item)
		}
		return t
	default:
		return v
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
