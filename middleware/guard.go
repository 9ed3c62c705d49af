package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	goJWT "github.com/MrEthical07/goJWT"
)

// Decoder is the part of goJWT.Service the guards need.
type Decoder interface {
	DecodeContext(ctx context.Context, token string, verify bool, overrides goJWT.Overrides) (goJWT.Claims, error)
}

type claimsContextKey struct{}

// RequestIDHeader is propagated into audit events when present.
const RequestIDHeader = "X-Request-ID"

// ClaimsFromContext returns the claims stored by a guard.
func ClaimsFromContext(ctx context.Context) (goJWT.Claims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(goJWT.Claims)
	return claims, ok
}

// Guard rejects requests without a valid bearer token using the service's
// base configuration.
func Guard(svc Decoder) func(http.Handler) http.Handler {
	return GuardWith(svc, goJWT.Overrides{})
}

// GuardWith is Guard with per-route configuration overrides.
func GuardWith(svc Decoder, overrides goJWT.Overrides) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if svc == nil {
				unauthorized(w)
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				unauthorized(w)
				return
			}

			ctx := requestContext(r)
			claims, err := svc.DecodeContext(ctx, token, true, overrides)
			if err != nil {
				unauthorized(w)
				return
			}

			ctx = context.WithValue(ctx, claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestContext(r *http.Request) context.Context {
	ctx := r.Context()
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		ctx = goJWT.WithClientIP(ctx, host)
	} else if r.RemoteAddr != "" {
		ctx = goJWT.WithClientIP(ctx, r.RemoteAddr)
	}
	if id := r.Header.Get(RequestIDHeader); id != "" {
		ctx = goJWT.WithRequestID(ctx, id)
	}
	return ctx
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("WWW-Authenticate", `Bearer error="invalid_token"`)
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func bearerToken(value string) (string, bool) {
	const bearer = "bearer "
	if len(value) < len(bearer) || !strings.EqualFold(value[:len(bearer)], bearer) {
		return "", false
	}

	token := strings.TrimSpace(value[len(bearer):])
	if token == "" {
		return "", false
	}

	return token, true
}
