package middleware

import (
	"net/http"

	goJWT "github.com/MrEthical07/goJWT"
)

// RequireAudience returns a guard that only accepts tokens issued for audience.
func RequireAudience(svc Decoder, audience string) func(http.Handler) http.Handler {
	return GuardWith(svc, goJWT.Overrides{Audience: goJWT.Ptr(audience)})
}
