package mw

import (
	"net/http"

	"github.com/TwigBush/roleguard/internal/httpx"
	"github.com/TwigBush/roleguard/internal/token"
)

// Bearer attaches the Authorization credential to the request context for the
// guard to resolve. It does not verify the token; that is the job of the
// authentication layer mounted in front of roleguard.
func Bearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if raw, ok := httpx.ExtractToken(r.Header.Get("Authorization")); ok {
			r = r.WithContext(token.WithRaw(r.Context(), raw))
		}
		next.ServeHTTP(w, r)
	})
}
