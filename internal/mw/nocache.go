package mw

import "net/http"

// NoStore keeps proxies and clients from caching authorization answers.
func NoStore(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, max-age=0")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		// answers differ per caller
		w.Header().Add("Vary", "Authorization")
		next.ServeHTTP(w, r)
	})
}
