package httpx

import (
	"net"
	"net/http"
)

// BaseURL is the scheme and host the client used to reach us, as reported by
// the proxy in front when there is one.
func BaseURL(r *http.Request) string {
	scheme := "http"
	if r.Header.Get("X-Forwarded-Proto") == "https" || r.TLS != nil {
		scheme = "https"
	}
	host := r.Header.Get("X-Forwarded-Host")
	if host == "" {
		host = r.Host
	}
	// If Host is empty, fall back to server addr
	if host == "" {
		h, p, _ := net.SplitHostPort(r.URL.Host)
		if h == "" {
			h = "localhost"
		}
		if p == "" {
			p = "80"
		}
		host = net.JoinHostPort(h, p)
	}
	return scheme + "://" + host
}
