package mw

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/TwigBush/roleguard/internal/httpx"
	"github.com/TwigBush/roleguard/internal/trace"
)

type LogOpts struct {
	Logger        *slog.Logger
	SkipPaths     []string
	RedactHeaders []string // always includes Authorization
}

// Logger writes one summary line per request and a detail line for failures.
func Logger(opts LogOpts) func(http.Handler) http.Handler {
	l := opts.Logger
	if l == nil {
		l = slog.Default()
	}
	skip := map[string]struct{}{}
	for _, p := range opts.SkipPaths {
		skip[p] = struct{}{}
	}
	redact := map[string]struct{}{"authorization": {}}
	for _, h := range opts.RedactHeaders {
		redact[strings.ToLower(h)] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := httpx.NewRecorder(w)
			next.ServeHTTP(rec, r)
			dur := time.Since(start)

			// one-liner summary
			l.Info("req",
				"trace", trace.From(r.Context()),
				"m", r.Method,
				"path", r.URL.Path,
				"status", rec.Status,
				"ms", dur.Milliseconds(),
				"bytes", rec.Bytes,
			)

			// 403s are ordinary denials; only log detail for the rest
			if rec.Status >= 400 && rec.Status != http.StatusForbidden {
				h := map[string]string{}
				for k, vv := range r.Header {
					if len(vv) == 0 {
						continue
					}
					vl := vv[0]
					if _, ok := redact[strings.ToLower(k)]; ok || strings.HasPrefix(strings.ToLower(k), "x-api-key") {
						vl = "***redacted***"
					}
					h[k] = vl
				}
				l.Error("req_detail",
					"trace", trace.From(r.Context()),
					"m", r.Method, "path", r.URL.Path,
					"status", rec.Status, "ms", dur.Milliseconds(),
					"headers", h,
				)
			}
		})
	}
}
