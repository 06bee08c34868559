package mw

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/TwigBush/roleguard/internal/authz"
	"github.com/TwigBush/roleguard/internal/httpx"
	"github.com/TwigBush/roleguard/internal/trace"
)

// Authorizer is the part of authz.Guard the HTTP adapters need.
type Authorizer interface {
	CanAuthorize(ctx context.Context, op string) (bool, error)
}

// RequireOperation runs the guard for op before next. Denials get a bare 403;
// the response never says which roles were missing.
func RequireOperation(a Authorizer, op string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !Authorize(w, r, a, op) {
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// Authorize writes the rejection for op and reports false when the request may
// not proceed. An aborted request gets 504 when its deadline passed and 503
// otherwise, never an implicit 200.
func Authorize(w http.ResponseWriter, r *http.Request, a Authorizer, op string) bool {
	ok, err := a.CanAuthorize(r.Context(), op)
	switch {
	case errors.Is(err, authz.ErrAborted):
		slog.Debug("authz_aborted", "trace", trace.From(r.Context()), "op", op, "err", err)
		if errors.Is(r.Context().Err(), context.DeadlineExceeded) {
			httpx.WriteError(w, r, http.StatusGatewayTimeout, "timeout")
		} else {
			httpx.WriteError(w, r, http.StatusServiceUnavailable, "request_aborted")
		}
		return false
	case err != nil:
		slog.Error("authz_failed", "trace", trace.From(r.Context()), "op", op, "err", err)
		httpx.WriteError(w, r, http.StatusInternalServerError, "authorization_error")
		return false
	case !ok:
		httpx.WriteError(w, r, http.StatusForbidden, "forbidden")
		return false
	}
	return true
}
