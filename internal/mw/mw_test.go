package mw

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/TwigBush/roleguard/internal/authz"
	"github.com/TwigBush/roleguard/internal/token"
	"github.com/TwigBush/roleguard/internal/trace"
)

type authorizerFunc func(ctx context.Context, op string) (bool, error)

func (f authorizerFunc) CanAuthorize(ctx context.Context, op string) (bool, error) { return f(ctx, op) }

func okHandler(called *bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*called = true
		w.WriteHeader(http.StatusNoContent)
	})
}

func TestBearerAttachesToken(t *testing.T) {
	t.Parallel()

	var got string
	var ok bool
	h := Bearer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, ok = token.RawFrom(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc.def.ghi")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if !ok || got != "abc.def.ghi" {
		t.Fatalf("RawFrom() = %q, %v", got, ok)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if ok {
		t.Fatalf("Basic credentials attached as access token")
	}
}

func TestRequireOperation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		allowed    bool
		err        error
		wantStatus int
		wantNext   bool
	}{
		{"allowed", true, nil, http.StatusNoContent, true},
		{"denied", false, nil, http.StatusForbidden, false},
		{"role query failure", false, authz.ErrRoleQuery, http.StatusInternalServerError, false},
		{"aborted", false, errors.Join(authz.ErrAborted, context.Canceled), http.StatusServiceUnavailable, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var gotOp string
			a := authorizerFunc(func(_ context.Context, op string) (bool, error) {
				gotOp = op
				return tt.allowed, tt.err
			})
			called := false
			h := RequireOperation(a, "reports.read")(okHandler(&called))

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))

			if gotOp != "reports.read" {
				t.Fatalf("op = %q, want reports.read", gotOp)
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if called != tt.wantNext {
				t.Fatalf("next called = %v, want %v", called, tt.wantNext)
			}
			if tt.name == "aborted" && strings.Contains(rec.Body.String(), "forbidden") {
				t.Fatalf("aborted request reported as a denial: %q", rec.Body.String())
			}
		})
	}
}

func TestAuthorizeAbortAfterDeadline(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	<-ctx.Done()

	a := authorizerFunc(func(ctx context.Context, _ string) (bool, error) {
		return false, errors.Join(authz.ErrAborted, ctx.Err())
	})
	rec := httptest.NewRecorder()
	if Authorize(rec, httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx), a, "reports.read") {
		t.Fatalf("Authorize() = true for an aborted request")
	}
	if rec.Code != http.StatusGatewayTimeout {
		t.Fatalf("status = %d, want 504", rec.Code)
	}
}

func TestRequireOperationDoesNotLeakRoles(t *testing.T) {
	t.Parallel()

	src := map[string]authz.Requirement{"reports.export": {Roles: []string{"admin", "billing"}}}
	g, err := authz.NewGuard(authz.Options{
		Requirements: requirementMap(src),
		Tokens: authz.TokenProviderFunc(func(context.Context) (authz.Token, error) {
			return authz.NewRoles("admin"), nil
		}),
	})
	if err != nil {
		t.Fatalf("NewGuard() error = %v", err)
	}

	called := false
	rec := httptest.NewRecorder()
	RequireOperation(g, "reports.export")(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/export", nil))

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "billing") || strings.Contains(body, "admin") {
		t.Fatalf("denial leaks policy: %s", body)
	}
}

type requirementMap map[string]authz.Requirement

func (m requirementMap) Requirement(op string) (authz.Requirement, bool) {
	r, ok := m[op]
	return r, ok
}

func TestTraceEchoesID(t *testing.T) {
	t.Parallel()

	var seen string
	h := Trace()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = trace.From(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(trace.Header, "abc123")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "abc123" || rec.Header().Get(trace.Header) != "abc123" {
		t.Fatalf("trace id = %q / %q, want abc123", seen, rec.Header().Get(trace.Header))
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if len(seen) != 32 {
		t.Fatalf("generated trace id = %q, want 32 hex chars", seen)
	}
}

func TestLoggerRedactsAuthorization(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	l := slog.New(slog.NewTextHandler(&buf, nil))
	h := Logger(LogOpts{Logger: l, SkipPaths: []string{"/healthz"}})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	req := httptest.NewRequest(http.MethodGet, "/authorize/reports.read", nil)
	req.Header.Set("Authorization", "Bearer secret-token")
	h.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	if strings.Contains(out, "secret-token") {
		t.Fatalf("token leaked into logs:\n%s", out)
	}
	if !strings.Contains(out, "req_detail") || !strings.Contains(out, "***redacted***") {
		t.Fatalf("missing detail line:\n%s", out)
	}

	buf.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if buf.Len() != 0 {
		t.Fatalf("skipped path logged:\n%s", buf.String())
	}
}

func TestNoStore(t *testing.T) {
	t.Parallel()

	called := false
	rec := httptest.NewRecorder()
	NoStore(okHandler(&called)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if !strings.Contains(rec.Header().Get("Cache-Control"), "no-store") {
		t.Fatalf("Cache-Control = %q", rec.Header().Get("Cache-Control"))
	}
	if rec.Header().Get("Vary") != "Authorization" {
		t.Fatalf("Vary = %q, want Authorization", rec.Header().Get("Vary"))
	}
}
