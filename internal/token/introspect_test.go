package token

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TwigBush/roleguard/internal/authz"
)

func introspectServer(t *testing.T, h http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func TestIntrospectorActive(t *testing.T) {
	t.Parallel()

	srv := introspectServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))
		assert.Equal(t, "roleguard/dev", r.Header.Get("User-Agent"))
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "roleguard", user)
		assert.Equal(t, "s3cret", pass)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "raw-token", r.PostForm.Get("token"))
		assert.Equal(t, "access_token", r.PostForm.Get("token_type_hint"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"active": true,
			"sub": "alice",
			"exp": 1893456000,
			"realm_access": {"roles": ["admin"]},
			"resource_access": {"web-app": {"roles": ["editor"]}}
		}`))
	})

	in, err := NewIntrospector(IntrospectorConfig{
		URL:          srv.URL,
		ClientID:     "roleguard",
		ClientSecret: "s3cret",
		RoleClientID: "web-app",
	})
	require.NoError(t, err)

	g, err := in.Grant(context.Background(), "raw-token")
	require.NoError(t, err)
	assert.Equal(t, "alice", g.Subject)
	assert.Equal(t, int64(1893456000), g.ExpiresAt)

	ok, err := g.HasRole("editor")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = g.HasRole("realm:admin")
	assert.True(t, ok)
}

func TestIntrospectorInactive(t *testing.T) {
	t.Parallel()

	srv := introspectServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"active": false}`))
	})
	in, err := NewIntrospector(IntrospectorConfig{URL: srv.URL})
	require.NoError(t, err)

	_, err = in.Grant(context.Background(), "revoked")
	assert.ErrorIs(t, err, authz.ErrTokenRejected)
}

func TestIntrospectorFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		h    http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusBadGateway) }},
		{"unauthorized client", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusUnauthorized) }},
		{"garbage body", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(`<html>`)) }},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			in, err := NewIntrospector(IntrospectorConfig{URL: introspectServer(t, tt.h).URL})
			require.NoError(t, err)

			_, err = in.Grant(context.Background(), "x")
			assert.ErrorIs(t, err, ErrIntrospection)
			assert.NotErrorIs(t, err, authz.ErrTokenRejected)
		})
	}
}

func TestIntrospectorOwnTimeoutIsNotAbort(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := introspectServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	in, err := NewIntrospector(IntrospectorConfig{URL: srv.URL, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = in.Grant(context.Background(), "x")
	assert.ErrorIs(t, err, ErrIntrospection)
	assert.False(t, errors.Is(err, context.DeadlineExceeded))
}

func TestIntrospectorCallerCancellation(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := introspectServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	in, err := NewIntrospector(IntrospectorConfig{URL: srv.URL, Timeout: time.Minute})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = in.Grant(ctx, "x")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// Through the guard the same failure is an abort, not a decision.
	g, gerr := authz.NewGuard(authz.Options{
		Requirements: requirementsFor{"reports.read": {Roles: []string{"admin"}}},
		Tokens:       Provider{Grants: in},
	})
	require.NoError(t, gerr)
	ctx2, cancel2 := context.WithTimeout(WithRaw(context.Background(), "x"), 20*time.Millisecond)
	defer cancel2()
	ok, err := g.CanAuthorize(ctx2, "reports.read")
	assert.False(t, ok)
	assert.ErrorIs(t, err, authz.ErrAborted)
}

func TestNewIntrospectorRejectsBadURL(t *testing.T) {
	t.Parallel()

	for _, u := range []string{"", "not a url", "/relative/only"} {
		_, err := NewIntrospector(IntrospectorConfig{URL: u})
		assert.Error(t, err, u)
	}
}
