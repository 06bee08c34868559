// Package token turns the raw access token attached to a request into a Grant
// whose role claims the authz guard can query.
package token

import (
	"context"
	"errors"
	"strings"

	"github.com/TwigBush/roleguard/internal/authz"
	"github.com/TwigBush/roleguard/internal/types"
)

// realmNamespace prefixes realm roles, as in "realm:admin".
const realmNamespace = "realm"

var (
	ErrMalformedToken = errors.New("malformed access token")
	ErrMalformedRole  = errors.New("malformed role name")
)

// Grant holds the roles proven by one access token.
//
// Role names passed to HasRole are resolved as follows:
//
//	realm:<role>    realm role
//	<client>:<role> role of resource <client>
//	<role>          role of ClientID, or realm role when ClientID is empty
type Grant struct {
	Subject   string              `json:"sub,omitempty"`
	ClientID  string              `json:"client_id,omitempty"`
	Realm     []string            `json:"realm,omitempty"`
	Resource  map[string][]string `json:"resource,omitempty"`
	ExpiresAt int64               `json:"exp,omitempty"` // unix seconds, 0 if unknown
}

func (g *Grant) HasRole(name string) (bool, error) {
	ns, role, err := g.resolve(name)
	if err != nil {
		return false, err
	}
	if ns == realmNamespace {
		return contains(g.Realm, role), nil
	}
	return contains(g.Resource[ns], role), nil
}

func (g *Grant) resolve(name string) (string, string, error) {
	ns, role, qualified := strings.Cut(name, ":")
	if !qualified {
		if name == "" {
			return "", "", ErrMalformedRole
		}
		if g.ClientID == "" {
			return realmNamespace, name, nil
		}
		return g.ClientID, name, nil
	}
	if ns == "" || role == "" {
		return "", "", ErrMalformedRole
	}
	return ns, role, nil
}

func contains(xs []string, s string) bool {
	for _, x := range xs {
		if x == s {
			return true
		}
	}
	return false
}

// newGrant folds Keycloak-style claims into a Grant. Flat roles count as realm roles.
func newGrant(sub, clientID string, realm, flat []string, resource map[string]types.RoleList, exp int64) *Grant {
	g := &Grant{
		Subject:   sub,
		ClientID:  clientID,
		Realm:     append(append([]string(nil), realm...), flat...),
		ExpiresAt: exp,
	}
	if len(resource) > 0 {
		g.Resource = make(map[string][]string, len(resource))
		for client, rl := range resource {
			g.Resource[client] = append([]string(nil), rl.Roles...)
		}
	}
	return g
}

// Grants resolves a raw access token into a Grant. This is the one place where
// authorization may wait on a remote service, so implementations must honour ctx.
type Grants interface {
	Grant(ctx context.Context, raw string) (*Grant, error)
}

type rawKey struct{}

// WithRaw attaches the raw access token to ctx.
func WithRaw(ctx context.Context, raw string) context.Context {
	return context.WithValue(ctx, rawKey{}, raw)
}

// RawFrom returns the raw access token attached to ctx, if any.
func RawFrom(ctx context.Context) (string, bool) {
	v, _ := ctx.Value(rawKey{}).(string)
	return v, v != ""
}

// Provider is the authz.TokenProvider backed by a Grants implementation.
type Provider struct {
	Grants Grants
}

func (p Provider) TokenContext(ctx context.Context) (authz.Token, error) {
	raw, ok := RawFrom(ctx)
	if !ok {
		return nil, authz.ErrNoToken
	}
	g, err := p.Grants.Grant(ctx, raw)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, authz.ErrTokenRejected
	}
	return g, nil
}
