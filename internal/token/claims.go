package token

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TwigBush/roleguard/internal/types"
)

// accessClaims is the payload of a Keycloak-style access token.
type accessClaims struct {
	jwt.RegisteredClaims
	AuthorizedParty string                    `json:"azp,omitempty"`
	RealmAccess     types.RoleList            `json:"realm_access,omitempty"`
	ResourceAccess  map[string]types.RoleList `json:"resource_access,omitempty"`
	Roles           []string                  `json:"roles,omitempty"`
}

// Claims reads roles straight from the JWT payload. The signature is not
// checked: the token must already have been verified by the authentication
// layer in front of roleguard.
type Claims struct {
	ClientID string
	parser   *jwt.Parser
}

func NewClaims(clientID string) *Claims {
	return &Claims{ClientID: clientID, parser: jwt.NewParser()}
}

func (c *Claims) Grant(ctx context.Context, raw string) (*Grant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var ac accessClaims
	if _, _, err := c.parser.ParseUnverified(raw, &ac); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	var exp int64
	if ac.ExpiresAt != nil {
		exp = ac.ExpiresAt.Unix()
	}
	return newGrant(ac.Subject, c.ClientID, ac.RealmAccess.Roles, ac.Roles, ac.ResourceAccess, exp), nil
}
