// Package authz decides whether a caller may invoke a protected operation based on
// the roles declared for that operation and the roles proven by the caller's token.
package authz

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// MatchMode selects how a requirement's role set is matched against a token.
type MatchMode string

const (
	// MatchAll requires every listed role.
	MatchAll MatchMode = "all"
	// MatchAny requires at least one listed role.
	MatchAny MatchMode = "any"
)

// ParseMatchMode accepts "all" or "any" in any case. An empty string means MatchAll.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MatchAll):
		return MatchAll, nil
	case string(MatchAny):
		return MatchAny, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMatchMode, s)
	}
}

// Requirement is the role policy declared for one operation.
type Requirement struct {
	Roles []string
	Match MatchMode
}

// Decision is the outcome of one authorization check. Reason is for logs and
// metrics only and must not be returned to the caller.
type Decision struct {
	Allowed bool
	Reason  string
}

// Decision reasons.
const (
	ReasonNoRequirement  = "no_requirement"
	ReasonNoToken        = "no_token"
	ReasonTokenRejected  = "token_rejected"
	ReasonRolesHeld      = "roles_held"
	ReasonMissingRole    = "missing_role"
	ReasonNoMatchingRole = "no_matching_role"
)

// Token is a verified, request-scoped bearer of role claims.
// HasRole must be free of side effects.
type Token interface {
	HasRole(name string) (bool, error)
}

// TokenProvider returns the token context for the request carried by ctx.
// It returns ErrNoToken when the request has none.
type TokenProvider interface {
	TokenContext(ctx context.Context) (Token, error)
}

// TokenProviderFunc adapts a function to TokenProvider.
type TokenProviderFunc func(ctx context.Context) (Token, error)

func (f TokenProviderFunc) TokenContext(ctx context.Context) (Token, error) { return f(ctx) }

// RequirementSource returns the requirement declared for an operation, if any.
type RequirementSource interface {
	Requirement(op string) (Requirement, bool)
}

var (
	// ErrNoToken means no token was attached to the request.
	ErrNoToken = errors.New("no access token")
	// ErrTokenRejected means a token was attached but the grant backend refused it.
	ErrTokenRejected = errors.New("access token rejected")
	// ErrRoleQuery means the role claims could not be queried. It is not a denial.
	ErrRoleQuery = errors.New("role query failed")
	// ErrAborted means the request was cancelled before a decision was reached.
	ErrAborted = errors.New("authorization aborted")

	ErrUnknownMatchMode = errors.New("unknown match mode")
)
