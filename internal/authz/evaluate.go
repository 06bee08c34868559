package authz

import "fmt"

// Evaluate applies req to tok.
//
// A nil requirement always allows and a nil token always denies. With no roles,
// MatchAll allows and MatchAny denies. Errors from tok.HasRole are returned
// wrapped in ErrRoleQuery; they are never read as a missing role.
func Evaluate(req *Requirement, tok Token) (Decision, error) {
	if req == nil {
		return Decision{Allowed: true, Reason: ReasonNoRequirement}, nil
	}
	if tok == nil {
		return Decision{Reason: ReasonNoToken}, nil
	}

	switch req.Match {
	case MatchAll, "":
		for _, r := range req.Roles {
			ok, err := tok.HasRole(r)
			if err != nil {
				return Decision{}, fmt.Errorf("%w: role %q: %w", ErrRoleQuery, r, err)
			}
			if !ok {
				return Decision{Reason: ReasonMissingRole}, nil
			}
		}
		return Decision{Allowed: true, Reason: ReasonRolesHeld}, nil

	case MatchAny:
		for _, r := range req.Roles {
			ok, err := tok.HasRole(r)
			if err != nil {
				return Decision{}, fmt.Errorf("%w: role %q: %w", ErrRoleQuery, r, err)
			}
			if ok {
				return Decision{Allowed: true, Reason: ReasonRolesHeld}, nil
			}
		}
		return Decision{Reason: ReasonNoMatchingRole}, nil

	default:
		return Decision{}, fmt.Errorf("%w: %q", ErrUnknownMatchMode, req.Match)
	}
}
