package types

// RoleList is the {"roles": [...]} shape used by realm_access and resource_access.
type RoleList struct {
	Roles []string `json:"roles"`
}

// IntrospectionResult is an RFC 7662 response, with the Keycloak role claims.
type IntrospectionResult struct {
	Active         bool                `json:"active"`
	Sub            string              `json:"sub,omitempty"` // subject if known
	Iss            string              `json:"iss,omitempty"` // issuer AS
	ClientID       string              `json:"client_id,omitempty"`
	Azp            string              `json:"azp,omitempty"`
	Username       string              `json:"username,omitempty"`
	Scope          string              `json:"scope,omitempty"`
	Exp            int64               `json:"exp,omitempty"` // unix seconds
	Iat            int64               `json:"iat,omitempty"` // unix seconds
	RealmAccess    RoleList            `json:"realm_access,omitempty"`
	ResourceAccess map[string]RoleList `json:"resource_access,omitempty"`
	Roles          []string            `json:"roles,omitempty"` // flat role claim from non-Keycloak servers
}
