package token

// Static builds a Grant from role names written the way requirements are,
// e.g. "editor", "realm:admin" or "billing:viewer". It backs offline checks.
func Static(clientID string, roles ...string) (*Grant, error) {
	g := &Grant{ClientID: clientID}
	for _, name := range roles {
		ns, role, err := g.resolve(name)
		if err != nil {
			return nil, err
		}
		if ns == realmNamespace {
			g.Realm = append(g.Realm, role)
			continue
		}
		if g.Resource == nil {
			g.Resource = map[string][]string{}
		}
		g.Resource[ns] = append(g.Resource[ns], role)
	}
	return g, nil
}
