package policy

import (
	"fmt"
	"strings"

	"github.com/TwigBush/roleguard/internal/authz"
	"github.com/TwigBush/roleguard/internal/config"
)

// Load builds a table from configured operations.
func Load(ops []config.Operation) (*Table, error) {
	t := NewTable()
	for i, op := range ops {
		mode, err := authz.ParseMatchMode(op.Match)
		if err != nil {
			return nil, fmt.Errorf("operations[%d] %s: %w", i, op.ID, err)
		}
		roles := make([]string, 0, len(op.Roles))
		for _, r := range op.Roles {
			roles = append(roles, strings.TrimSpace(r))
		}
		if err := t.Declare(op.ID, authz.Requirement{Roles: roles, Match: mode}); err != nil {
			return nil, fmt.Errorf("operations[%d]: %w", i, err)
		}
	}
	return t, nil
}
