// Package policy holds the role requirements declared for each protected operation.
package policy

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/TwigBush/roleguard/internal/authz"
)

var (
	ErrEmptyOperation = errors.New("operation id is empty")
	ErrDuplicate      = errors.New("operation already declared")
	ErrEmptyRole      = errors.New("role name is empty")
	ErrMalformedRole  = errors.New("malformed role name")
)

// Table maps operation ids to requirements. Declarations happen at startup;
// lookups are safe from any goroutine.
type Table struct {
	mu  sync.RWMutex
	ops map[string]authz.Requirement
}

func NewTable() *Table {
	return &Table{ops: map[string]authz.Requirement{}}
}

// Declare attaches req to op. An operation can be declared once.
func (t *Table) Declare(op string, req authz.Requirement) error {
	op = strings.TrimSpace(op)
	if op == "" {
		return ErrEmptyOperation
	}
	mode, err := authz.ParseMatchMode(string(req.Match))
	if err != nil {
		return fmt.Errorf("declare %s: %w", op, err)
	}
	roles := make([]string, 0, len(req.Roles))
	for _, r := range req.Roles {
		if r == "" {
			return fmt.Errorf("declare %s: %w", op, ErrEmptyRole)
		}
		// A qualified name needs both halves, or no grant can ever resolve it.
		if ns, role, ok := strings.Cut(r, ":"); ok && (ns == "" || role == "") {
			return fmt.Errorf("declare %s: role %q: %w", op, r, ErrMalformedRole)
		}
		roles = append(roles, r)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if _, ok := t.ops[op]; ok {
		return fmt.Errorf("declare %s: %w", op, ErrDuplicate)
	}
	t.ops[op] = authz.Requirement{Roles: roles, Match: mode}
	return nil
}

// MustDeclare is Declare for wiring code where a bad declaration is a programming error.
func (t *Table) MustDeclare(op string, match authz.MatchMode, roles ...string) {
	if err := t.Declare(op, authz.Requirement{Roles: roles, Match: match}); err != nil {
		panic(err)
	}
}

// Requirement returns a copy of the requirement declared for op.
func (t *Table) Requirement(op string) (authz.Requirement, bool) {
	t.mu.RLock()
	req, ok := t.ops[op]
	t.mu.RUnlock()
	if !ok {
		return authz.Requirement{}, false
	}
	return authz.Requirement{Roles: append([]string(nil), req.Roles...), Match: req.Match}, true
}

// Operations lists declared operation ids in sorted order.
func (t *Table) Operations() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]string, 0, len(t.ops))
	for op := range t.ops {
		out = append(out, op)
	}
	sort.Strings(out)
	return out
}

// Len reports how many operations are declared.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.ops)
}
