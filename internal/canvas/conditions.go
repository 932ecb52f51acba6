package canvas

import (
	"fmt"

	"github.com/expr-lang/expr"
)

// ValidateCases compiles every branch case condition on the node and
// returns the first compile error. Conditions are evaluated by the
// backend at run time; the editor only checks that they parse, so a bad
// expression is caught while the user is still editing the node.
// An empty condition is valid and means "always taken".
func ValidateCases(n *Node) error {
	if !n.Type.Branching() {
		return nil
	}
	seen := make(map[string]bool, len(n.Data.Cases))
	for _, c := range n.Data.Cases {
		if c.ID == "" {
			return fmt.Errorf("node %s: branch case with empty id", n.ID)
		}
		if c.ID == DefaultHandle {
			return fmt.Errorf("node %s: case id %q collides with the default handle", n.ID, c.ID)
		}
		if seen[c.ID] {
			return fmt.Errorf("node %s: duplicate branch case %q", n.ID, c.ID)
		}
		seen[c.ID] = true
		if c.Condition == "" {
			continue
		}
		if _, err := expr.Compile(c.Condition, expr.AllowUndefinedVariables()); err != nil {
			return fmt.Errorf("node %s: case %q condition: %w", n.ID, c.ID, err)
		}
	}
	return nil
}
