package shadergraph

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-core/engine/resource"
)

// Collect appends every node reachable from self to out in post-order, operands before
// consumers, with each node appearing exactly once.
//
// visited tracks progress across calls: an entry of false marks a node still being expanded,
// true marks a finished node. Seeing a node that is still being expanded means the graph has a
// cycle.
//
// Parameters:
//   - pool: the node pool operands resolve against
//   - visited: shared visit state
//   - out: the collected handles
//   - self: the handle of this node
//
// Returns:
//   - error: ErrMissingNode for an unresolved operand, ErrCycle for a cycle
func (n Node) Collect(pool *resource.Pool[Node], visited map[resource.Handle[Node]]bool, out *[]resource.Handle[Node], self resource.Handle[Node]) error {
	if done, seen := visited[self]; seen {
		if !done {
			return fmt.Errorf("%w: %v", ErrCycle, self)
		}
		return nil
	}
	visited[self] = false

	for _, op := range n.Operands {
		child, ok := pool.Get(op)
		if !ok {
			return fmt.Errorf("%w: %v (operand of %v)", ErrMissingNode, op, self)
		}
		if err := child.Collect(pool, visited, out, op); err != nil {
			return err
		}
	}

	visited[self] = true
	*out = append(*out, self)
	return nil
}
