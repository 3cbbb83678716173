package graph

import (
	"slices"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
)

// DefaultCycleLimit bounds [Graph.SimpleCycles] when callers have no
// configured limit of their own.
const DefaultCycleLimit = 10000

// SimpleCycles enumerates every elementary circuit of the graph. Each cycle
// is reported once, as the list of its nodes starting from the member that
// comes first in insertion order. Cycles are ordered by that first member.
//
// The search keeps its own stack, so recursion depth never grows with the
// graph. Because the number of circuits can be exponential, limit caps the
// result: once more than limit cycles are found the search stops and returns
// a *errors.ScaleLimitError. A limit of zero or less means no cap.
func (g *Graph) SimpleCycles(limit int) ([][]string, error) {
	pos := PosMap(g.order)
	var cycles [][]string

	type frame struct {
		id   string
		next int
	}

	for si, start := range g.order {
		path := []string{start}
		onPath := map[string]bool{start: true}
		stack := []frame{{id: start}}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			succ := g.outgoing[top.id]
			if top.next >= len(succ) {
				delete(onPath, top.id)
				stack = stack[:len(stack)-1]
				path = path[:len(path)-1]
				continue
			}
			w := succ[top.next]
			top.next++

			if w == start {
				cycles = append(cycles, slices.Clone(path))
				if limit > 0 && len(cycles) > limit {
					return nil, &errs.ScaleLimitError{Limit: limit, What: "simple cycles"}
				}
				continue
			}
			if pos[w] <= si || onPath[w] {
				continue
			}
			onPath[w] = true
			path = append(path, w)
			stack = append(stack, frame{id: w})
		}
	}
	return cycles, nil
}
