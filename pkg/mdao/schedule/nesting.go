package schedule

import (
	"slices"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// Nesting describes the loop structure of a process graph.
type Nesting struct {
	// IterativeNodes are the optimizer, converger and DOE blocks.
	IterativeNodes []string `json:"iterative_nodes" yaml:"iterative_nodes"`
	// IterNesting maps each top-level iterator to the iterators nested in it.
	IterNesting map[string][]string `json:"iter_nesting" yaml:"iter_nesting"`
	// FunctionGrouping maps each iterator to the functions inside its loop.
	FunctionGrouping map[string][]string `json:"function_grouping" yaml:"function_grouping"`
	// NestedFunctions are the functions grouped under nested iterators.
	NestedFunctions []string `json:"nested_functions" yaml:"nested_functions"`
}

// NestedProcessOrdering derives the loop structure of a process graph from
// its simple cycles.
//
// An iterator on a cycle through the coordinator is top-level; every other
// iterator is nested. A cycle holding one top-level and one nested iterator
// nests the latter under the former. Functions on a cycle are grouped under
// its iterator, the nested one when there is one; pre-coupling and
// pre-iterator functions are never grouped. Node lists follow the graph's
// insertion order.
//
// At most limit cycles are enumerated (no cap for limit <= 0); beyond that
// a *errors.ScaleLimitError is returned. A cycle with two top-level or two
// nested iterators is an ErrCodeModelConsistency error.
func NestedProcessOrdering(mpg *mdao.MPG, limit int) (*Nesting, error) {
	g := mpg.Graph
	iterative := g.FindNodes(func(n *graph.Node) bool {
		return n.Function != nil && n.Function.ArchitectureRole.IsIterator()
	})
	ignored := g.FindNodes(func(n *graph.Node) bool {
		if n.Function == nil {
			return false
		}
		r := n.Function.ArchitectureRole
		return r == graph.BlockPreCouplingAnalysis || r == graph.BlockPreIteratorAnalysis
	})

	cycles, err := g.SimpleCycles(limit)
	if err != nil {
		return nil, err
	}

	top := make(map[string]bool)
	for _, c := range cycles {
		if !slices.Contains(c, coor) {
			continue
		}
		if f, _ := g.Function(coor); f.DiagonalPosition == nil || *f.DiagonalPosition != 0 {
			return nil, errs.ModelConsistency("%s is expected at diagonal position 0", coor)
		}
		for _, id := range c {
			if slices.Contains(iterative, id) {
				top[id] = true
			}
		}
	}

	nesting := make(map[string]map[string]bool)
	grouping := make(map[string]map[string]bool)
	group := func(iter string, members []string, skip ...string) {
		if grouping[iter] == nil {
			grouping[iter] = make(map[string]bool)
		}
		for _, id := range members {
			if slices.Contains(skip, id) || slices.Contains(ignored, id) || id == coor {
				continue
			}
			grouping[iter][id] = true
		}
	}

	for _, c := range cycles {
		var tops, nested []string
		for _, id := range c {
			switch {
			case top[id]:
				tops = append(tops, id)
			case slices.Contains(iterative, id):
				nested = append(nested, id)
			}
		}
		if len(tops) > 1 {
			return nil, errs.ModelConsistency("cycle %v holds more than one top-level iterator: %v", c, tops)
		}
		if len(nested) > 1 {
			return nil, errs.ModelConsistency("cycle %v holds more than one nested iterator: %v", c, nested)
		}
		switch {
		case len(tops) == 1 && len(nested) == 1:
			if nesting[tops[0]] == nil {
				nesting[tops[0]] = make(map[string]bool)
			}
			nesting[tops[0]][nested[0]] = true
			group(tops[0], c, tops[0], nested[0])
		case len(nested) == 1:
			group(nested[0], c, nested[0])
		case len(tops) == 1:
			group(tops[0], c, tops[0])
		}
	}

	out := &Nesting{
		IterativeNodes:   iterative,
		IterNesting:      make(map[string][]string, len(nesting)),
		FunctionGrouping: make(map[string][]string, len(grouping)),
		NestedFunctions:  []string{},
	}
	inOrder := func(set map[string]bool) []string {
		return g.FindNodes(func(n *graph.Node) bool { return set[n.ID] })
	}
	for iter, set := range nesting {
		out.IterNesting[iter] = inOrder(set)
	}
	for iter, set := range grouping {
		out.FunctionGrouping[iter] = inOrder(set)
	}
	for _, iter := range inOrder(top) {
		for _, nested := range out.IterNesting[iter] {
			out.NestedFunctions = append(out.NestedFunctions, out.FunctionGrouping[nested]...)
		}
	}
	return out, nil
}
