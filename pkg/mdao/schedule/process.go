package schedule

import (
	"slices"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
)

// addSimpleSequentialProcess chains nodes in order. nodes[0] is the start,
// which already has its step; nodes[1:] get start+1, start+2 and so on,
// with an edge from each predecessor. A non-empty closeTo receives an edge
// from the last node at the following step and that step as its converger
// step.
func addSimpleSequentialProcess(g *graph.Graph, nodes []string, start int, closeTo string) error {
	if len(nodes) == 0 {
		return errs.Precondition("sequential process needs at least one node")
	}
	if err := requireFunctions(g, nodes...); err != nil {
		return err
	}
	from, step := nodes[0], start+1
	for _, n := range nodes[1:] {
		setProcessStep(g, n, step)
		if err := stepEdge(g, from, n, step); err != nil {
			return err
		}
		from = n
		step++
	}
	if closeTo == "" {
		return nil
	}
	if err := requireFunctions(g, closeTo); err != nil {
		return err
	}
	if err := stepEdge(g, from, closeTo, step); err != nil {
		return err
	}
	setConvergerStep(g, closeTo, step)
	return nil
}

// addParallelProcess starts every function in funcs at start+1 from the
// start nodes. With a data graph, a start node is only linked to functions
// it feeds directly; a function fed by none of them is linked to all.
//
// A non-empty end receives an edge from every function at start+2. That
// step becomes the converger step of end when endInConverger is set, and
// its process step otherwise. With no functions the start nodes link to
// end directly at start+1.
func addParallelProcess(g *graph.Graph, starts, funcs []string, start int, end string, endInConverger bool, data *graph.Graph) error {
	if len(starts) == 0 {
		return errs.Precondition("parallel process needs at least one start node")
	}
	if err := requireFunctions(g, starts...); err != nil {
		return err
	}
	if err := requireFunctions(g, funcs...); err != nil {
		return err
	}
	if end != "" {
		if err := requireFunctions(g, end); err != nil {
			return err
		}
	}

	if len(funcs) == 0 {
		if end == "" {
			return nil
		}
		for _, s := range starts {
			if err := stepEdge(g, s, end, start+1); err != nil {
				return err
			}
		}
		closeStep(g, end, start+1, endInConverger)
		return nil
	}

	for _, fn := range funcs {
		from := starts
		if data != nil {
			from = slices.DeleteFunc(slices.Clone(starts), func(s string) bool {
				return !feedsDirectly(data, s, fn)
			})
			if len(from) == 0 {
				from = starts
			}
		}
		setProcessStep(g, fn, start+1)
		for _, s := range from {
			if err := stepEdge(g, s, fn, start+1); err != nil {
				return err
			}
		}
		if end != "" {
			if err := stepEdge(g, fn, end, start+2); err != nil {
				return err
			}
		}
	}
	if end != "" {
		closeStep(g, end, start+2, endInConverger)
	}
	return nil
}

// connectNestedIterators closes the loop of slave into master one step
// after slave's converger step.
func connectNestedIterators(g *graph.Graph, master, slave string) error {
	if err := requireFunctions(g, master, slave); err != nil {
		return err
	}
	f, _ := g.Function(slave)
	if f.ConvergerStep == nil {
		return errs.Precondition("iterator %s has no converger step", slave)
	}
	step := *f.ConvergerStep + 1
	if err := stepEdge(g, slave, master, step); err != nil {
		return err
	}
	setConvergerStep(g, master, step)
	return nil
}

// feedsDirectly reports whether a variable produced by from is consumed
// by to.
func feedsDirectly(data *graph.Graph, from, to string) bool {
	for _, v := range data.Successors(from) {
		if data.HasEdge(v, to) {
			return true
		}
	}
	return false
}

func closeStep(g *graph.Graph, id string, step int, converger bool) {
	if converger {
		setConvergerStep(g, id, step)
	} else {
		setProcessStep(g, id, step)
	}
}

func setProcessStep(g *graph.Graph, id string, step int) {
	f, _ := g.Function(id)
	f.ProcessStep = graph.Int(step)
}

func setConvergerStep(g *graph.Graph, id string, step int) {
	f, _ := g.Function(id)
	f.ConvergerStep = graph.Int(step)
}

func stepEdge(g *graph.Graph, from, to string, step int) error {
	if err := g.AddEdge(from, to); err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "process edge %s → %s", from, to)
	}
	return g.SetEdgeStep(from, to, step)
}

// processStep returns the process step of id, failing when it has none.
func processStep(g *graph.Graph, id string) (int, error) {
	f, ok := g.Function(id)
	if !ok {
		return 0, errs.Precondition("function %q is not present in the process graph", id)
	}
	if f.ProcessStep == nil {
		return 0, errs.ModelConsistency("function %s has no process step yet", id)
	}
	return *f.ProcessStep, nil
}

func convergerStep(g *graph.Graph, id string) (int, error) {
	f, ok := g.Function(id)
	if !ok {
		return 0, errs.Precondition("function %q is not present in the process graph", id)
	}
	if f.ConvergerStep == nil {
		return 0, errs.ModelConsistency("iterator %s has no converger step yet", id)
	}
	return *f.ConvergerStep, nil
}

func requireFunctions(g *graph.Graph, ids ...string) error {
	for _, id := range ids {
		if _, ok := g.Function(id); !ok {
			return errs.Precondition("function %q is not present in the process graph", id)
		}
	}
	return nil
}
