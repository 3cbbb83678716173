package synth

import (
	"slices"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// ManipulateCouplingNodes cuts the couplings among functions that match dir
// and feeds the consumers from new copies instead.
//
// For a coupling variable v produced by A and consumed by B, the edge v→B is
// removed and an initial guess copy of v is created. How the copy reaches B
// depends on converger:
//
//   - "" (no converger): the initial guess feeds B directly.
//   - the converger block: initial guess → converger → coupling copy → B,
//     and v feeds the converger.
//   - the optimizer (IDF): initial guess → optimizer → coupling copy → B,
//     and v and its coupling copy feed the consistency constraint function,
//     which produces one consistency variable per coupling.
//
// When v has a problem role or includeFinal is set, its final value is kept:
// with a converger A also produces a final value copy, without one v itself
// is kept. Otherwise v is dropped once nothing consumes it any more.
func ManipulateCouplingNodes(m *mdao.MDG, functions []string, dir mdao.Direction, converger string, includeFinal bool) error {
	g := m.Graph
	if err := requireNodes(g, functions...); err != nil {
		return err
	}
	switch converger {
	case "":
	case mdao.ConvergerName:
		if err := requireNodes(g, converger); err != nil {
			return err
		}
	case mdao.OptimizerName:
		if err := requireNodes(g, converger, mdao.ConsistencyFunctionName); err != nil {
			return err
		}
	default:
		return errs.Precondition("%q cannot converge couplings", converger)
	}

	for _, c := range mdao.DirectCouplings(g, functions, dir) {
		v := c.Variable
		g.RemoveEdge(v, c.Consumer)
		guess, err := copyNodeAs(g, v, graph.CopyInitialGuessCoupling)
		if err != nil {
			return err
		}

		if converger == "" {
			mustEdge(g, guess, c.Consumer)
		} else {
			mustEdge(g, guess, converger)
			cp, err := copyNodeAs(g, v, graph.CopyCoupling)
			if err != nil {
				return err
			}
			mustEdge(g, converger, cp)
			mustEdge(g, cp, c.Consumer)
			if converger == mdao.ConvergerName {
				mustEdge(g, v, converger)
			} else {
				if err := addConsistencyConstraint(g, v, cp); err != nil {
					return err
				}
			}
		}

		attrs, _ := g.Variable(v)
		keep := false
		if attrs.ProblemRole != "" || includeFinal {
			if converger != "" {
				final, err := copyNodeAs(g, v, graph.CopyFinalCoupling)
				if err != nil {
					return err
				}
				mustEdge(g, c.Producer, final)
			} else {
				keep = true
			}
		}
		if mdao.IsOutput(g, v) && !keep {
			g.RemoveNode(v)
		}
	}
	return nil
}

func addConsistencyConstraint(g *graph.Graph, v, cp string) error {
	cc := mdao.ConsistencyFunctionName
	mustEdge(g, v, cc)
	mustEdge(g, cp, cc)
	gc, err := copyNodeAs(g, v, graph.CopyConsistency)
	if err != nil {
		return err
	}
	mustEdge(g, cc, gc)
	f, _ := g.Function(cc)
	if f.Settings == nil {
		f.Settings = &graph.BlockSettings{}
	}
	if !slices.Contains(f.Settings.ConsistencyVariables, gc) {
		f.Settings.ConsistencyVariables = append(f.Settings.ConsistencyVariables, gc)
	}
	return nil
}

// ConnectConverger wraps converger around the coupled functions. With the
// converger block, Gauss-Seidel cuts feedback only and Jacobi cuts every
// coupling. With the optimizer (IDF) every coupling is cut regardless of
// conv.
func ConnectConverger(m *mdao.MDG, converger string, conv mdao.ConvergenceType, functions []string, includeFinal bool) error {
	if err := requireNodes(m.Graph, converger); err != nil {
		return err
	}
	dir := mdao.Both
	if converger != mdao.OptimizerName {
		switch conv {
		case mdao.GaussSeidel:
			dir = mdao.Backward
		case mdao.Jacobi:
		default:
			return errs.Precondition("convergence type %q cannot drive %s", conv, converger)
		}
	}
	return ManipulateCouplingNodes(m, functions, dir, converger, includeFinal)
}

// ConnectOptimizer makes optimizer drive the design variables and consume
// the objective and constraints.
//
// Each design variable gets an initial guess copy feeding the optimizer and
// a final value copy produced by it; a pre-iterator function that produced
// the design variable now produces the initial guess. The objective and
// constraints feed the optimizer and get a final value copy produced by
// their source function. Consistency variables already in the graph join
// the constraints with bounds of ±[mdao.ConsistencyBound], and the coupling
// they stand for joins the design variables.
func ConnectOptimizer(m *mdao.MDG, optimizer string, designVars []string, objective string, constraints []string) error {
	g := m.Graph
	if err := requireNodes(g, optimizer); err != nil {
		return err
	}
	if err := requireVariables(g, designVars...); err != nil {
		return err
	}
	if err := requireVariables(g, objective); err != nil {
		return err
	}
	if err := requireVariables(g, constraints...); err != nil {
		return err
	}

	settings := &graph.BlockSettings{
		DesignVariables:     make(map[string]graph.Bounds, len(designVars)),
		ObjectiveVariable:   objective,
		ConstraintVariables: make(map[string]graph.Bounds, len(constraints)),
	}
	for _, dv := range designVars {
		v, _ := g.Variable(dv)
		settings.DesignVariables[dv] = graph.Bounds{Lower: v.Lower, Nominal: v.Nominal, Upper: v.Upper}
	}
	for _, cv := range constraints {
		v, _ := g.Variable(cv)
		settings.ConstraintVariables[cv] = graph.Bounds{Lower: v.Lower, Upper: v.Upper}
	}

	for _, dv := range designVars {
		guess, err := copyNodeAs(g, dv, graph.CopyInitialGuessDesign)
		if err != nil {
			return err
		}
		for _, src := range g.Predecessors(dv) {
			if !slices.Contains(m.Ordering.PreIterator, src) {
				return errs.Precondition("design variable %s is produced by %s inside the optimizer loop", dv, src)
			}
			g.RemoveEdge(src, dv)
			mustEdge(g, src, guess)
		}
		mustEdge(g, guess, optimizer)
		mustEdge(g, optimizer, dv)
		final, err := copyNodeAs(g, dv, graph.CopyFinalDesign)
		if err != nil {
			return err
		}
		mustEdge(g, optimizer, final)
	}

	for _, v := range append([]string{objective}, constraints...) {
		srcs := g.Predecessors(v)
		if len(srcs) == 0 {
			return errs.Precondition("%s is not produced by any function", v)
		}
		mustEdge(g, v, optimizer)
		final, err := copyNodeAs(g, v, graph.CopyFinalOutput)
		if err != nil {
			return err
		}
		mustEdge(g, srcs[0], final)
	}

	for _, gc := range mdao.VariablesWithCopyRole(g, graph.CopyConsistency) {
		attrs, _ := g.Variable(gc)
		settings.ConstraintVariables[gc] = graph.Bounds{
			Lower: graph.Float(-mdao.ConsistencyBound),
			Upper: graph.Float(mdao.ConsistencyBound),
		}
		b := graph.Bounds{}
		if rel, ok := g.Variable(attrs.RelatedTo); ok {
			b.Lower, b.Upper = rel.Lower, rel.Upper
		}
		settings.DesignVariables[attrs.RelatedTo] = b
		mustEdge(g, gc, optimizer)
	}

	f, _ := g.Function(optimizer)
	f.Settings = settings
	return nil
}

// ConnectDOEBlock makes doe sample the design variables and collect the
// quantities of interest.
//
// Each design variable gets a DOE input sample copy feeding the block, and
// the block produces the design variable. A pre-iterator function that
// produced the design variable loses that edge; if the variable is left
// unconnected the function produces the input sample copy instead. Each
// quantity of interest feeds the block, which produces a DOE output sample
// copy.
//
// For the custom design table method every design variable needs a sample
// list of the same length. The table (one row per run, one column per
// design variable) is stored in the DOE settings of the formulation.
func ConnectDOEBlock(m *mdao.MDG, doe string, designVars, qois []string) error {
	g := m.Graph
	if err := requireNodes(g, doe); err != nil {
		return err
	}
	if err := requireVariables(g, designVars...); err != nil {
		return err
	}
	if err := requireVariables(g, qois...); err != nil {
		return err
	}

	settings := &graph.BlockSettings{
		DesignVariables:      make(map[string]graph.Bounds, len(designVars)),
		QuantitiesOfInterest: slices.Clone(qois),
	}
	for _, dv := range designVars {
		v, _ := g.Variable(dv)
		settings.DesignVariables[dv] = graph.Bounds{
			Lower:   v.Lower,
			Nominal: v.Nominal,
			Upper:   v.Upper,
			Samples: slices.Clone(v.Samples),
		}
	}
	if s := m.Formulation.DOESettings; s != nil && s.Method == mdao.CustomTable {
		table, err := doeTable(g, designVars)
		if err != nil {
			return err
		}
		s.Table = table
		s.TableOrder = slices.Clone(designVars)
	}

	for _, dv := range designVars {
		input, err := copyNodeAs(g, dv, graph.CopyDOEInputSamples)
		if err != nil {
			return err
		}
		for _, src := range g.Predecessors(dv) {
			if !slices.Contains(m.Ordering.PreIterator, src) {
				continue
			}
			g.RemoveEdge(src, dv)
			if mdao.IsHole(g, dv) {
				mustEdge(g, src, input)
			}
		}
		mustEdge(g, input, doe)
		mustEdge(g, doe, dv)
	}
	for _, q := range qois {
		mustEdge(g, q, doe)
		out, err := copyNodeAs(g, q, graph.CopyDOEOutputSamples)
		if err != nil {
			return err
		}
		mustEdge(g, doe, out)
	}

	f, _ := g.Function(doe)
	f.Settings = settings
	return nil
}

func doeTable(g *graph.Graph, designVars []string) ([][]float64, error) {
	runs := -1
	for _, dv := range designVars {
		v, _ := g.Variable(dv)
		if v.Samples == nil {
			return nil, errs.Precondition("design variable %s has no samples for the custom design table", dv)
		}
		switch {
		case runs < 0:
			runs = len(v.Samples)
		case len(v.Samples) != runs:
			return nil, errs.Precondition("design variable %s has %d samples, expected %d", dv, len(v.Samples), runs)
		}
	}
	table := make([][]float64, max(runs, 0))
	for j := range table {
		table[j] = make([]float64, len(designVars))
		for i, dv := range designVars {
			v, _ := g.Variable(dv)
			table[j][i] = v.Samples[j]
		}
	}
	return table, nil
}

// ConnectCoordinator wires the remaining system inputs as coordinator
// outputs and the remaining system outputs as coordinator inputs.
func ConnectCoordinator(m *mdao.MDG) error {
	g := m.Graph
	if err := requireNodes(g, mdao.CoordinatorName); err != nil {
		return err
	}
	for _, v := range mdao.SystemInputs(g) {
		mustEdge(g, mdao.CoordinatorName, v)
	}
	for _, v := range mdao.SystemOutputs(g) {
		mustEdge(g, v, mdao.CoordinatorName)
	}
	return nil
}

// ConnectQOIs feeds each quantity of interest into target. With preferFinal
// a final value copy of the quantity is connected instead of the variable
// itself when one exists.
func ConnectQOIs(m *mdao.MDG, qois []string, target string, preferFinal bool) error {
	g := m.Graph
	if err := requireNodes(g, target); err != nil {
		return err
	}
	if err := requireVariables(g, qois...); err != nil {
		return err
	}
	finalRoles := []graph.CopyRole{graph.CopyFinalCoupling, graph.CopyFinalDesign, graph.CopyFinalOutput}
	for _, q := range qois {
		src := q
		if preferFinal {
			for _, n := range g.Nodes() {
				if n.Variable != nil && n.Variable.RelatedTo == q && slices.Contains(finalRoles, n.Variable.ArchitectureRole) {
					src = n.ID
				}
			}
		}
		mustEdge(g, src, target)
	}
	return nil
}

func requireNodes(g *graph.Graph, ids ...string) error {
	for _, id := range ids {
		if !g.HasNode(id) {
			return errs.Precondition("node %q is not present in the graph", id)
		}
	}
	return nil
}

func requireVariables(g *graph.Graph, ids ...string) error {
	for _, id := range ids {
		if _, ok := g.Variable(id); !ok {
			return errs.Precondition("%q is not a variable of the graph", id)
		}
	}
	return nil
}

// mustEdge adds an edge between nodes the caller has already checked.
func mustEdge(g *graph.Graph, from, to string) {
	if err := g.AddEdge(from, to); err != nil {
		panic("synth: " + from + " → " + to + ": " + err.Error())
	}
}
