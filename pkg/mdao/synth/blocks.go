package synth

import (
	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// checkReservedNames fails when the graph already uses a block name.
func checkReservedNames(g *graph.Graph) error {
	for _, name := range mdao.ReservedNames {
		if g.HasNode(name) {
			return errs.Precondition("node id %q is reserved for an architecture block", name)
		}
	}
	return nil
}

// insertBlocks adds the architecture blocks of m's architecture, assigns an
// architecture role to every function and numbers the functions along the
// diagonal: coordinator, pre-coupling or pre-iterator functions, optimizer
// or DOE, post-iterator functions, converger, coupled functions,
// post-coupling functions.
func insertBlocks(m *mdao.MDG) error {
	g, o := m.Graph, m.Ordering
	arch := m.Formulation.Architecture
	pos := 0

	place := func(id string, role graph.BlockRole) error {
		if !g.HasNode(id) {
			if err := g.AddFunction(id, graph.FunctionAttrs{}); err != nil {
				return errs.Wrap(errs.ErrCodeInternal, err, "insert %s", id)
			}
		}
		f, ok := g.Function(id)
		if !ok {
			return errs.Precondition("%q is not a function of the graph", id)
		}
		f.ArchitectureRole = role
		f.DiagonalPosition = graph.Int(pos)
		pos++
		return nil
	}
	placeAll := func(ids []string, role graph.BlockRole) error {
		for _, id := range ids {
			if err := place(id, role); err != nil {
				return err
			}
		}
		return nil
	}

	if err := place(mdao.CoordinatorName, graph.BlockCoordinator); err != nil {
		return err
	}
	if err := placeAll(o.PreCoupling, graph.BlockPreCouplingAnalysis); err != nil {
		return err
	}
	if o.Iterated {
		if err := placeAll(o.PreIterator, graph.BlockPreIteratorAnalysis); err != nil {
			return err
		}
		var err error
		switch {
		case arch.HasOptimizer():
			err = place(mdao.OptimizerName, graph.BlockOptimizer)
		case arch.HasDOE():
			err = place(mdao.DOEName, graph.BlockDOE)
		}
		if err != nil {
			return err
		}
		if err := placeAll(o.PostIterator, graph.BlockPostIteratorAnalysis); err != nil {
			return err
		}
	}
	if arch.HasConverger() {
		if err := place(mdao.ConvergerName, graph.BlockConverger); err != nil {
			return err
		}
	}
	if err := placeAll(o.Coupled, graph.BlockCoupledAnalysis); err != nil {
		return err
	}
	for _, id := range o.PostCoupling {
		role := graph.BlockPostCouplingAnalysis
		if id == mdao.ConsistencyFunctionName {
			role = graph.BlockConsistencyConstraint
		}
		if err := place(id, role); err != nil {
			return err
		}
	}
	return nil
}
