package synth

import (
	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/validate"
)

// SynthesizeMDG turns a fundamental problem graph into an MDAO data graph
// for the architecture and convergence type of its problem formulation.
//
// The input is not modified. Problem roles are recomputed on a copy, which
// must then pass every validation tier; a failure is reported as an
// ErrCodeArchitectureMismatch error wrapping a *validate.Failure. The
// synthesized graph is checked again before it is returned.
func SynthesizeMDG(fpg *mdao.FPG) (*mdao.MDG, error) {
	if err := checkReservedNames(fpg.Graph); err != nil {
		return nil, err
	}
	p := fpg.Clone()
	if err := p.AddFunctionProblemRoles(); err != nil {
		return nil, err
	}
	ok, diags, err := validate.FPG(p)
	if err != nil {
		return nil, err
	}
	if !ok {
		f := &validate.Failure{Stage: mdao.StageFPG, Diagnostics: diags}
		return nil, errs.Wrap(errs.ErrCodeArchitectureMismatch, f,
			"problem graph does not fit architecture %s", p.Formulation.Architecture)
	}

	ordering, err := p.ArchitectureOrdering()
	if err != nil {
		return nil, err
	}
	m := &mdao.MDG{Graph: p.Graph, Formulation: p.Formulation, Ordering: ordering}
	m.Graph.SetName("MDG")
	if err := insertBlocks(m); err != nil {
		return nil, err
	}
	if err := connect(m); err != nil {
		return nil, err
	}

	for _, tier := range []validate.Tier{validate.TierA, validate.TierB} {
		ok, diags, err := validate.Check(m.Graph, &m.Formulation, mdao.StageMDG, tier)
		if err != nil {
			return nil, err
		}
		if !ok {
			f := &validate.Failure{Stage: mdao.StageMDG, Diagnostics: diags}
			return nil, errs.Wrap(errs.ErrCodeModelConsistency, f, "synthesized data graph is inconsistent")
		}
	}
	return m, nil
}

// connect rewires the graph for its architecture.
func connect(m *mdao.MDG) error {
	g, f, o := m.Graph, m.Formulation, m.Ordering
	conv := f.ConvergenceType
	qois := mdao.VariablesWithRole(g, graph.RoleQOI)
	desvars := mdao.VariablesWithRole(g, graph.RoleDesignVariable)
	constraints := mdao.VariablesWithRole(g, graph.RoleConstraint)
	objective := ""
	if obj := mdao.VariablesWithRole(g, graph.RoleObjective); len(obj) > 0 {
		objective = obj[0]
	}

	var steps []func() error
	switch f.Architecture {
	case mdao.UnconvergedMDA:
		steps = []func() error{
			func() error { return cutUnconverged(m, false) },
			func() error { return ConnectQOIs(m, qois, mdao.CoordinatorName, true) },
		}
	case mdao.ConvergedMDA:
		steps = []func() error{
			func() error { return ConnectConverger(m, mdao.ConvergerName, conv, o.Coupled, true) },
			func() error { return ConnectQOIs(m, qois, mdao.CoordinatorName, true) },
		}
	case mdao.IDF:
		steps = []func() error{
			func() error { return ConnectConverger(m, mdao.OptimizerName, conv, o.Coupled, true) },
			func() error { return ConnectOptimizer(m, mdao.OptimizerName, desvars, objective, constraints) },
			func() error { return ConnectQOIs(m, qois, mdao.CoordinatorName, true) },
		}
	case mdao.MDF:
		steps = []func() error{
			func() error { return ConnectConverger(m, mdao.ConvergerName, conv, o.Coupled, true) },
			func() error { return ConnectOptimizer(m, mdao.OptimizerName, desvars, objective, constraints) },
			func() error { return ConnectQOIs(m, qois, mdao.CoordinatorName, true) },
		}
	case mdao.UnconvergedOPT:
		steps = []func() error{
			func() error { return cutUnconverged(m, true) },
			func() error { return ConnectOptimizer(m, mdao.OptimizerName, desvars, objective, constraints) },
			func() error { return ConnectQOIs(m, qois, mdao.CoordinatorName, true) },
		}
	case mdao.UnconvergedDOE:
		steps = []func() error{
			func() error { return cutUnconverged(m, false) },
			func() error { return ConnectDOEBlock(m, mdao.DOEName, desvars, qois) },
		}
	case mdao.ConvergedDOE:
		steps = []func() error{
			func() error { return ConnectConverger(m, mdao.ConvergerName, conv, o.Coupled, false) },
			func() error { return ConnectDOEBlock(m, mdao.DOEName, desvars, qois) },
		}
	default:
		return errs.Precondition("unknown MDAO architecture %q", f.Architecture)
	}
	steps = append(steps, func() error { return ConnectCoordinator(m) })

	for _, step := range steps {
		if err := step(); err != nil {
			return err
		}
	}
	return nil
}

// cutUnconverged removes the couplings an unconverged architecture is
// allowed to leave open: every coupling for Jacobi, feedback for
// Gauss-Seidel. Without permission, or without a convergence type, the
// graph is left as is.
func cutUnconverged(m *mdao.MDG, includeFinal bool) error {
	if !m.Formulation.AllowUnconvergedCouplings {
		return nil
	}
	switch m.Formulation.ConvergenceType {
	case mdao.Jacobi:
		return ManipulateCouplingNodes(m, m.Ordering.Coupled, mdao.Both, "", includeFinal)
	case mdao.GaussSeidel:
		return ManipulateCouplingNodes(m, m.Ordering.Coupled, mdao.Backward, "", includeFinal)
	}
	return nil
}
