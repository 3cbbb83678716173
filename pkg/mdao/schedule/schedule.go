package schedule

import (
	"slices"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/validate"
)

// ScheduleMPG builds the process graph of a synthesized data graph.
//
// The data graph must pass tiers A and B; it is not modified. The result
// keeps the function nodes with their architecture roles and diagonal
// positions, and the coordinator starts at process step 0. A result that
// fails tier A is reported as an ErrCodeModelConsistency error.
func ScheduleMPG(mdg *mdao.MDG) (*mdao.MPG, error) {
	for _, tier := range []validate.Tier{validate.TierA, validate.TierB} {
		ok, diags, err := validate.Check(mdg.Graph, &mdg.Formulation, mdao.StageMDG, tier)
		if err != nil {
			return nil, err
		}
		if !ok {
			f := &validate.Failure{Stage: mdao.StageMDG, Diagnostics: diags}
			return nil, errs.Wrap(errs.ErrCodePrecondition, f, "cannot schedule an invalid data graph")
		}
	}

	g := mdg.Graph.Subgraph(mdg.Graph.Functions())
	g.SetName("MPG")
	for _, n := range g.Nodes() {
		n.Function.ProcessStep = nil
		n.Function.ConvergerStep = nil
	}
	setProcessStep(g, mdao.CoordinatorName, 0)

	mpg := &mdao.MPG{
		Graph:       g,
		Formulation: mdg.Formulation.Clone(),
		Ordering:    mdg.Ordering.Clone(),
	}
	r := recipe{g: g, data: mdg.Graph, o: mpg.Ordering, conv: mpg.Formulation.ConvergenceType}

	var err error
	switch mpg.Formulation.Architecture {
	case mdao.UnconvergedMDA:
		err = r.unconvergedMDA()
	case mdao.ConvergedMDA:
		err = r.convergedMDA()
	case mdao.IDF:
		err = r.idf()
	case mdao.MDF:
		err = r.converged(mdao.OptimizerName)
	case mdao.UnconvergedOPT:
		err = r.unconverged(mdao.OptimizerName)
	case mdao.UnconvergedDOE:
		err = r.unconverged(mdao.DOEName)
	case mdao.ConvergedDOE:
		err = r.converged(mdao.DOEName)
	default:
		err = errs.Precondition("unknown MDAO architecture %q", mpg.Formulation.Architecture)
	}
	if err != nil {
		return nil, err
	}

	ok, diags, err := validate.Check(g, &mpg.Formulation, mdao.StageMPG, validate.TierA)
	if err != nil {
		return nil, err
	}
	if !ok {
		f := &validate.Failure{Stage: mdao.StageMPG, Diagnostics: diags}
		return nil, errs.Wrap(errs.ErrCodeModelConsistency, f, "scheduled process graph is inconsistent")
	}
	return mpg, nil
}

type recipe struct {
	g    *graph.Graph
	data *graph.Graph
	o    mdao.ArchitectureOrdering
	conv mdao.ConvergenceType
}

const coor = mdao.CoordinatorName

// unconvergedMDA runs the pre-coupling functions once, then the coupled
// functions (in parallel for Jacobi, in order for Gauss-Seidel) and the
// post-coupling functions, and returns to the coordinator. Without a
// convergence type everything runs in a single chain.
func (r recipe) unconvergedMDA() error {
	seq := slices.Concat([]string{coor}, r.o.PreCoupling)
	if r.conv == mdao.NoConvergence {
		seq = slices.Concat(seq, r.o.Coupled, r.o.PostCoupling)
		return addSimpleSequentialProcess(r.g, seq, 0, coor)
	}
	if err := addSimpleSequentialProcess(r.g, seq, 0, ""); err != nil {
		return err
	}
	return r.coupledThenPost(seq[len(seq)-1], coor)
}

// unconverged is the unconverged-OPT and unconverged-DOE recipe: the
// iterator loop wraps the post-iterator, coupled and post-coupling
// functions, and the coordinator wraps the iterator.
func (r recipe) unconverged(iter string) error {
	seq1 := slices.Concat([]string{coor}, r.o.PreIterator, []string{iter})
	if err := addSimpleSequentialProcess(r.g, seq1, 0, ""); err != nil {
		return err
	}
	ps, err := processStep(r.g, iter)
	if err != nil {
		return err
	}
	seq2 := slices.Concat([]string{iter}, r.o.PostIterator)
	if r.conv == mdao.NoConvergence {
		seq2 = slices.Concat(seq2, r.o.Coupled, r.o.PostCoupling)
		if err := addSimpleSequentialProcess(r.g, seq2, ps, iter); err != nil {
			return err
		}
	} else {
		if err := addSimpleSequentialProcess(r.g, seq2, ps, ""); err != nil {
			return err
		}
		if err := r.coupledThenPost(seq2[len(seq2)-1], iter); err != nil {
			return err
		}
	}
	return connectNestedIterators(r.g, coor, iter)
}

// coupledThenPost schedules the coupled functions after from and the
// post-coupling functions after them, closing the loop at end.
func (r recipe) coupledThenPost(from, end string) error {
	ps, err := processStep(r.g, from)
	if err != nil {
		return err
	}
	coupled, post := r.o.Coupled, r.o.PostCoupling
	starts := []string{from}

	switch {
	case len(coupled) == 0:
	case r.conv == mdao.Jacobi:
		closeTo := ""
		if len(post) == 0 {
			closeTo = end
		}
		if err := addParallelProcess(r.g, starts, coupled, ps, closeTo, true, nil); err != nil {
			return err
		}
		starts = coupled
	case r.conv == mdao.GaussSeidel:
		closeTo := ""
		if len(post) == 0 {
			closeTo = end
		}
		if err := addSimpleSequentialProcess(r.g, slices.Concat(starts, coupled), ps, closeTo); err != nil {
			return err
		}
		starts = []string{coupled[len(coupled)-1]}
	}
	if len(post) == 0 && len(coupled) > 0 {
		return nil
	}

	ps, err = processStep(r.g, starts[0])
	if err != nil {
		return err
	}
	return addParallelProcess(r.g, starts, post, ps, end, true, r.data)
}

// convergedMDA runs the pre-coupling functions once, iterates the coupled
// functions under the converger and then runs the post-coupling functions.
func (r recipe) convergedMDA() error {
	conv := mdao.ConvergerName
	seq := slices.Concat([]string{coor}, r.o.PreCoupling, []string{conv})
	if err := addSimpleSequentialProcess(r.g, seq, 0, ""); err != nil {
		return err
	}
	if err := r.converge(); err != nil {
		return err
	}
	cs, err := convergerStep(r.g, conv)
	if err != nil {
		return err
	}
	if len(r.o.PostCoupling) > 0 {
		return addParallelProcess(r.g, []string{conv}, r.o.PostCoupling, cs, coor, true, nil)
	}
	if err := stepEdge(r.g, conv, coor, cs+1); err != nil {
		return err
	}
	setConvergerStep(r.g, coor, cs+1)
	return nil
}

// converged is the MDF and converged-DOE recipe: the converger loop sits
// inside the iterator loop, which sits inside the coordinator.
func (r recipe) converged(iter string) error {
	conv := mdao.ConvergerName
	seq1 := slices.Concat([]string{coor}, r.o.PreIterator, []string{iter})
	if err := addSimpleSequentialProcess(r.g, seq1, 0, ""); err != nil {
		return err
	}
	ps, err := processStep(r.g, iter)
	if err != nil {
		return err
	}
	seq2 := slices.Concat([]string{iter}, r.o.PostIterator, []string{conv})
	if err := addSimpleSequentialProcess(r.g, seq2, ps, ""); err != nil {
		return err
	}
	if err := r.converge(); err != nil {
		return err
	}
	cs, err := convergerStep(r.g, conv)
	if err != nil {
		return err
	}
	if err := addParallelProcess(r.g, []string{conv}, r.o.PostCoupling, cs, iter, true, nil); err != nil {
		return err
	}
	return connectNestedIterators(r.g, coor, iter)
}

// converge iterates the coupled functions under the converger.
func (r recipe) converge() error {
	conv := mdao.ConvergerName
	ps, err := processStep(r.g, conv)
	if err != nil {
		return err
	}
	switch r.conv {
	case mdao.Jacobi:
		return addParallelProcess(r.g, []string{conv}, r.o.Coupled, ps, conv, true, nil)
	case mdao.GaussSeidel:
		return addSimpleSequentialProcess(r.g, slices.Concat([]string{conv}, r.o.Coupled), ps, conv)
	}
	return errs.Precondition("convergence type %q cannot drive %s", r.conv, conv)
}

// idf runs the coupled functions in parallel under the optimizer, followed
// by the post-coupling functions they feed and the consistency constraints.
func (r recipe) idf() error {
	opt := mdao.OptimizerName
	seq1 := slices.Concat([]string{coor}, r.o.PreIterator, []string{opt})
	if err := addSimpleSequentialProcess(r.g, seq1, 0, ""); err != nil {
		return err
	}
	ps, err := processStep(r.g, opt)
	if err != nil {
		return err
	}
	seq2 := slices.Concat([]string{opt}, r.o.PostIterator)
	if err := addSimpleSequentialProcess(r.g, seq2, ps, ""); err != nil {
		return err
	}
	last := seq2[len(seq2)-1]
	if ps, err = processStep(r.g, last); err != nil {
		return err
	}

	starts := []string{last}
	if len(r.o.Coupled) > 0 {
		if err := addParallelProcess(r.g, starts, r.o.Coupled, ps, "", false, nil); err != nil {
			return err
		}
		starts = r.o.Coupled
		if ps, err = processStep(r.g, starts[0]); err != nil {
			return err
		}
	}
	if err := addParallelProcess(r.g, starts, r.o.PostCoupling, ps, opt, true, r.data); err != nil {
		return err
	}
	return connectNestedIterators(r.g, coor, opt)
}
