package validate

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// tierC runs the semantic checks in order. Each group only runs when every
// earlier group passed, so a wrong architecture is reported before the
// variable markings it would invalidate.
func (c *checker) tierC() {
	for _, step := range []func(){
		c.convergenceMatchesArchitecture,
		c.couplingWhereConverged,
		c.couplingWhereUnconverged,
		c.preCouplingFeedforward,
		c.variableMarkings,
	} {
		if !c.ok() {
			return
		}
		step()
	}
}

func (c *checker) convergenceMatchesArchitecture() {
	arch, conv := c.f.Architecture, c.f.ConvergenceType
	switch {
	case arch.HasConverger() && conv == mdao.NoConvergence,
		arch == mdao.IDF && conv != mdao.NoConvergence:
		c.fail("", "convergence type %s does not fit architecture %s", conv, arch)
	}
}

// coupled reports whether the coupled functions are coupled in the sense the
// convergence type iterates: Gauss-Seidel only resolves feedback, Jacobi
// resolves any coupling.
func (c *checker) coupled(conv mdao.ConvergenceType) bool {
	functions := c.f.FunctionOrdering.Coupled
	if conv == mdao.GaussSeidel {
		return mdao.HasFeedback(c.g, functions)
	}
	return mdao.HasCoupling(c.g, functions)
}

func (c *checker) couplingWhereConverged() {
	alt := map[mdao.Architecture]mdao.Architecture{
		mdao.ConvergedMDA: mdao.UnconvergedMDA,
		mdao.MDF:          mdao.UnconvergedOPT,
		mdao.IDF:          mdao.UnconvergedOPT,
		mdao.ConvergedDOE: mdao.UnconvergedDOE,
	}
	arch := c.f.Architecture
	suggest, ok := alt[arch]
	if !ok {
		return
	}
	conv := c.f.ConvergenceType
	if arch == mdao.IDF {
		conv = mdao.Jacobi
	}
	if !c.coupled(conv) {
		c.fail("", "expected coupling is missing among the coupled functions. Architecture should be set to %q", suggest)
	}
}

func (c *checker) couplingWhereUnconverged() {
	if !c.f.Architecture.Unconverged() {
		return
	}
	coupled := c.f.FunctionOrdering.Coupled
	if !c.f.AllowUnconvergedCouplings && mdao.HasFeedback(c.g, coupled) {
		c.fail("", "feedback coupling is present but %s leaves it unconverged. "+
			"Use an architecture with convergence (e.g. %s) or allow unconverged couplings", c.f.Architecture, mdao.MDF)
		return
	}
	if conv := c.f.ConvergenceType; conv != mdao.NoConvergence && !c.coupled(conv) {
		c.fail("", "convergence type %s has no coupling to act on. Use convergence type %q", conv, mdao.NoConvergence)
	}
}

func (c *checker) preCouplingFeedforward() {
	pre := c.f.FunctionOrdering.PreCoupling
	for _, cp := range mdao.DirectCouplings(c.g, pre, mdao.Backward) {
		c.fail(cp.Variable, "pre-coupling function %s feeds %s back to %s", cp.Producer, cp.Variable, cp.Consumer)
	}
}

func (c *checker) variableMarkings() {
	arch := c.f.Architecture
	if arch.HasOptimizer() {
		c.optimizerMarkings()
		return
	}
	if len(mdao.VariablesWithRole(c.g, graph.RoleQOI)) == 0 {
		c.fail("", "no quantities of interest are marked")
	}
	if arch.HasDOE() {
		c.doeMarkings()
	}
}

func (c *checker) optimizerMarkings() {
	pre := c.f.FunctionOrdering.PreCoupling
	desvars := mdao.VariablesWithRole(c.g, graph.RoleDesignVariable)
	if len(desvars) == 0 {
		c.fail("", "no design variables are marked")
	}
	for _, dv := range desvars {
		for _, src := range c.g.Predecessors(dv) {
			if !slices.Contains(pre, src) {
				c.fail(dv, "design variable %s is produced by %s, which is not a pre-coupling function", dv, src)
			}
		}
		if c.g.OutDegree(dv) == 0 {
			c.fail(dv, "design variable %s is not consumed by any function", dv)
		}
	}

	objectives := mdao.VariablesWithRole(c.g, graph.RoleObjective)
	if len(objectives) != 1 {
		c.fail("", "%d objectives are marked, exactly one is required", len(objectives))
	}
	constraints := mdao.VariablesWithRole(c.g, graph.RoleConstraint)
	for _, v := range slices.Concat(objectives, constraints) {
		if in := c.g.InDegree(v); in != 1 {
			c.fail(v, "%s has %d producers, expected 1", v, in)
		}
		if out := c.g.OutDegree(v); out != 0 {
			c.fail(v, "%s has %d consumers, expected 0", v, out)
		}
	}
	if !c.ok() {
		return
	}

	objFunc := c.g.Predecessors(objectives[0])[0]
	var conFuncs []string
	for _, v := range constraints {
		if src := c.g.Predecessors(v)[0]; !slices.Contains(conFuncs, src) {
			conFuncs = append(conFuncs, src)
		}
	}
	if slices.Contains(conFuncs, objFunc) {
		c.fail(objFunc, "function %s produces both the objective and a constraint", objFunc)
		return
	}
	if arch := c.f.Architecture; arch == mdao.IDF || arch == mdao.MDF {
		if optFuncs := append([]string{objFunc}, conFuncs...); mdao.HasCoupling(c.g, optFuncs) {
			c.fail("", "objective and constraint functions %v depend on each other", optFuncs)
		}
	}
}

func (c *checker) doeMarkings() {
	desvars := mdao.VariablesWithRole(c.g, graph.RoleDesignVariable)
	if len(desvars) == 0 {
		c.fail("", "no design variables are marked")
		return
	}
	s := c.f.DOESettings
	if s == nil || s.Method != mdao.CustomTable {
		return
	}
	lengths := make(map[int][]string)
	for _, dv := range desvars {
		v, _ := c.g.Variable(dv)
		if v.Samples == nil {
			c.fail(dv, "design variable %s has no samples", dv)
			continue
		}
		lengths[len(v.Samples)] = append(lengths[len(v.Samples)], dv)
	}
	if len(lengths) > 1 {
		c.fail("", "sample lists differ in length: %s", describeLengths(lengths))
	}
}

func describeLengths(lengths map[int][]string) string {
	keys := slices.Sorted(maps.Keys(lengths))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%d for %v", k, lengths[k])
	}
	return strings.Join(parts, ", ")
}
