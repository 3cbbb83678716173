package validate

import (
	"slices"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

func (c *checker) tierA() {
	functions := c.g.Functions()
	variables := c.g.Variables()
	if c.g.NodeCount() != len(functions)+len(variables) {
		c.fail("", "graph has %d nodes but %d functions and %d variables",
			c.g.NodeCount(), len(functions), len(variables))
	}
	for _, n := range c.g.Nodes() {
		if err := errs.ValidateNodeID(n.ID); err != nil {
			c.fail(n.ID, "%s", errs.UserMessage(err))
		}
		if (n.Function == nil) == (n.Variable == nil) {
			c.fail(n.ID, "node %s must carry exactly one attribute block", n.ID)
		}
	}

	switch c.stage {
	case mdao.StageFPG:
		c.fpgAttributes(functions)
	case mdao.StageMDG:
		c.mdgAttributes(functions, variables)
	case mdao.StageMPG:
		c.mpgAttributes(functions, variables)
	}
}

func (c *checker) fpgAttributes(functions []string) {
	for _, v := range mdao.SystemOutputs(c.g) {
		if attrs, _ := c.g.Variable(v); attrs.ProblemRole == "" {
			c.fail(v, "output variable %s has no problem role", v)
		}
	}
	for _, fn := range functions {
		if attrs, _ := c.g.Function(fn); attrs.ProblemRole == "" {
			c.fail(fn, "function %s has no problem role", fn)
		}
	}
}

func (c *checker) mdgAttributes(functions, variables []string) {
	for _, v := range variables {
		if c.g.InDegree(v) == 0 {
			c.fail(v, "variable %s is not produced by any function", v)
		}
		if c.g.OutDegree(v) == 0 {
			c.fail(v, "variable %s is not consumed by any function", v)
		}
	}
	c.requireCoordinator()
	c.requireArchitectureRoles(functions)
}

func (c *checker) mpgAttributes(functions, variables []string) {
	if len(variables) > 0 {
		c.fail("", "process graph contains variables: %v", variables)
	}
	for _, fn := range functions {
		if attrs, _ := c.g.Function(fn); attrs.ProcessStep == nil {
			c.fail(fn, "function %s has no process step", fn)
		}
	}
	c.requireArchitectureRoles(functions)
	c.requireCoordinator()
	for _, e := range c.g.Edges() {
		if e.ProcessStep == nil {
			c.fail(e.From, "edge %s → %s has no process step", e.From, e.To)
		}
	}
}

func (c *checker) requireCoordinator() {
	if _, ok := c.g.Function(mdao.CoordinatorName); !ok {
		c.fail(mdao.CoordinatorName, "%s block is missing", mdao.CoordinatorName)
	}
}

func (c *checker) requireArchitectureRoles(functions []string) {
	for _, fn := range functions {
		if attrs, _ := c.g.Function(fn); attrs.ArchitectureRole == "" {
			c.fail(fn, "function %s has no architecture role", fn)
		}
	}
}

func (c *checker) tierB() {
	f := c.f
	if !f.Architecture.Valid() {
		c.fail("", "unknown MDAO architecture %q", f.Architecture)
	}
	if !f.ConvergenceType.Valid() {
		c.fail("", "unknown convergence type %q", f.ConvergenceType)
	}
	// Inserted blocks are not part of the function order.
	functions := c.g.FindNodes(func(n *graph.Node) bool {
		return n.IsFunction() && !slices.Contains(mdao.ReservedNames, n.ID)
	})
	if !sameSet(f.FunctionOrder, functions) {
		c.fail("", "function order %v does not match the graph functions %v", f.FunctionOrder, functions)
	}
	if f.FunctionOrdering == nil {
		c.fail("", "function ordering has not been computed")
	}
	if f.Architecture.HasDOE() {
		c.doeSettings()
	}
}

func (c *checker) doeSettings() {
	s := c.f.DOESettings
	if s == nil {
		c.fail("", "DOE settings are missing")
		return
	}
	if s.Method == "" {
		c.fail("", "DOE method is missing")
		return
	}
	if !s.Method.Valid() {
		c.fail("", "unknown DOE method %q", s.Method)
		return
	}
	if s.Method.NeedsRuns() {
		switch {
		case s.Runs == nil:
			c.fail("", "%s needs a run count", s.Method)
		case *s.Runs < 0:
			c.fail("", "invalid run count %d", *s.Runs)
		}
	}
	if s.Method.NeedsSeed() {
		switch {
		case s.Seed == nil:
			c.fail("", "%s needs a seed", s.Method)
		case *s.Seed < 0:
			c.fail("", "invalid seed %d", *s.Seed)
		}
	}
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, s := range a {
		seen[s]++
	}
	for _, s := range b {
		seen[s]--
		if seen[s] < 0 {
			return false
		}
	}
	return true
}
