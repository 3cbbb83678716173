package mdao

import (
	"slices"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
)

// CouplingMatrix returns the n×n matrix M where M[i][j] counts the variables
// that order[i] produces and order[j] consumes directly. Transitive data flow
// through intermediate functions is not counted.
//
// Every id in order must be a distinct function node of g.
func CouplingMatrix(g *graph.Graph, order []string) ([][]int, error) {
	pos := make(map[string]int, len(order))
	for i, id := range order {
		if _, ok := g.Function(id); !ok {
			return nil, errs.Precondition("function order entry %q is not a function of the graph", id)
		}
		if _, dup := pos[id]; dup {
			return nil, errs.Precondition("function %q appears twice in the function order", id)
		}
		pos[id] = i
	}

	m := make([][]int, len(order))
	for i := range m {
		m[i] = make([]int, len(order))
	}
	for i, producer := range order {
		for _, v := range g.Successors(producer) {
			if _, ok := g.Variable(v); !ok {
				continue
			}
			for _, consumer := range g.Successors(v) {
				if j, ok := pos[consumer]; ok {
					m[i][j]++
				}
			}
		}
	}
	return m, nil
}

// AssignFunctionRoles classifies the ordered functions from a coupling
// matrix. A nonzero cell below the diagonal (j < i) is feedback from i to
// an earlier function j. With left the smallest such column and low the
// largest such row, functions before left are pre-coupling, functions
// from left to low are coupled, and the rest are post-coupling. Without
// feedback every function is pre-coupling.
func AssignFunctionRoles(matrix [][]int, order []string) FunctionOrdering {
	left, low := len(order), -1
	for i := range matrix {
		for j := 0; j < i && j < len(matrix[i]); j++ {
			if matrix[i][j] > 0 {
				left = min(left, j)
				low = max(low, i)
			}
		}
	}
	if low < 0 {
		return FunctionOrdering{
			PreCoupling:  slices.Clone(order),
			Coupled:      []string{},
			PostCoupling: []string{},
		}
	}
	return FunctionOrdering{
		PreCoupling:  slices.Clone(order[:left]),
		Coupled:      slices.Clone(order[left : low+1]),
		PostCoupling: slices.Clone(order[low+1:]),
	}
}

// AddFunctionProblemRoles computes the function ordering from the problem
// formulation's function order, stores it in the formulation and writes the
// problem role of every function. Running it again with the same order and
// edges yields the same result.
func (p *FPG) AddFunctionProblemRoles() error {
	order := p.Formulation.FunctionOrder
	functions := p.Graph.Functions()
	if !samePermutation(order, functions) {
		return errs.Precondition("function order %v is not a permutation of the graph functions %v", order, functions)
	}
	m, err := CouplingMatrix(p.Graph, order)
	if err != nil {
		return err
	}
	fo := AssignFunctionRoles(m, order)

	assign := func(ids []string, role graph.FunctionRole) {
		for _, id := range ids {
			f, _ := p.Graph.Function(id)
			f.ProblemRole = role
		}
	}
	assign(fo.PreCoupling, graph.RolePreCoupling)
	assign(fo.Coupled, graph.RoleCoupled)
	assign(fo.PostCoupling, graph.RolePostCoupling)
	p.Formulation.FunctionOrdering = &fo
	return nil
}

// MarkAsDesignVariables tags nodes as design variables. Each of lower,
// nominal, upper and samples is either nil or has one entry per node.
// Nothing is written unless every node and list passes the checks.
func (p *FPG) MarkAsDesignVariables(nodes []string, lower, nominal, upper []float64, samples [][]float64) error {
	if err := p.checkVariables(nodes); err != nil {
		return err
	}
	if err := checkLengths(len(nodes), map[string]int{
		"lower bounds":   lenOrMinus(lower),
		"nominal values": lenOrMinus(nominal),
		"upper bounds":   lenOrMinus(upper),
		"samples":        lenOrMinusSamples(samples),
	}); err != nil {
		return err
	}
	for i, id := range nodes {
		v, _ := p.Graph.Variable(id)
		v.ProblemRole = graph.RoleDesignVariable
		if lower != nil {
			v.Lower = graph.Float(lower[i])
		}
		if nominal != nil {
			v.Nominal = graph.Float(nominal[i])
		}
		if upper != nil {
			v.Upper = graph.Float(upper[i])
		}
		if samples != nil {
			v.Samples = slices.Clone(samples[i])
		}
	}
	return nil
}

// MarkAsObjective tags a single node as the objective.
func (p *FPG) MarkAsObjective(node string) error {
	if err := p.checkVariables([]string{node}); err != nil {
		return err
	}
	v, _ := p.Graph.Variable(node)
	v.ProblemRole = graph.RoleObjective
	return nil
}

// MarkAsConstraints tags nodes as constraints with optional bounds.
func (p *FPG) MarkAsConstraints(nodes []string, lower, upper []float64) error {
	if err := p.checkVariables(nodes); err != nil {
		return err
	}
	if err := checkLengths(len(nodes), map[string]int{
		"lower bounds": lenOrMinus(lower),
		"upper bounds": lenOrMinus(upper),
	}); err != nil {
		return err
	}
	for i, id := range nodes {
		v, _ := p.Graph.Variable(id)
		v.ProblemRole = graph.RoleConstraint
		if lower != nil {
			v.Lower = graph.Float(lower[i])
		}
		if upper != nil {
			v.Upper = graph.Float(upper[i])
		}
	}
	return nil
}

// MarkAsQOIs tags nodes as quantities of interest.
func (p *FPG) MarkAsQOIs(nodes []string) error {
	if err := p.checkVariables(nodes); err != nil {
		return err
	}
	for _, id := range nodes {
		v, _ := p.Graph.Variable(id)
		v.ProblemRole = graph.RoleQOI
	}
	return nil
}

func (p *FPG) checkVariables(nodes []string) error {
	for _, id := range nodes {
		n, ok := p.Graph.Node(id)
		if !ok {
			return errs.Precondition("node %q is not present in the graph", id)
		}
		if !n.IsVariable() {
			return errs.Precondition("node %q is a %s, expected a variable", id, n.Category)
		}
	}
	return nil
}

func checkLengths(want int, lists map[string]int) error {
	// Iterate in a fixed order so the reported list is deterministic.
	for _, name := range []string{"lower bounds", "nominal values", "upper bounds", "samples"} {
		got, ok := lists[name]
		if ok && got >= 0 && got != want {
			return errs.Precondition("%d %s given for %d nodes", got, name, want)
		}
	}
	return nil
}

func lenOrMinus(xs []float64) int {
	if xs == nil {
		return -1
	}
	return len(xs)
}

func lenOrMinusSamples(xs [][]float64) int {
	if xs == nil {
		return -1
	}
	return len(xs)
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}
