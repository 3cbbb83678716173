// Package mdaotest provides small MDAO problems for tests.
package mdaotest

import (
	"testing"

	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// Func declares a function with its consumed and produced variables.
type Func struct {
	ID  string
	In  []string
	Out []string
}

// Problem declares a repository graph plus its formulation and markings.
type Problem struct {
	Functions   []Func
	Order       []string
	Formulation mdao.ProblemFormulation

	DesignVariables []string
	Lower, Upper    []float64
	Samples         [][]float64
	Objective       string
	Constraints     []string
	QOIs            []string
}

// Repository builds the raw graph of p. Variables are added in the order
// they are first mentioned.
func (p Problem) Repository(t testing.TB) *graph.Graph {
	t.Helper()
	g := graph.New("repository")
	for _, f := range p.Functions {
		if err := g.AddFunction(f.ID, graph.FunctionAttrs{}); err != nil {
			t.Fatalf("add function %s: %v", f.ID, err)
		}
	}
	addVar := func(id string) {
		if !g.HasNode(id) {
			if err := g.AddVariable(id, graph.VariableAttrs{}); err != nil {
				t.Fatalf("add variable %s: %v", id, err)
			}
		}
	}
	for _, f := range p.Functions {
		for _, v := range f.In {
			addVar(v)
			if err := g.AddEdge(v, f.ID); err != nil {
				t.Fatalf("add edge %s→%s: %v", v, f.ID, err)
			}
		}
		for _, v := range f.Out {
			addVar(v)
			if err := g.AddEdge(f.ID, v); err != nil {
				t.Fatalf("add edge %s→%s: %v", f.ID, v, err)
			}
		}
	}
	return g
}

// FPG builds the fundamental problem graph of p with markings applied and
// problem roles assigned.
func (p Problem) FPG(t testing.TB) *mdao.FPG {
	t.Helper()
	f := p.Formulation
	f.FunctionOrder = p.Order
	fpg, err := mdao.NewFPG(p.Repository(t), nil, f)
	if err != nil {
		t.Fatalf("NewFPG: %v", err)
	}
	if len(p.DesignVariables) > 0 {
		if err := fpg.MarkAsDesignVariables(p.DesignVariables, p.Lower, nil, p.Upper, p.Samples); err != nil {
			t.Fatalf("MarkAsDesignVariables: %v", err)
		}
	}
	if p.Objective != "" {
		if err := fpg.MarkAsObjective(p.Objective); err != nil {
			t.Fatalf("MarkAsObjective: %v", err)
		}
	}
	if len(p.Constraints) > 0 {
		if err := fpg.MarkAsConstraints(p.Constraints, nil, nil); err != nil {
			t.Fatalf("MarkAsConstraints: %v", err)
		}
	}
	if len(p.QOIs) > 0 {
		if err := fpg.MarkAsQOIs(p.QOIs); err != nil {
			t.Fatalf("MarkAsQOIs: %v", err)
		}
	}
	if err := fpg.AddFunctionProblemRoles(); err != nil {
		t.Fatalf("AddFunctionProblemRoles: %v", err)
	}
	return fpg
}

// ThreeCoupled is the loop A → x → B → y → C → y_fb → A with design
// variable d feeding A and objective o produced by C.
func ThreeCoupled(arch mdao.Architecture, conv mdao.ConvergenceType) Problem {
	p := Problem{
		Functions: []Func{
			{ID: "A", In: []string{"d", "y_fb"}, Out: []string{"x"}},
			{ID: "B", In: []string{"x"}, Out: []string{"y"}},
			{ID: "C", In: []string{"y"}, Out: []string{"y_fb", "o"}},
		},
		Order:       []string{"A", "B", "C"},
		Formulation: mdao.ProblemFormulation{Architecture: arch, ConvergenceType: conv},
	}
	switch {
	case arch.HasOptimizer():
		p.DesignVariables = []string{"d"}
		p.Lower = []float64{-1}
		p.Upper = []float64{1}
		p.Objective = "o"
	case arch.HasDOE():
		p.DesignVariables = []string{"d"}
		p.QOIs = []string{"o"}
		p.Formulation.DOESettings = &mdao.DOESettings{Method: mdao.CustomTable}
		p.Samples = [][]float64{{0, 0.5, 1}}
	default:
		p.QOIs = []string{"o"}
	}
	return p
}

// Sellar is the two-discipline Sellar problem: D1 and D2 are coupled through
// y1 and y2, F computes the objective f, and G1 and G2 the constraints.
func Sellar(arch mdao.Architecture, conv mdao.ConvergenceType) Problem {
	p := Problem{
		Functions: []Func{
			{ID: "D1", In: []string{"x1", "z1", "z2", "y2"}, Out: []string{"y1"}},
			{ID: "D2", In: []string{"z1", "z2", "y1"}, Out: []string{"y2"}},
			{ID: "F", In: []string{"x1", "z2", "y1", "y2"}, Out: []string{"f"}},
			{ID: "G1", In: []string{"y1"}, Out: []string{"g1"}},
			{ID: "G2", In: []string{"y2"}, Out: []string{"g2"}},
		},
		Order:       []string{"D1", "D2", "F", "G1", "G2"},
		Formulation: mdao.ProblemFormulation{Architecture: arch, ConvergenceType: conv},
	}
	switch {
	case arch.HasOptimizer():
		p.DesignVariables = []string{"x1", "z1", "z2"}
		p.Lower = []float64{0, -10, 0}
		p.Upper = []float64{10, 10, 10}
		p.Objective = "f"
		p.Constraints = []string{"g1", "g2"}
	case arch.HasDOE():
		p.DesignVariables = []string{"x1", "z1", "z2"}
		p.QOIs = []string{"f", "g1", "g2"}
		p.Formulation.DOESettings = &mdao.DOESettings{Method: mdao.CustomTable}
		p.Samples = [][]float64{{0, 1}, {2, 3}, {4, 5}}
	default:
		p.QOIs = []string{"f", "g1", "g2"}
	}
	return p
}

// PrePostChain has a pre-coupling function P that feeds the coupled pair
// D1/D2 and a pre-coupling function Q that consumes design variable z1.
// The order is [P, Q, D1, D2, F].
func PrePostChain(arch mdao.Architecture, conv mdao.ConvergenceType) Problem {
	p := Problem{
		Functions: []Func{
			{ID: "P", In: []string{"a"}, Out: []string{"b"}},
			{ID: "Q", In: []string{"z1", "b"}, Out: []string{"c"}},
			{ID: "D1", In: []string{"c", "y2"}, Out: []string{"y1"}},
			{ID: "D2", In: []string{"y1", "z1"}, Out: []string{"y2"}},
			{ID: "F", In: []string{"y1", "y2"}, Out: []string{"f"}},
		},
		Order:       []string{"P", "Q", "D1", "D2", "F"},
		Formulation: mdao.ProblemFormulation{Architecture: arch, ConvergenceType: conv},
		QOIs:        []string{"f"},
	}
	if arch.HasOptimizer() {
		p.DesignVariables = []string{"z1"}
		p.Objective = "f"
		p.QOIs = nil
	}
	if arch.HasDOE() {
		p.DesignVariables = []string{"z1"}
		p.Formulation.DOESettings = &mdao.DOESettings{Method: mdao.FullFactorial, Runs: intPtr(4)}
	}
	return p
}

func intPtr(v int) *int { return &v }
