package mdao_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/mdaotest"
)

func TestAssignFunctionRoles(t *testing.T) {
	order := []string{"F1", "F2", "F3", "F4", "F5"}
	tests := []struct {
		name   string
		matrix [][]int
		want   mdao.FunctionOrdering
	}{
		{
			name:   "no coupling",
			matrix: zeros(5),
			want: mdao.FunctionOrdering{
				PreCoupling:  order,
				Coupled:      []string{},
				PostCoupling: []string{},
			},
		},
		{
			name:   "feedforward only",
			matrix: withCells(zeros(5), [2]int{0, 1}, [2]int{1, 4}),
			want: mdao.FunctionOrdering{
				PreCoupling:  order,
				Coupled:      []string{},
				PostCoupling: []string{},
			},
		},
		{
			name:   "feedback in the middle",
			matrix: withCells(zeros(5), [2]int{3, 1}),
			want: mdao.FunctionOrdering{
				PreCoupling:  []string{"F1"},
				Coupled:      []string{"F2", "F3", "F4"},
				PostCoupling: []string{"F5"},
			},
		},
		{
			name:   "overlapping feedback spans the union",
			matrix: withCells(zeros(5), [2]int{2, 1}, [2]int{4, 2}),
			want: mdao.FunctionOrdering{
				PreCoupling:  []string{"F1"},
				Coupled:      []string{"F2", "F3", "F4", "F5"},
				PostCoupling: []string{},
			},
		},
		{
			name:   "full loop",
			matrix: withCells(zeros(5), [2]int{4, 0}),
			want: mdao.FunctionOrdering{
				PreCoupling:  []string{},
				Coupled:      order,
				PostCoupling: []string{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mdao.AssignFunctionRoles(tt.matrix, order)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("AssignFunctionRoles() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAddFunctionProblemRoles_ThreeCoupled(t *testing.T) {
	fpg := mdaotest.ThreeCoupled(mdao.MDF, mdao.GaussSeidel).FPG(t)

	fo := fpg.Formulation.FunctionOrdering
	if fo == nil {
		t.Fatal("FunctionOrdering not stored")
	}
	want := mdao.FunctionOrdering{
		PreCoupling:  []string{},
		Coupled:      []string{"A", "B", "C"},
		PostCoupling: []string{},
	}
	if diff := cmp.Diff(want, *fo); diff != "" {
		t.Errorf("ordering mismatch (-want +got):\n%s", diff)
	}
	for _, id := range []string{"A", "B", "C"} {
		f, _ := fpg.Graph.Function(id)
		if f.ProblemRole != graph.RoleCoupled {
			t.Errorf("%s role = %q, want %q", id, f.ProblemRole, graph.RoleCoupled)
		}
	}
}

func TestAddFunctionProblemRoles_Sellar(t *testing.T) {
	fpg := mdaotest.Sellar(mdao.MDF, mdao.Jacobi).FPG(t)
	fo := fpg.Formulation.FunctionOrdering
	want := mdao.FunctionOrdering{
		PreCoupling:  []string{},
		Coupled:      []string{"D1", "D2"},
		PostCoupling: []string{"F", "G1", "G2"},
	}
	if diff := cmp.Diff(want, *fo); diff != "" {
		t.Errorf("ordering mismatch (-want +got):\n%s", diff)
	}
}

func TestAddFunctionProblemRoles_Idempotent(t *testing.T) {
	fpg := mdaotest.PrePostChain(mdao.MDF, mdao.GaussSeidel).FPG(t)
	first := fpg.Formulation.FunctionOrdering.Clone()
	if err := fpg.AddFunctionProblemRoles(); err != nil {
		t.Fatalf("second run: %v", err)
	}
	if diff := cmp.Diff(first, *fpg.Formulation.FunctionOrdering); diff != "" {
		t.Errorf("second run changed ordering (-first +second):\n%s", diff)
	}
}

func TestAddFunctionProblemRoles_BadOrder(t *testing.T) {
	p := mdaotest.Sellar(mdao.MDF, mdao.Jacobi)
	f := p.Formulation
	tests := map[string][]string{
		"missing function":  {"D1", "D2", "F", "G1"},
		"unknown function":  {"D1", "D2", "F", "G1", "G3"},
		"variable in order": {"D1", "D2", "F", "G1", "y1"},
		"duplicate":         {"D1", "D2", "F", "G1", "G1"},
	}
	for name, order := range tests {
		t.Run(name, func(t *testing.T) {
			f.FunctionOrder = order
			fpg, err := mdao.NewFPG(p.Repository(t), nil, f)
			if err != nil {
				t.Fatalf("NewFPG: %v", err)
			}
			err = fpg.AddFunctionProblemRoles()
			if !errs.Is(err, errs.ErrCodePrecondition) {
				t.Errorf("err = %v, want precondition failure", err)
			}
			if fpg.Formulation.FunctionOrdering != nil {
				t.Error("ordering stored despite failure")
			}
		})
	}
}

func TestCouplingMatrix_DirectOnly(t *testing.T) {
	// F1 → a → F2 → b → F3: F1 reaches F3 only through F2.
	p := mdaotest.Problem{Functions: []mdaotest.Func{
		{ID: "F1", Out: []string{"a"}},
		{ID: "F2", In: []string{"a"}, Out: []string{"b"}},
		{ID: "F3", In: []string{"b", "a"}},
	}}
	g := p.Repository(t)
	m, err := mdao.CouplingMatrix(g, []string{"F1", "F2", "F3"})
	if err != nil {
		t.Fatalf("CouplingMatrix: %v", err)
	}
	want := [][]int{
		{0, 1, 1},
		{0, 0, 1},
		{0, 0, 0},
	}
	if diff := cmp.Diff(want, m); diff != "" {
		t.Errorf("matrix mismatch (-want +got):\n%s", diff)
	}
}

// Every cell must equal the number of variables shared between the two
// functions, no matter how the functions are chained.
func TestCouplingMatrix_Property(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("cells count shared variables", prop.ForAll(
		func(edges []uint8) bool {
			const nf, nv = 4, 5
			g := graph.New("t")
			fns := []string{"F0", "F1", "F2", "F3"}
			vars := []string{"v0", "v1", "v2", "v3", "v4"}
			for _, f := range fns {
				_ = g.AddFunction(f, graph.FunctionAttrs{})
			}
			for _, v := range vars {
				_ = g.AddVariable(v, graph.VariableAttrs{})
			}
			for _, e := range edges {
				f, v := fns[int(e)%nf], vars[int(e/nf)%nv]
				if e&0x80 != 0 {
					_ = g.AddEdge(f, v)
				} else {
					_ = g.AddEdge(v, f)
				}
			}
			m, err := mdao.CouplingMatrix(g, fns)
			if err != nil {
				return false
			}
			for i, a := range fns {
				for j, b := range fns {
					want := 0
					for _, v := range vars {
						if g.HasEdge(a, v) && g.HasEdge(v, b) {
							want++
						}
					}
					if m[i][j] != want {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.UInt8()),
	))
	properties.TestingRun(t)
}

func TestMarkAsDesignVariables(t *testing.T) {
	fpg := mdaotest.Sellar(mdao.MDF, mdao.GaussSeidel).FPG(t)

	v, _ := fpg.Graph.Variable("z1")
	if v.ProblemRole != graph.RoleDesignVariable {
		t.Fatalf("z1 role = %q", v.ProblemRole)
	}
	if v.Lower == nil || *v.Lower != -10 || v.Upper == nil || *v.Upper != 10 {
		t.Errorf("z1 bounds = %v..%v, want -10..10", v.Lower, v.Upper)
	}
	if v.Nominal != nil {
		t.Errorf("z1 nominal = %v, want unset", *v.Nominal)
	}
}

func TestMarkAs_Atomic(t *testing.T) {
	tests := []struct {
		name string
		mark func(*mdao.FPG) error
	}{
		{"unknown node", func(f *mdao.FPG) error {
			return f.MarkAsDesignVariables([]string{"x1", "nope"}, nil, nil, nil, nil)
		}},
		{"function node", func(f *mdao.FPG) error {
			return f.MarkAsDesignVariables([]string{"x1", "D1"}, nil, nil, nil, nil)
		}},
		{"bounds length", func(f *mdao.FPG) error {
			return f.MarkAsDesignVariables([]string{"x1", "z1"}, []float64{0}, nil, nil, nil)
		}},
		{"samples length", func(f *mdao.FPG) error {
			return f.MarkAsDesignVariables([]string{"x1", "z1"}, nil, nil, nil, [][]float64{{1}})
		}},
		{"constraint bounds length", func(f *mdao.FPG) error {
			return f.MarkAsConstraints([]string{"x1", "z1"}, nil, []float64{1, 2, 3})
		}},
		{"objective is function", func(f *mdao.FPG) error {
			return f.MarkAsObjective("F")
		}},
		{"qoi unknown", func(f *mdao.FPG) error {
			return f.MarkAsQOIs([]string{"x1", "ghost"})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fpg := mdaotest.Sellar(mdao.ConvergedMDA, mdao.Jacobi).FPG(t)
			before := fpg.Graph.Clone()
			err := tt.mark(fpg)
			if !errs.Is(err, errs.ErrCodePrecondition) {
				t.Fatalf("err = %v, want precondition failure", err)
			}
			for _, id := range before.Variables() {
				want, _ := before.Variable(id)
				got, _ := fpg.Graph.Variable(id)
				if diff := cmp.Diff(want, got); diff != "" {
					t.Errorf("%s changed on failure:\n%s", id, diff)
				}
			}
		})
	}
}

func zeros(n int) [][]int {
	m := make([][]int, n)
	for i := range m {
		m[i] = make([]int, n)
	}
	return m
}

func withCells(m [][]int, cells ...[2]int) [][]int {
	for _, c := range cells {
		m[c[0]][c[1]] = 1
	}
	return m
}
