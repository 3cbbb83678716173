package validate_test

import (
	"strings"
	"testing"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/mdaotest"
	"github.com/matzehuels/mdaograph/pkg/mdao/validate"
)

func TestFPG_ValidArchitectures(t *testing.T) {
	tests := []struct {
		arch  mdao.Architecture
		conv  mdao.ConvergenceType
		allow bool
	}{
		{mdao.UnconvergedMDA, mdao.NoConvergence, true},
		{mdao.ConvergedMDA, mdao.GaussSeidel, false},
		{mdao.ConvergedMDA, mdao.Jacobi, false},
		{mdao.IDF, mdao.NoConvergence, false},
		{mdao.MDF, mdao.Jacobi, false},
		{mdao.MDF, mdao.GaussSeidel, false},
		{mdao.UnconvergedOPT, mdao.NoConvergence, true},
		{mdao.UnconvergedDOE, mdao.NoConvergence, true},
		{mdao.ConvergedDOE, mdao.GaussSeidel, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.arch)+"/"+string(tt.conv), func(t *testing.T) {
			p := mdaotest.Sellar(tt.arch, tt.conv)
			p.Formulation.AllowUnconvergedCouplings = tt.allow
			ok, diags, err := validate.FPG(p.FPG(t))
			if err != nil {
				t.Fatalf("FPG: %v", err)
			}
			if !ok {
				t.Errorf("FPG failed: %v", diags)
			}
		})
	}
}

func TestFPG_ThreeCoupledMDF(t *testing.T) {
	ok, diags, err := validate.FPG(mdaotest.ThreeCoupled(mdao.MDF, mdao.GaussSeidel).FPG(t))
	if err != nil || !ok {
		t.Fatalf("FPG = %v, %v, %v", ok, diags, err)
	}
}

func TestFPG_ConvergedWithoutFeedback(t *testing.T) {
	p := mdaotest.Problem{
		Functions: []mdaotest.Func{
			{ID: "A", In: []string{"d"}, Out: []string{"x"}},
			{ID: "B", In: []string{"x"}, Out: []string{"y"}},
		},
		Order:       []string{"A", "B"},
		Formulation: mdao.ProblemFormulation{Architecture: mdao.ConvergedMDA, ConvergenceType: mdao.GaussSeidel},
		QOIs:        []string{"y"},
	}
	fpg := p.FPG(t)

	ok, diags, err := validate.Check(fpg.Graph, &fpg.Formulation, mdao.StageFPG, validate.TierC)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if ok {
		t.Fatal("tier C passed without feedback")
	}
	if !containsMessage(diags, `"unconverged-MDA"`) {
		t.Errorf("diagnostics %v do not suggest unconverged-MDA", diags)
	}
	for _, d := range diags {
		if d.Tier != validate.TierC {
			t.Errorf("diagnostic tier = %s, want C", d.Tier)
		}
	}
}

func TestFPG_SemanticFailures(t *testing.T) {
	tests := []struct {
		name   string
		build  func(t *testing.T) *mdao.FPG
		expect string
	}{
		{
			name: "IDF with a converger",
			build: func(t *testing.T) *mdao.FPG {
				return mdaotest.Sellar(mdao.IDF, mdao.Jacobi).FPG(t)
			},
			expect: "does not fit architecture IDF",
		},
		{
			name: "MDF without convergence",
			build: func(t *testing.T) *mdao.FPG {
				return mdaotest.Sellar(mdao.MDF, mdao.NoConvergence).FPG(t)
			},
			expect: "does not fit architecture MDF",
		},
		{
			name: "unconverged feedback not allowed",
			build: func(t *testing.T) *mdao.FPG {
				return mdaotest.Sellar(mdao.UnconvergedMDA, mdao.NoConvergence).FPG(t)
			},
			expect: "allow unconverged couplings",
		},
		{
			name: "two objectives",
			build: func(t *testing.T) *mdao.FPG {
				fpg := mdaotest.Sellar(mdao.MDF, mdao.Jacobi).FPG(t)
				if err := fpg.MarkAsObjective("g1"); err != nil {
					t.Fatal(err)
				}
				return fpg
			},
			expect: "2 objectives",
		},
		{
			name: "design variable from coupled function",
			build: func(t *testing.T) *mdao.FPG {
				fpg := mdaotest.Sellar(mdao.MDF, mdao.Jacobi).FPG(t)
				if err := fpg.MarkAsDesignVariables([]string{"y1"}, nil, nil, nil, nil); err != nil {
					t.Fatal(err)
				}
				return fpg
			},
			expect: "not a pre-coupling function",
		},
		{
			name: "missing quantities of interest",
			build: func(t *testing.T) *mdao.FPG {
				p := mdaotest.Sellar(mdao.ConvergedMDA, mdao.Jacobi)
				p.QOIs = nil
				fpg := p.FPG(t)
				for _, v := range []string{"f", "g1", "g2"} {
					if err := fpg.MarkAsConstraints([]string{v}, nil, nil); err != nil {
						t.Fatal(err)
					}
				}
				return fpg
			},
			expect: "no quantities of interest",
		},
		{
			name: "custom table with ragged samples",
			build: func(t *testing.T) *mdao.FPG {
				p := mdaotest.Sellar(mdao.ConvergedDOE, mdao.Jacobi)
				p.Samples = [][]float64{{0, 1}, {2}, {4, 5}}
				return p.FPG(t)
			},
			expect: "differ in length",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, diags, err := validate.FPG(tt.build(t))
			if err != nil {
				t.Fatalf("FPG: %v", err)
			}
			if ok {
				t.Fatal("validation passed")
			}
			if !containsMessage(diags, tt.expect) {
				t.Errorf("diagnostics %v do not mention %q", diags, tt.expect)
			}
		})
	}
}

func TestCheck_MissingKeys(t *testing.T) {
	fpg := mdaotest.Sellar(mdao.MDF, mdao.Jacobi).FPG(t)
	tests := map[string]func(f *mdao.ProblemFormulation){
		"architecture":     func(f *mdao.ProblemFormulation) { f.Architecture = "" },
		"convergence type": func(f *mdao.ProblemFormulation) { f.ConvergenceType = "" },
		"function order":   func(f *mdao.ProblemFormulation) { f.FunctionOrder = nil },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			f := fpg.Formulation.Clone()
			mutate(&f)
			for _, tier := range []validate.Tier{validate.TierB, validate.TierC} {
				_, _, err := validate.Check(fpg.Graph, &f, mdao.StageFPG, tier)
				if !errs.Is(err, errs.ErrCodePrecondition) {
					t.Errorf("tier %s err = %v, want precondition failure", tier, err)
				}
			}
			if ok, _, err := validate.Check(fpg.Graph, &f, mdao.StageFPG, validate.TierA); err != nil || !ok {
				t.Errorf("tier A = %v, %v", ok, err)
			}
		})
	}
}

func TestCheck_TierB(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *mdao.ProblemFormulation)
		expect string
	}{
		{"unknown architecture", func(f *mdao.ProblemFormulation) { f.Architecture = "CO" }, "unknown MDAO architecture"},
		{"unknown convergence", func(f *mdao.ProblemFormulation) { f.ConvergenceType = "Newton" }, "unknown convergence type"},
		{"order mismatch", func(f *mdao.ProblemFormulation) { f.FunctionOrder = []string{"D1", "D2"} }, "does not match"},
		{"ordering missing", func(f *mdao.ProblemFormulation) { f.FunctionOrdering = nil }, "not been computed"},
		{"doe settings missing", func(f *mdao.ProblemFormulation) {
			f.Architecture = mdao.ConvergedDOE
			f.DOESettings = nil
		}, "DOE settings are missing"},
		{"doe seed missing", func(f *mdao.ProblemFormulation) {
			f.Architecture = mdao.ConvergedDOE
			f.DOESettings = &mdao.DOESettings{Method: mdao.LatinHypercube, Runs: graph.Int(10)}
		}, "needs a seed"},
		{"doe runs negative", func(f *mdao.ProblemFormulation) {
			f.Architecture = mdao.ConvergedDOE
			f.DOESettings = &mdao.DOESettings{Method: mdao.FullFactorial, Runs: graph.Int(-1)}
		}, "invalid run count -1"},
		{"doe method unknown", func(f *mdao.ProblemFormulation) {
			f.Architecture = mdao.UnconvergedDOE
			f.DOESettings = &mdao.DOESettings{Method: "Sobol"}
		}, "unknown DOE method"},
	}
	fpg := mdaotest.Sellar(mdao.MDF, mdao.Jacobi).FPG(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := fpg.Formulation.Clone()
			tt.mutate(&f)
			ok, diags, err := validate.Check(fpg.Graph, &f, mdao.StageFPG, validate.TierB)
			if err != nil {
				t.Fatalf("Check: %v", err)
			}
			if ok || !containsMessage(diags, tt.expect) {
				t.Errorf("Check = %v, %v; want failure mentioning %q", ok, diags, tt.expect)
			}
		})
	}
}

func TestAll_StopsAtFirstFailingTier(t *testing.T) {
	p := mdaotest.Sellar(mdao.MDF, mdao.Jacobi)
	f := p.Formulation
	f.FunctionOrder = p.Order
	f.Architecture = "CO"
	fpg, err := mdao.NewFPG(p.Repository(t), nil, f)
	if err != nil {
		t.Fatal(err)
	}
	ok, diags, err := validate.FPG(fpg)
	if err != nil {
		t.Fatalf("FPG: %v", err)
	}
	if ok {
		t.Fatal("validation passed without problem roles")
	}
	for _, d := range diags {
		if d.Tier != validate.TierA {
			t.Errorf("got tier %s diagnostic %q after tier A failed", d.Tier, d.Message)
		}
	}
	if !containsMessage(diags, "function D1 has no problem role") {
		t.Errorf("diagnostics %v", diags)
	}
}

func TestCheck_MDGStructure(t *testing.T) {
	g := graph.New("MDG")
	_ = g.AddFunction("A", graph.FunctionAttrs{ArchitectureRole: graph.BlockCoupledAnalysis})
	_ = g.AddFunction("B", graph.FunctionAttrs{})
	_ = g.AddVariable("x", graph.VariableAttrs{})
	_ = g.AddEdge("A", "x")

	ok, diags, err := validate.Check(g, nil, mdao.StageMDG, validate.TierA)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("tier A passed")
	}
	for _, want := range []string{
		"variable x is not consumed",
		"Coordinator block is missing",
		"function B has no architecture role",
	} {
		if !containsMessage(diags, want) {
			t.Errorf("diagnostics %v do not mention %q", diags, want)
		}
	}
}

func TestCheck_MPGStructure(t *testing.T) {
	g := graph.New("MPG")
	_ = g.AddFunction(mdao.CoordinatorName, graph.FunctionAttrs{
		ArchitectureRole: graph.BlockCoordinator,
		ProcessStep:      graph.Int(0),
	})
	_ = g.AddFunction("A", graph.FunctionAttrs{ArchitectureRole: graph.BlockCoupledAnalysis})
	_ = g.AddVariable("x", graph.VariableAttrs{})
	_ = g.AddEdge(mdao.CoordinatorName, "A")

	ok, diags, err := validate.Check(g, nil, mdao.StageMPG, validate.TierA)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("tier A passed")
	}
	for _, want := range []string{
		"process graph contains variables",
		"function A has no process step",
		"edge Coordinator → A has no process step",
	} {
		if !containsMessage(diags, want) {
			t.Errorf("diagnostics %v do not mention %q", diags, want)
		}
	}
}

func TestFailure_Error(t *testing.T) {
	f := &validate.Failure{Stage: mdao.StageFPG, Diagnostics: []validate.Diagnostic{
		{Tier: validate.TierC, Message: "first"},
		{Tier: validate.TierC, Message: "second"},
	}}
	want := "fpg graph is invalid: [C] first; [C] second"
	if got := f.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestParseTier(t *testing.T) {
	for in, want := range map[string]validate.Tier{"a": validate.TierA, "B": validate.TierB, "c": validate.TierC} {
		got, err := validate.ParseTier(in)
		if err != nil || got != want {
			t.Errorf("ParseTier(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := validate.ParseTier("D"); err == nil {
		t.Error("ParseTier(D) accepted")
	}
}

func containsMessage(diags []validate.Diagnostic, sub string) bool {
	for _, d := range diags {
		if strings.Contains(d.Message, sub) {
			return true
		}
	}
	return false
}
