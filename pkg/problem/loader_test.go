package problem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

func TestLoad_Sellar(t *testing.T) {
	def, err := Load(filepath.Join("testdata", "sellar.hcl"))
	require.NoError(t, err)

	assert.Equal(t, "sellar", def.Name)
	assert.Equal(t, mdao.MDF, def.Formulation.Architecture)
	assert.Equal(t, mdao.GaussSeidel, def.Formulation.ConvergenceType)
	assert.Equal(t, []string{"D1", "D2", "F", "G1", "G2"}, def.Formulation.FunctionOrder)
	require.Len(t, def.Functions, 5)
	assert.Equal(t, "Discipline 1", def.Functions[0].Label)
	assert.Equal(t, graph.Metadata{"owner": "aero", "fidelity": 2.0}, def.Functions[0].Meta)
	assert.Equal(t, "f", def.Objective)
	require.Len(t, def.DesignVariables, 3)
	require.NotNil(t, def.DesignVariables[0].Nominal)
	assert.Equal(t, 1.0, *def.DesignVariables[0].Nominal)

	fpg, err := def.FPG()
	require.NoError(t, err)
	require.NoError(t, fpg.AddFunctionProblemRoles())

	fo := fpg.Formulation.FunctionOrdering
	require.NotNil(t, fo)
	assert.Equal(t, []string{"D1", "D2"}, fo.Coupled)
	assert.Equal(t, []string{"F", "G1", "G2"}, fo.PostCoupling)

	z1, ok := fpg.Graph.Variable("z1")
	require.True(t, ok)
	assert.Equal(t, graph.RoleDesignVariable, z1.ProblemRole)
	require.NotNil(t, z1.Lower)
	assert.Equal(t, -10.0, *z1.Lower)

	g1, _ := fpg.Graph.Variable("g1")
	assert.Equal(t, graph.RoleConstraint, g1.ProblemRole)
	require.NotNil(t, g1.Upper)
	assert.Nil(t, g1.Lower)

	d1, _ := fpg.Graph.Node("D1")
	assert.Equal(t, "aero", d1.Meta["owner"])
}

func TestParse_DefaultFunctionOrder(t *testing.T) {
	src := `
formulation {
  architecture     = "unconverged-MDA"
  convergence_type = "None"
}
function "B" {
  inputs  = ["a"]
  outputs = ["b"]
}
function "A" {
  inputs  = ["b"]
  outputs = ["c"]
}
qoi "c" {}
`
	def, err := Parse([]byte(src), "inline.hcl")
	require.NoError(t, err)
	assert.Equal(t, "repository", def.Name)
	assert.Equal(t, []string{"B", "A"}, def.Formulation.FunctionOrder)
	assert.Equal(t, []string{"c"}, def.QOIs)

	g, err := def.Repository()
	require.NoError(t, err)
	assert.Equal(t, []string{"B", "A", "a", "b", "c"}, g.NodeIDs())
	assert.True(t, g.HasEdge("a", "B"))
	assert.True(t, g.HasEdge("B", "b"))
	assert.True(t, g.HasEdge("b", "A"))
}

func TestParse_DOE(t *testing.T) {
	src := `
formulation {
  architecture     = "converged-DOE"
  convergence_type = "Jacobi"
  doe {
    method = "Latin hypercube design"
    runs   = 20
    seed   = 7
  }
}
function "A" {
  inputs  = ["x"]
  outputs = ["y"]
}
design_variable "x" {
  samples = [0, 0.5, 1]
}
qoi "y" {}
`
	def, err := Parse([]byte(src), "doe.hcl")
	require.NoError(t, err)
	doe := def.Formulation.DOESettings
	require.NotNil(t, doe)
	assert.Equal(t, mdao.LatinHypercube, doe.Method)
	require.NotNil(t, doe.Runs)
	assert.Equal(t, 20, *doe.Runs)
	require.NotNil(t, doe.Seed)
	assert.Equal(t, 7, *doe.Seed)
	assert.Equal(t, []float64{0, 0.5, 1}, def.DesignVariables[0].Samples)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		code errs.Code
	}{
		{"syntax", `formulation {`, errs.ErrCodeInvalidFormat},
		{"unknown attribute", `colour = "red"`, errs.ErrCodeInvalidFormat},
		{"unknown block", `solver "x" {}`, errs.ErrCodeInvalidFormat},
		{"missing formulation", `function "A" {}`, errs.ErrCodeInvalidInput},
		{"unknown architecture", `formulation {
  architecture     = "BLISS"
  convergence_type = "Jacobi"
}`, errs.ErrCodeInvalidInput},
		{"unknown convergence", `formulation {
  architecture     = "MDF"
  convergence_type = "Newton"
}`, errs.ErrCodeInvalidInput},
		{"unknown doe method", `formulation {
  architecture     = "unconverged-DOE"
  convergence_type = "None"
  doe {
    method = "Sobol"
  }
}`, errs.ErrCodeInvalidInput},
		{"duplicate function", `formulation {
  architecture     = "MDF"
  convergence_type = "Jacobi"
}
function "A" {}
function "A" {}`, errs.ErrCodeInvalidInput},
		{"two objectives", `formulation {
  architecture     = "MDF"
  convergence_type = "Jacobi"
}
objective "f" {}
objective "g" {}`, errs.ErrCodeInvalidInput},
		{"meta not an object", `formulation {
  architecture     = "MDF"
  convergence_type = "Jacobi"
}
function "A" {
  meta = "x"
}`, errs.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Equal(t, tt.code, errs.GetCode(err), "err = %v", err)
		})
	}
}

func TestDefinition_GraphErrors(t *testing.T) {
	base := mdao.ProblemFormulation{Architecture: mdao.MDF, ConvergenceType: mdao.Jacobi}

	def := &Definition{
		Formulation: base,
		Functions: []Function{
			{Name: "A", Outputs: []string{"B"}},
			{Name: "B"},
		},
	}
	_, err := def.Repository()
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidInput), "function used as variable: %v", err)

	def = &Definition{
		Formulation:     base,
		Functions:       []Function{{Name: "A", Inputs: []string{"x"}, Outputs: []string{"y"}}},
		DesignVariables: []DesignVariable{{Name: "missing"}},
	}
	def.Formulation.FunctionOrder = []string{"A"}
	_, err = def.FPG()
	assert.True(t, errs.Is(err, errs.ErrCodePrecondition), "unknown design variable: %v", err)

	def = &Definition{
		Formulation: base,
		Functions:   []Function{{Name: " A"}},
	}
	_, err = def.Repository()
	assert.True(t, errs.Is(err, errs.ErrCodeInvalidNodeID), "bad id: %v", err)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.hcl"))
	assert.True(t, errs.Is(err, errs.ErrCodeFileNotFound))
}

func TestCtyToGo(t *testing.T) {
	tests := []struct {
		in   cty.Value
		want any
	}{
		{cty.StringVal("a"), "a"},
		{cty.NumberIntVal(3), 3.0},
		{cty.True, true},
		{cty.NullVal(cty.String), nil},
		{cty.UnknownVal(cty.String), nil},
		{cty.TupleVal([]cty.Value{cty.StringVal("a"), cty.NumberFloatVal(1.5)}), []any{"a", 1.5}},
		{cty.ListValEmpty(cty.String), []any{}},
		{cty.ObjectVal(map[string]cty.Value{"k": cty.BoolVal(false)}), map[string]any{"k": false}},
		{cty.MapVal(map[string]cty.Value{"k": cty.StringVal("v")}), map[string]any{"k": "v"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ctyToGo(tt.in), "ctyToGo(%#v)", tt.in)
	}
}
