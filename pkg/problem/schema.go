package problem

import "github.com/zclconf/go-cty/cty"

// fileRoot is decoded from the top level of a problem file. Blocks and
// attributes not listed here are rejected by the decoder.
type fileRoot struct {
	Name        string             `hcl:"name,optional"`
	Formulation *formulationBlock  `hcl:"formulation,block"`
	Functions   []*functionBlock   `hcl:"function,block"`
	DesignVars  []*designVarBlock  `hcl:"design_variable,block"`
	Objectives  []*labelBlock      `hcl:"objective,block"`
	Constraints []*constraintBlock `hcl:"constraint,block"`
	QOIs        []*labelBlock      `hcl:"qoi,block"`
}

type formulationBlock struct {
	Architecture     string    `hcl:"architecture"`
	ConvergenceType  string    `hcl:"convergence_type"`
	FunctionOrder    []string  `hcl:"function_order,optional"`
	AllowUnconverged bool      `hcl:"allow_unconverged_couplings,optional"`
	DOE              *doeBlock `hcl:"doe,block"`
}

type doeBlock struct {
	Method string `hcl:"method"`
	Runs   *int   `hcl:"runs,optional"`
	Seed   *int   `hcl:"seed,optional"`
}

type functionBlock struct {
	Name    string     `hcl:"name,label"`
	Label   string     `hcl:"label,optional"`
	Inputs  []string   `hcl:"inputs,optional"`
	Outputs []string   `hcl:"outputs,optional"`
	Meta    *cty.Value `hcl:"meta,optional"`
}

type designVarBlock struct {
	Name    string    `hcl:"name,label"`
	Lower   *float64  `hcl:"lower,optional"`
	Nominal *float64  `hcl:"nominal,optional"`
	Upper   *float64  `hcl:"upper,optional"`
	Samples []float64 `hcl:"samples,optional"`
}

type constraintBlock struct {
	Name  string   `hcl:"name,label"`
	Lower *float64 `hcl:"lower,optional"`
	Upper *float64 `hcl:"upper,optional"`
}

type labelBlock struct {
	Name string `hcl:"name,label"`
}
