package problem

import (
	"fmt"
	"os"
	"slices"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// Function is a declared analysis tool.
type Function struct {
	Name    string
	Label   string
	Inputs  []string
	Outputs []string
	Meta    graph.Metadata
}

// DesignVariable is a declared design variable with its optional bounds.
type DesignVariable struct {
	Name string
	graph.Bounds
}

// Constraint is a declared constraint with its optional bounds.
type Constraint struct {
	Name         string
	Lower, Upper *float64
}

// Definition is a decoded problem file.
type Definition struct {
	Name            string
	Formulation     mdao.ProblemFormulation
	Functions       []Function
	DesignVariables []DesignVariable
	Objective       string
	Constraints     []Constraint
	QOIs            []string
}

// Load parses the problem file at path.
func Load(path string) (*Definition, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "problem file %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return Parse(src, path)
}

// Parse decodes problem source. filename is only used in diagnostics.
// Syntax errors and unknown blocks or attributes are ErrCodeInvalidFormat;
// unknown enum values and duplicate declarations are ErrCodeInvalidInput.
func Parse(src []byte, filename string) (*Definition, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, diags, "failed to parse %s", filename)
	}

	var root fileRoot
	if diags := gohcl.DecodeBody(file.Body, nil, &root); diags.HasErrors() {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, diags, "failed to decode %s", filename)
	}
	return translate(&root)
}

func translate(root *fileRoot) (*Definition, error) {
	if root.Formulation == nil {
		return nil, errs.New(errs.ErrCodeInvalidInput, "missing formulation block")
	}
	f, err := translateFormulation(root.Formulation)
	if err != nil {
		return nil, err
	}
	def := &Definition{Name: root.Name, Formulation: f}
	if def.Name == "" {
		def.Name = "repository"
	}

	seen := make(map[string]bool)
	for _, fb := range root.Functions {
		if seen[fb.Name] {
			return nil, errs.New(errs.ErrCodeInvalidInput, "function %q declared twice", fb.Name)
		}
		seen[fb.Name] = true
		fn := Function{
			Name:    fb.Name,
			Label:   fb.Label,
			Inputs:  fb.Inputs,
			Outputs: fb.Outputs,
		}
		if fb.Meta != nil {
			m, ok := ctyToGo(*fb.Meta).(map[string]any)
			if !ok {
				return nil, errs.New(errs.ErrCodeInvalidInput, "function %q: meta must be an object", fb.Name)
			}
			fn.Meta = m
		}
		def.Functions = append(def.Functions, fn)
	}
	if def.Formulation.FunctionOrder == nil {
		for _, fn := range def.Functions {
			def.Formulation.FunctionOrder = append(def.Formulation.FunctionOrder, fn.Name)
		}
	}

	for _, dv := range root.DesignVars {
		def.DesignVariables = append(def.DesignVariables, DesignVariable{
			Name: dv.Name,
			Bounds: graph.Bounds{
				Lower:   dv.Lower,
				Nominal: dv.Nominal,
				Upper:   dv.Upper,
				Samples: dv.Samples,
			},
		})
	}
	switch len(root.Objectives) {
	case 0:
	case 1:
		def.Objective = root.Objectives[0].Name
	default:
		return nil, errs.New(errs.ErrCodeInvalidInput, "%d objective blocks, at most one is allowed", len(root.Objectives))
	}
	for _, c := range root.Constraints {
		def.Constraints = append(def.Constraints, Constraint{Name: c.Name, Lower: c.Lower, Upper: c.Upper})
	}
	for _, q := range root.QOIs {
		def.QOIs = append(def.QOIs, q.Name)
	}
	return def, nil
}

func translateFormulation(fb *formulationBlock) (mdao.ProblemFormulation, error) {
	arch, err := mdao.ParseArchitecture(fb.Architecture)
	if err != nil {
		return mdao.ProblemFormulation{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "formulation")
	}
	conv, err := mdao.ParseConvergenceType(fb.ConvergenceType)
	if err != nil {
		return mdao.ProblemFormulation{}, errs.Wrap(errs.ErrCodeInvalidInput, err, "formulation")
	}
	f := mdao.ProblemFormulation{
		Architecture:              arch,
		ConvergenceType:           conv,
		FunctionOrder:             slices.Clone(fb.FunctionOrder),
		AllowUnconvergedCouplings: fb.AllowUnconverged,
	}
	if fb.DOE != nil {
		m := mdao.DOEMethod(fb.DOE.Method)
		if !m.Valid() {
			return mdao.ProblemFormulation{}, errs.New(errs.ErrCodeInvalidInput, "unknown DOE method %q", fb.DOE.Method)
		}
		f.DOESettings = &mdao.DOESettings{Method: m, Runs: fb.DOE.Runs, Seed: fb.DOE.Seed}
	}
	return f, nil
}

// Repository builds the repository graph: functions in declaration order,
// then variables in the order they are first mentioned, with an edge from
// every input to its function and from every function to its outputs.
func (d *Definition) Repository() (*graph.Graph, error) {
	g := graph.New(d.Name)
	for _, fn := range d.Functions {
		if err := errs.ValidateNodeID(fn.Name); err != nil {
			return nil, err
		}
		n := graph.Node{ID: fn.Name, Label: fn.Label, Category: graph.CategoryFunction, Meta: fn.Meta}
		if err := g.AddNode(n); err != nil {
			return nil, fmt.Errorf("function %s: %w", fn.Name, err)
		}
	}
	addVar := func(id string) error {
		if n, ok := g.Node(id); ok {
			if !n.IsVariable() {
				return errs.New(errs.ErrCodeInvalidInput, "%q is declared as a function and used as a variable", id)
			}
			return nil
		}
		if err := errs.ValidateNodeID(id); err != nil {
			return err
		}
		return g.AddVariable(id, graph.VariableAttrs{})
	}
	for _, fn := range d.Functions {
		for _, v := range fn.Inputs {
			if err := addVar(v); err != nil {
				return nil, err
			}
			if err := g.AddEdge(v, fn.Name); err != nil {
				return nil, err
			}
		}
		for _, v := range fn.Outputs {
			if err := addVar(v); err != nil {
				return nil, err
			}
			if err := g.AddEdge(fn.Name, v); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

// FPG builds the fundamental problem graph with every declared marking
// applied. Problem roles are not assigned; call
// [mdao.FPG.AddFunctionProblemRoles] next.
func (d *Definition) FPG() (*mdao.FPG, error) {
	repo, err := d.Repository()
	if err != nil {
		return nil, err
	}
	fpg, err := mdao.NewFPG(repo, nil, d.Formulation)
	if err != nil {
		return nil, err
	}

	if len(d.DesignVariables) > 0 {
		ids := make([]string, len(d.DesignVariables))
		for i, dv := range d.DesignVariables {
			ids[i] = dv.Name
		}
		if err := fpg.MarkAsDesignVariables(ids, nil, nil, nil, nil); err != nil {
			return nil, err
		}
		for _, dv := range d.DesignVariables {
			v, _ := fpg.Graph.Variable(dv.Name)
			v.Bounds = dv.Bounds
		}
	}
	if d.Objective != "" {
		if err := fpg.MarkAsObjective(d.Objective); err != nil {
			return nil, err
		}
	}
	if len(d.Constraints) > 0 {
		ids := make([]string, len(d.Constraints))
		for i, c := range d.Constraints {
			ids[i] = c.Name
		}
		if err := fpg.MarkAsConstraints(ids, nil, nil); err != nil {
			return nil, err
		}
		for _, c := range d.Constraints {
			v, _ := fpg.Graph.Variable(c.Name)
			v.Lower, v.Upper = c.Lower, c.Upper
		}
	}
	if len(d.QOIs) > 0 {
		if err := fpg.MarkAsQOIs(d.QOIs); err != nil {
			return nil, err
		}
	}
	return fpg, nil
}

// ctyToGo converts a known cty value to plain Go values: string, float64,
// bool, []any and map[string]any. Null and unknown values become nil.
func ctyToGo(v cty.Value) any {
	if v.IsNull() || !v.IsKnown() {
		return nil
	}
	t := v.Type()
	switch {
	case t == cty.String:
		return v.AsString()
	case t == cty.Number:
		f, _ := v.AsBigFloat().Float64()
		return f
	case t == cty.Bool:
		return v.True()
	case t.IsListType() || t.IsTupleType() || t.IsSetType():
		out := []any{}
		for it := v.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ctyToGo(ev))
		}
		return out
	case t.IsMapType() || t.IsObjectType():
		out := map[string]any{}
		for it := v.ElementIterator(); it.Next(); {
			k, ev := it.Element()
			out[k.AsString()] = ctyToGo(ev)
		}
		return out
	}
	return nil
}
