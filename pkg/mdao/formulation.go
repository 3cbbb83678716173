package mdao

import "slices"

// FunctionOrdering groups the function order by problem role.
type FunctionOrdering struct {
	PreCoupling  []string `json:"pre-coupling"`
	Coupled      []string `json:"coupled"`
	PostCoupling []string `json:"post-coupling"`
}

// Clone returns a deep copy.
func (o FunctionOrdering) Clone() FunctionOrdering {
	return FunctionOrdering{
		PreCoupling:  slices.Clone(o.PreCoupling),
		Coupled:      slices.Clone(o.Coupled),
		PostCoupling: slices.Clone(o.PostCoupling),
	}
}

// All returns the functions in execution order.
func (o FunctionOrdering) All() []string {
	return slices.Concat(o.PreCoupling, o.Coupled, o.PostCoupling)
}

// DOESettings configures the DOE block of the DOE architectures.
// Table and TableOrder are filled in by synthesis for the custom table method.
type DOESettings struct {
	Method     DOEMethod   `json:"doe_method"`
	Runs       *int        `json:"doe_runs,omitempty"`
	Seed       *int        `json:"doe_seed,omitempty"`
	Table      [][]float64 `json:"doe_table,omitempty"`
	TableOrder []string    `json:"doe_table_order,omitempty"`
}

// Clone returns a deep copy, or nil for a nil receiver.
func (s *DOESettings) Clone() *DOESettings {
	if s == nil {
		return nil
	}
	out := &DOESettings{
		Method:     s.Method,
		TableOrder: slices.Clone(s.TableOrder),
	}
	if s.Runs != nil {
		runs := *s.Runs
		out.Runs = &runs
	}
	if s.Seed != nil {
		seed := *s.Seed
		out.Seed = &seed
	}
	for _, row := range s.Table {
		out.Table = append(out.Table, slices.Clone(row))
	}
	return out
}

// ProblemFormulation is the graph-level description of the MDAO problem.
// FunctionOrdering is computed by [FPG.AddFunctionProblemRoles].
type ProblemFormulation struct {
	Architecture              Architecture      `json:"mdao_architecture"`
	ConvergenceType           ConvergenceType   `json:"convergence_type"`
	FunctionOrder             []string          `json:"function_order"`
	FunctionOrdering          *FunctionOrdering `json:"function_ordering,omitempty"`
	DOESettings               *DOESettings      `json:"doe_settings,omitempty"`
	AllowUnconvergedCouplings bool              `json:"allow_unconverged_couplings"`
}

// Clone returns a deep copy.
func (p ProblemFormulation) Clone() ProblemFormulation {
	out := p
	out.FunctionOrder = slices.Clone(p.FunctionOrder)
	if p.FunctionOrdering != nil {
		fo := p.FunctionOrdering.Clone()
		out.FunctionOrdering = &fo
	}
	out.DOESettings = p.DOESettings.Clone()
	return out
}

// ArchitectureOrdering is the function ordering used by synthesized graphs.
//
// For iterated architectures (optimizer or DOE) the pre-coupling functions
// are split at the first function that consumes a design variable:
// functions before it run once ahead of the iterator (PreIterator), the rest
// run inside the iterator loop (PostIterator). Other architectures keep a
// plain PreCoupling group. For IDF the consistency constraint function is
// the last PostCoupling entry.
type ArchitectureOrdering struct {
	Iterated     bool     `json:"iterated"`
	PreCoupling  []string `json:"pre-coupling,omitempty"`
	PreIterator  []string `json:"pre-iterator,omitempty"`
	PostIterator []string `json:"post-iterator,omitempty"`
	Coupled      []string `json:"coupled"`
	PostCoupling []string `json:"post-coupling"`
}

// Clone returns a deep copy.
func (o ArchitectureOrdering) Clone() ArchitectureOrdering {
	return ArchitectureOrdering{
		Iterated:     o.Iterated,
		PreCoupling:  slices.Clone(o.PreCoupling),
		PreIterator:  slices.Clone(o.PreIterator),
		PostIterator: slices.Clone(o.PostIterator),
		Coupled:      slices.Clone(o.Coupled),
		PostCoupling: slices.Clone(o.PostCoupling),
	}
}

// PreFunctions returns every function that runs before the coupled group,
// whether split around an iterator or not.
func (o ArchitectureOrdering) PreFunctions() []string {
	return slices.Concat(o.PreCoupling, o.PreIterator, o.PostIterator)
}
