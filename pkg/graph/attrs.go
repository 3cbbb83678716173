package graph

import (
	"fmt"
	"maps"
	"slices"
)

// Category distinguishes the two kinds of node in an MDAO graph.
type Category int

const (
	// CategoryFunction marks an analysis tool or an architecture block.
	CategoryFunction Category = iota + 1
	// CategoryVariable marks a data element exchanged between functions.
	CategoryVariable
)

// String returns "function" or "variable".
func (c Category) String() string {
	switch c {
	case CategoryFunction:
		return "function"
	case CategoryVariable:
		return "variable"
	default:
		return fmt.Sprintf("Category(%d)", int(c))
	}
}

// ParseCategory converts the document spelling of a category.
func ParseCategory(s string) (Category, error) {
	switch s {
	case "function":
		return CategoryFunction, nil
	case "variable":
		return CategoryVariable, nil
	}
	return 0, fmt.Errorf("unknown node category %q", s)
}

// FunctionRole is the problem role of a function, derived from the coupling matrix.
type FunctionRole string

// Function problem roles.
const (
	RolePreCoupling  FunctionRole = "pre-coupling"
	RoleCoupled      FunctionRole = "coupled"
	RolePostCoupling FunctionRole = "post-coupling"
)

// VariableRole is the problem role of a variable in the optimization problem.
type VariableRole string

// Variable problem roles.
const (
	RoleDesignVariable VariableRole = "design variable"
	RoleObjective      VariableRole = "objective"
	RoleConstraint     VariableRole = "constraint"
	RoleQOI            VariableRole = "quantity of interest"
)

// BlockRole is the architecture role of a function in a synthesized graph.
type BlockRole string

// Function architecture roles.
const (
	BlockCoordinator           BlockRole = "coordinator"
	BlockOptimizer             BlockRole = "optimizer"
	BlockConverger             BlockRole = "converger"
	BlockDOE                   BlockRole = "doe"
	BlockPreCouplingAnalysis   BlockRole = "pre-coupling analysis"
	BlockPreIteratorAnalysis   BlockRole = "pre-iterator analysis"
	BlockPostIteratorAnalysis  BlockRole = "post-iterator analysis"
	BlockCoupledAnalysis       BlockRole = "coupled analysis"
	BlockPostCouplingAnalysis  BlockRole = "post-coupling analysis"
	BlockConsistencyConstraint BlockRole = "consistency constraint function"
	BlockIndependentFunction   BlockRole = "independent function"
)

// IsIterator reports whether the role opens a loop (optimizer, converger or DOE).
func (r BlockRole) IsIterator() bool {
	return r == BlockOptimizer || r == BlockConverger || r == BlockDOE
}

// CopyRole is the architecture role of a variable created during synthesis.
type CopyRole string

// Variable architecture roles. Each copy records the variable it was
// derived from in [VariableAttrs.RelatedTo].
const (
	CopyInitialGuessCoupling CopyRole = "initial guess coupling variable"
	CopyFinalCoupling        CopyRole = "final coupling variable"
	CopyCoupling             CopyRole = "coupling copy variable"
	CopyInitialGuessDesign   CopyRole = "initial guess design variable"
	CopyFinalDesign          CopyRole = "final design variable"
	CopyFinalOutput          CopyRole = "final output variable"
	CopyConsistency          CopyRole = "consistency constraint variable"
	CopyDOEInputSamples      CopyRole = "doe input sample list"
	CopyDOEOutputSamples     CopyRole = "doe output sample list"
)

// Bounds holds the optional numeric settings of a design variable, objective
// or constraint. Nil fields are unset.
type Bounds struct {
	Lower   *float64  `json:"lower_bound,omitempty"`
	Nominal *float64  `json:"nominal_value,omitempty"`
	Upper   *float64  `json:"upper_bound,omitempty"`
	Samples []float64 `json:"samples,omitempty"`
}

func (b Bounds) clone() Bounds {
	return Bounds{
		Lower:   cloneFloat(b.Lower),
		Nominal: cloneFloat(b.Nominal),
		Upper:   cloneFloat(b.Upper),
		Samples: slices.Clone(b.Samples),
	}
}

// BlockSettings is attached to optimizer, DOE and consistency-constraint
// blocks when they are connected.
type BlockSettings struct {
	DesignVariables      map[string]Bounds `json:"design_variables,omitempty"`
	ObjectiveVariable    string            `json:"objective_variable,omitempty"`
	ConstraintVariables  map[string]Bounds `json:"constraint_variables,omitempty"`
	QuantitiesOfInterest []string          `json:"quantities_of_interest,omitempty"`
	ConsistencyVariables []string          `json:"consistency_nodes,omitempty"`
}

func (s *BlockSettings) clone() *BlockSettings {
	if s == nil {
		return nil
	}
	out := &BlockSettings{
		ObjectiveVariable:    s.ObjectiveVariable,
		QuantitiesOfInterest: slices.Clone(s.QuantitiesOfInterest),
		ConsistencyVariables: slices.Clone(s.ConsistencyVariables),
	}
	if s.DesignVariables != nil {
		out.DesignVariables = make(map[string]Bounds, len(s.DesignVariables))
		for k, v := range s.DesignVariables {
			out.DesignVariables[k] = v.clone()
		}
	}
	if s.ConstraintVariables != nil {
		out.ConstraintVariables = make(map[string]Bounds, len(s.ConstraintVariables))
		for k, v := range s.ConstraintVariables {
			out.ConstraintVariables[k] = v.clone()
		}
	}
	return out
}

// FunctionAttrs are the attributes a function node may carry.
//
// ArchitectureRole is only set in synthesized graphs. ProcessStep,
// ConvergerStep and DiagonalPosition are only set in process graphs.
type FunctionAttrs struct {
	ProblemRole      FunctionRole
	ArchitectureRole BlockRole
	ProcessStep      *int
	ConvergerStep    *int
	DiagonalPosition *int
	Settings         *BlockSettings
}

func (a *FunctionAttrs) clone() *FunctionAttrs {
	if a == nil {
		return nil
	}
	return &FunctionAttrs{
		ProblemRole:      a.ProblemRole,
		ArchitectureRole: a.ArchitectureRole,
		ProcessStep:      cloneInt(a.ProcessStep),
		ConvergerStep:    cloneInt(a.ConvergerStep),
		DiagonalPosition: cloneInt(a.DiagonalPosition),
		Settings:         a.Settings.clone(),
	}
}

// VariableAttrs are the attributes a variable node may carry.
type VariableAttrs struct {
	ProblemRole VariableRole
	Bounds

	// ArchitectureRole and RelatedTo are set on copies created during synthesis.
	ArchitectureRole CopyRole
	RelatedTo        string
}

func (a *VariableAttrs) clone() *VariableAttrs {
	if a == nil {
		return nil
	}
	return &VariableAttrs{
		ProblemRole:      a.ProblemRole,
		Bounds:           a.Bounds.clone(),
		ArchitectureRole: a.ArchitectureRole,
		RelatedTo:        a.RelatedTo,
	}
}

// SchemaNode returns the id of the variable this node stands for: RelatedTo
// for copies, the node's own id otherwise.
func (n *Node) SchemaNode() string {
	if n.Variable != nil && n.Variable.RelatedTo != "" {
		return n.Variable.RelatedTo
	}
	return n.ID
}

// Int returns a pointer to v, for optional step attributes.
func Int(v int) *int { return &v }

// Float returns a pointer to v, for optional bounds.
func Float(v float64) *float64 { return &v }

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	return Int(*p)
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return Float(*p)
}

func cloneMeta(m Metadata) Metadata {
	if m == nil {
		return Metadata{}
	}
	return maps.Clone(m)
}
