package mdao

import (
	"fmt"
	"slices"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
)

// Stage identifies a point in the graph lifecycle.
type Stage string

// Lifecycle stages.
const (
	StageRepository Stage = "repository"
	StageFPG        Stage = "fpg"
	StageMDG        Stage = "mdg"
	StageMPG        Stage = "mpg"
)

// ParseStage validates a stage name.
func ParseStage(s string) (Stage, error) {
	switch st := Stage(s); st {
	case StageRepository, StageFPG, StageMDG, StageMPG:
		return st, nil
	}
	return "", fmt.Errorf("unknown graph stage %q", s)
}

// FPG is a fundamental problem graph: the relevant subset of a repository
// graph with problem roles and a problem formulation.
type FPG struct {
	Graph       *graph.Graph
	Formulation ProblemFormulation
}

// MDG is an MDAO data graph: the FPG with architecture blocks inserted and
// coupling edges rewired.
type MDG struct {
	Graph       *graph.Graph
	Formulation ProblemFormulation
	Ordering    ArchitectureOrdering
}

// MPG is an MDAO process graph: function nodes only, with process steps on
// nodes and edges.
type MPG struct {
	Graph       *graph.Graph
	Formulation ProblemFormulation
	Ordering    ArchitectureOrdering
}

// NewFPG builds a fundamental problem graph from a repository graph.
//
// The result is the subgraph induced by functions and every variable they
// produce or consume. An empty functions list keeps all functions of repo.
// The repository graph is not modified. Unknown ids or ids that are not
// functions are a precondition failure.
func NewFPG(repo *graph.Graph, functions []string, f ProblemFormulation) (*FPG, error) {
	if len(functions) == 0 {
		functions = repo.Functions()
	}
	keep := slices.Clone(functions)
	for _, fn := range functions {
		if _, ok := repo.Function(fn); !ok {
			return nil, errs.Precondition("function %q is not present in the repository graph", fn)
		}
		keep = append(keep, repo.Predecessors(fn)...)
		keep = append(keep, repo.Successors(fn)...)
	}
	g := repo.Subgraph(keep)
	g.SetName("FPG")
	return &FPG{Graph: g, Formulation: f.Clone()}, nil
}

// Clone returns a deep copy of the FPG.
func (p *FPG) Clone() *FPG {
	return &FPG{Graph: p.Graph.Clone(), Formulation: p.Formulation.Clone()}
}

// ArchitectureOrdering derives the synthesized-graph function ordering from
// the computed function ordering. It fails if problem roles have not been
// assigned yet.
func (p *FPG) ArchitectureOrdering() (ArchitectureOrdering, error) {
	fo := p.Formulation.FunctionOrdering
	if fo == nil {
		return ArchitectureOrdering{}, errs.Precondition("function ordering has not been computed")
	}
	out := ArchitectureOrdering{
		Coupled:      slices.Clone(fo.Coupled),
		PostCoupling: slices.Clone(fo.PostCoupling),
	}
	arch := p.Formulation.Architecture
	if !arch.Iterated() {
		out.PreCoupling = slices.Clone(fo.PreCoupling)
		return out, nil
	}

	out.Iterated = true
	targets := make(map[string]bool)
	for _, dv := range VariablesWithRole(p.Graph, graph.RoleDesignVariable) {
		for _, t := range p.Graph.Successors(dv) {
			targets[t] = true
		}
	}
	split := len(fo.PreCoupling)
	for i, fn := range fo.PreCoupling {
		if targets[fn] {
			split = i
			break
		}
	}
	out.PreIterator = slices.Clone(fo.PreCoupling[:split])
	out.PostIterator = slices.Clone(fo.PreCoupling[split:])
	if arch == IDF {
		out.PostCoupling = append(out.PostCoupling, ConsistencyFunctionName)
	}
	return out, nil
}

// Clone returns a deep copy of the MDG.
func (m *MDG) Clone() *MDG {
	return &MDG{Graph: m.Graph.Clone(), Formulation: m.Formulation.Clone(), Ordering: m.Ordering.Clone()}
}

// Clone returns a deep copy of the MPG.
func (m *MPG) Clone() *MPG {
	return &MPG{Graph: m.Graph.Clone(), Formulation: m.Formulation.Clone(), Ordering: m.Ordering.Clone()}
}

// VariablesWithRole returns the variables carrying the given problem role,
// in insertion order.
func VariablesWithRole(g *graph.Graph, role graph.VariableRole) []string {
	return g.FindNodes(func(n *graph.Node) bool {
		return n.Variable != nil && n.Variable.ProblemRole == role
	})
}

// FunctionsWithBlockRole returns the functions carrying the given
// architecture role, in insertion order.
func FunctionsWithBlockRole(g *graph.Graph, role graph.BlockRole) []string {
	return g.FindNodes(func(n *graph.Node) bool {
		return n.Function != nil && n.Function.ArchitectureRole == role
	})
}

// SystemInputs returns variables that are consumed but never produced.
func SystemInputs(g *graph.Graph) []string {
	return g.FindNodes(func(n *graph.Node) bool {
		return n.IsVariable() && g.InDegree(n.ID) == 0 && g.OutDegree(n.ID) > 0
	})
}

// SystemOutputs returns variables that are produced but never consumed.
func SystemOutputs(g *graph.Graph) []string {
	return g.FindNodes(func(n *graph.Node) bool {
		return n.IsVariable() && g.InDegree(n.ID) > 0 && g.OutDegree(n.ID) == 0
	})
}

// IsOutput reports whether a variable is produced but not consumed.
func IsOutput(g *graph.Graph, id string) bool {
	return g.InDegree(id) > 0 && g.OutDegree(id) == 0
}

// IsHole reports whether a variable is neither produced nor consumed.
func IsHole(g *graph.Graph, id string) bool {
	return g.InDegree(id) == 0 && g.OutDegree(id) == 0
}

// VariablesWithCopyRole returns the copies carrying the given architecture
// role, in insertion order.
func VariablesWithCopyRole(g *graph.Graph, role graph.CopyRole) []string {
	return g.FindNodes(func(n *graph.Node) bool {
		return n.Variable != nil && n.Variable.ArchitectureRole == role
	})
}
