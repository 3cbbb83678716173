package schedule

import (
	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// ProcessEdge is a process edge fired at a step.
type ProcessEdge struct {
	From string `json:"from" yaml:"from"`
	To   string `json:"to" yaml:"to"`
}

// ProcessStep lists what happens at one step of a process graph.
type ProcessStep struct {
	Step            int           `json:"step_number" yaml:"step_number"`
	ProcessBlocks   []string      `json:"process_step_blocks" yaml:"process_step_blocks"`
	ConvergerBlocks []string      `json:"converger_step_blocks" yaml:"converger_step_blocks"`
	Edges           []ProcessEdge `json:"edges" yaml:"edges"`
}

// ProcessList flattens a process graph into its steps, from 0 up to the
// converger step of the block at diagonal position 0.
//
// Each step either runs blocks (their process step equals it) or closes
// loops (their converger step equals it), never both and never neither;
// a graph breaking that rule, or without a unique start block carrying a
// converger step, is an ErrCodeModelConsistency error.
func ProcessList(mpg *mdao.MPG) ([]ProcessStep, error) {
	g := mpg.Graph
	first := g.FindNodes(func(n *graph.Node) bool {
		return n.Function != nil && n.Function.DiagonalPosition != nil && *n.Function.DiagonalPosition == 0
	})
	if len(first) != 1 {
		return nil, errs.ModelConsistency("expected exactly one block at diagonal position 0, found %d", len(first))
	}
	start, _ := g.Function(first[0])
	if start.ConvergerStep == nil {
		return nil, errs.ModelConsistency("start block %s has no converger step", first[0])
	}

	last := *start.ConvergerStep
	steps := make([]ProcessStep, 0, last+1)
	for step := 0; step <= last; step++ {
		ps := ProcessStep{
			Step:            step,
			ProcessBlocks:   g.FindNodes(func(n *graph.Node) bool { return hasStep(n.Function, step, false) }),
			ConvergerBlocks: g.FindNodes(func(n *graph.Node) bool { return hasStep(n.Function, step, true) }),
			Edges:           []ProcessEdge{},
		}
		switch {
		case len(ps.ProcessBlocks) == 0 && len(ps.ConvergerBlocks) == 0:
			return nil, errs.ModelConsistency("process block data missing for step %d", step)
		case len(ps.ProcessBlocks) > 0 && len(ps.ConvergerBlocks) > 0:
			return nil, errs.ModelConsistency("step %d both runs and closes blocks", step)
		}
		for _, e := range g.Edges() {
			if e.ProcessStep != nil && *e.ProcessStep == step {
				ps.Edges = append(ps.Edges, ProcessEdge{From: e.From, To: e.To})
			}
		}
		steps = append(steps, ps)
	}
	return steps, nil
}

func hasStep(f *graph.FunctionAttrs, step int, converger bool) bool {
	if f == nil {
		return false
	}
	p := f.ProcessStep
	if converger {
		p = f.ConvergerStep
	}
	return p != nil && *p == step
}
