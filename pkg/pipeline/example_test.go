package pipeline_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/pipeline"
)

const paraboloid = `
formulation {
  architecture     = "MDF"
  convergence_type = "Gauss-Seidel"
}

function "A" {
  inputs  = ["d", "y_fb"]
  outputs = ["x"]
}

function "B" {
  inputs  = ["x"]
  outputs = ["y"]
}

function "C" {
  inputs  = ["y"]
  outputs = ["y_fb", "o"]
}

design_variable "d" {
  lower = -1
  upper = 1
}

objective "o" {}
`

func ExampleRunner_Execute() {
	doc, err := pipeline.ParseDocument([]byte(paraboloid), "problem.hcl")
	if err != nil {
		fmt.Println(err)
		return
	}

	runner := pipeline.NewRunner(nil, nil, log.New(io.Discard))
	res, err := runner.Execute(context.Background(), doc, pipeline.Options{Process: true})
	if err != nil {
		fmt.Println(err)
		return
	}

	fmt.Println("coupled:", res.FPG.Formulation.FunctionOrdering.Coupled)
	fmt.Println("architecture:", res.MPG.Formulation.Architecture)
	fmt.Println("process steps:", len(res.Process.Steps))
	e, _ := res.MPG.Graph.Edge(mdao.CoordinatorName, mdao.OptimizerName)
	fmt.Println("optimizer starts at step:", *e.ProcessStep)
	// Output:
	// coupled: [A B C]
	// architecture: MDF
	// process steps: 9
	// optimizer starts at step: 1
}
