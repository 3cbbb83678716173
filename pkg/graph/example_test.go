package graph_test

import (
	"fmt"

	"github.com/matzehuels/mdaograph/pkg/graph"
)

func ExampleGraph_basic() {
	// Two functions exchanging data in a loop: A → x → B → y → A
	g := graph.New("loop")
	_ = g.AddFunction("A", graph.FunctionAttrs{})
	_ = g.AddFunction("B", graph.FunctionAttrs{})
	_ = g.AddVariable("x", graph.VariableAttrs{})
	_ = g.AddVariable("y", graph.VariableAttrs{})
	_ = g.AddEdge("A", "x")
	_ = g.AddEdge("x", "B")
	_ = g.AddEdge("B", "y")
	_ = g.AddEdge("y", "A")

	fmt.Println("Functions:", g.Functions())
	fmt.Println("Variables:", g.Variables())
	fmt.Println("Consumers of x:", g.Successors("x"))
	// Output:
	// Functions: [A B]
	// Variables: [x y]
	// Consumers of x: [B]
}

func ExampleGraph_SimpleCycles() {
	g := graph.New("loop")
	_ = g.AddFunction("A", graph.FunctionAttrs{})
	_ = g.AddFunction("B", graph.FunctionAttrs{})
	_ = g.AddVariable("x", graph.VariableAttrs{})
	_ = g.AddVariable("y", graph.VariableAttrs{})
	_ = g.AddEdge("A", "x")
	_ = g.AddEdge("x", "B")
	_ = g.AddEdge("B", "y")
	_ = g.AddEdge("y", "A")

	cycles, _ := g.SimpleCycles(graph.DefaultCycleLimit)
	fmt.Println(cycles)
	// Output:
	// [[A x B y]]
}
