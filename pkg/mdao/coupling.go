package mdao

import "github.com/matzehuels/mdaograph/pkg/graph"

// Direction filters couplings by where the consumer runs relative to the
// producer in a function order.
type Direction int

const (
	// Backward selects feedback: the consumer runs before the producer.
	Backward Direction = iota + 1
	// Forward selects feedforward: the consumer runs after the producer.
	Forward
	// Both selects feedback and feedforward.
	Both
)

// String returns "backward", "forward" or "both".
func (d Direction) String() string {
	switch d {
	case Backward:
		return "backward"
	case Forward:
		return "forward"
	case Both:
		return "both"
	}
	return "unknown"
}

// Coupling is a direct data dependency between two functions of an ordered
// set, carried by a single variable.
type Coupling struct {
	Producer string
	Consumer string
	Variable string
}

// DirectCouplings lists the couplings among functions that match dir. Only
// variables produced by one function and consumed directly by another count.
// The result is ordered by producer position, then by the producer's output
// order, then by consumer insertion order.
func DirectCouplings(g *graph.Graph, functions []string, dir Direction) []Coupling {
	pos := graph.PosMap(functions)
	var out []Coupling
	for i, producer := range functions {
		for _, v := range g.Successors(producer) {
			if n, ok := g.Node(v); !ok || !n.IsVariable() {
				continue
			}
			for _, consumer := range g.Successors(v) {
				j, ok := pos[consumer]
				if !ok || j == i {
					continue
				}
				if (j < i && dir != Forward) || (j > i && dir != Backward) {
					out = append(out, Coupling{Producer: producer, Consumer: consumer, Variable: v})
				}
			}
		}
	}
	return out
}

// HasFeedback reports whether any function in the ordered set feeds a
// function that runs before it.
func HasFeedback(g *graph.Graph, functions []string) bool {
	return len(DirectCouplings(g, functions, Backward)) > 0
}

// HasCoupling reports whether any data flows between two distinct functions
// of the set, in either direction.
func HasCoupling(g *graph.Graph, functions []string) bool {
	return len(DirectCouplings(g, functions, Both)) > 0
}
