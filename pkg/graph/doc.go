// Package graph provides the directed attributed graph that every MDAO stage
// is built on.
//
// # Overview
//
// An MDAO problem is a bipartite data-flow graph: function nodes produce and
// consume variable nodes, and an edge u→v always means "u produces data that
// v consumes". The same structure carries the fundamental problem graph, the
// synthesized data graph and (with variables dropped) the process graph.
//
// # Nodes
//
// [Node] is a tagged variant. Its [Category] selects which attribute block is
// populated:
//
//   - [CategoryFunction]: [FunctionAttrs] with the function's problem role,
//     architecture role, process steps and block settings
//   - [CategoryVariable]: [VariableAttrs] with the variable's problem role,
//     bounds, samples and copy role
//
// The attribute that does not belong to the category stays nil, and
// [Graph.AddNode] rejects nodes that mix the two with [ErrCategoryMismatch].
// Display data that the engine does not interpret goes into [Node.Meta].
//
// # Basic Usage
//
//	g := graph.New("wing")
//	_ = g.AddFunction("aero", graph.FunctionAttrs{})
//	_ = g.AddVariable("lift", graph.VariableAttrs{})
//	_ = g.AddEdge("aero", "lift")
//
// Nodes and edges are returned in insertion order, so every algorithm built on
// top of this package is deterministic.
//
// # Cycles
//
// [Graph.SimpleCycles] enumerates elementary circuits with an explicit stack
// and a hard limit. When the limit is exceeded it returns an
// [errors.ScaleLimitError] instead of partial results.
//
// # Concurrency
//
// Graph instances are not safe for concurrent use. Pipeline stages never share
// a graph: each stage works on a [Graph.Clone] of its input.
//
// [errors.ScaleLimitError]: github.com/matzehuels/mdaograph/pkg/errors.ScaleLimitError
package graph
