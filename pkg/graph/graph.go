package graph

import (
	"errors"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID already exists in the graph.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// does not exist.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// does not exist.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by lookups that require an existing node.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned by [Graph.SetEdgeStep] for a missing edge.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrCategoryMismatch is returned by [Graph.AddNode] when the attribute
	// block does not match the node category.
	ErrCategoryMismatch = errors.New("node attributes do not match category")
)

// Metadata stores pass-through key-value pairs attached to nodes or the graph,
// such as display shapes or descriptions. The engine never interprets them.
type Metadata map[string]any

// Node is a vertex of an MDAO graph. Exactly one of Function and Variable is
// non-nil, matching Category.
type Node struct {
	ID       string
	Label    string // Display label, defaults to ID
	Category Category
	Function *FunctionAttrs
	Variable *VariableAttrs
	Meta     Metadata // Never nil after AddNode
}

// IsFunction reports whether the node is a function.
func (n *Node) IsFunction() bool { return n.Category == CategoryFunction }

// IsVariable reports whether the node is a variable.
func (n *Node) IsVariable() bool { return n.Category == CategoryVariable }

func (n *Node) clone() *Node {
	return &Node{
		ID:       n.ID,
		Label:    n.Label,
		Category: n.Category,
		Function: n.Function.clone(),
		Variable: n.Variable.clone(),
		Meta:     cloneMeta(n.Meta),
	}
}

// Edge is a directed data dependency: From produces data consumed by To.
// ProcessStep is only set in process graphs.
type Edge struct {
	From        string
	To          string
	ProcessStep *int
}

type edgeKey struct{ from, to string }

// Graph is a directed graph of function and variable nodes. Parallel edges
// are not represented: adding an existing edge is a no-op.
//
// The zero value is not usable - use New to create a valid Graph instance.
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	name     string
	nodes    map[string]*Node
	order    []string
	edges    map[edgeKey]*Edge
	edgeSeq  []edgeKey
	outgoing map[string][]string
	incoming map[string][]string
	meta     Metadata
}

// New creates an empty graph with the given name.
func New(name string) *Graph {
	return &Graph{
		name:     name,
		nodes:    make(map[string]*Node),
		edges:    make(map[edgeKey]*Edge),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		meta:     Metadata{},
	}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// SetName renames the graph.
func (g *Graph) SetName(name string) { g.name = name }

// Meta returns the graph-level metadata map. It is never nil.
func (g *Graph) Meta() Metadata { return g.meta }

// AddNode adds a node to the graph. Returns ErrInvalidNodeID for an empty ID,
// ErrDuplicateNodeID if the ID is taken, or ErrCategoryMismatch if the
// attribute block does not belong to the category. A missing attribute block
// for the category is initialized to its zero value.
func (g *Graph) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := g.nodes[n.ID]; exists {
		return ErrDuplicateNodeID
	}
	switch n.Category {
	case CategoryFunction:
		if n.Variable != nil {
			return ErrCategoryMismatch
		}
		if n.Function == nil {
			n.Function = &FunctionAttrs{}
		}
	case CategoryVariable:
		if n.Function != nil {
			return ErrCategoryMismatch
		}
		if n.Variable == nil {
			n.Variable = &VariableAttrs{}
		}
	default:
		return ErrCategoryMismatch
	}
	if n.Label == "" {
		n.Label = n.ID
	}
	if n.Meta == nil {
		n.Meta = Metadata{}
	}
	node := &n
	g.nodes[node.ID] = node
	g.order = append(g.order, node.ID)
	return nil
}

// AddFunction adds a function node with the given attributes.
func (g *Graph) AddFunction(id string, attrs FunctionAttrs) error {
	return g.AddNode(Node{ID: id, Category: CategoryFunction, Function: &attrs})
}

// AddVariable adds a variable node with the given attributes.
func (g *Graph) AddVariable(id string, attrs VariableAttrs) error {
	return g.AddNode(Node{ID: id, Category: CategoryVariable, Variable: &attrs})
}

// RemoveNode removes a node and every edge touching it.
// No error is returned if the node does not exist.
func (g *Graph) RemoveNode(id string) {
	if _, ok := g.nodes[id]; !ok {
		return
	}
	for _, child := range slices.Clone(g.outgoing[id]) {
		g.RemoveEdge(id, child)
	}
	for _, parent := range slices.Clone(g.incoming[id]) {
		g.RemoveEdge(parent, id)
	}
	delete(g.nodes, id)
	delete(g.outgoing, id)
	delete(g.incoming, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
}

// AddEdge adds the directed edge from→to. Adding an edge that already exists
// is a no-op. Returns ErrUnknownSourceNode or ErrUnknownTargetNode if an
// endpoint is missing.
func (g *Graph) AddEdge(from, to string) error {
	if _, ok := g.nodes[from]; !ok {
		return ErrUnknownSourceNode
	}
	if _, ok := g.nodes[to]; !ok {
		return ErrUnknownTargetNode
	}
	key := edgeKey{from, to}
	if _, exists := g.edges[key]; exists {
		return nil
	}
	g.edges[key] = &Edge{From: from, To: to}
	g.edgeSeq = append(g.edgeSeq, key)
	g.outgoing[from] = append(g.outgoing[from], to)
	g.incoming[to] = append(g.incoming[to], from)
	return nil
}

// SetEdgeStep records the process step of an existing edge.
func (g *Graph) SetEdgeStep(from, to string, step int) error {
	e, ok := g.edges[edgeKey{from, to}]
	if !ok {
		return ErrUnknownEdge
	}
	e.ProcessStep = Int(step)
	return nil
}

// RemoveEdge removes the edge from→to if it exists.
func (g *Graph) RemoveEdge(from, to string) {
	key := edgeKey{from, to}
	if _, ok := g.edges[key]; !ok {
		return
	}
	delete(g.edges, key)
	g.edgeSeq = slices.DeleteFunc(g.edgeSeq, func(k edgeKey) bool { return k == key })
	g.outgoing[from] = slices.DeleteFunc(g.outgoing[from], func(s string) bool { return s == to })
	g.incoming[to] = slices.DeleteFunc(g.incoming[to], func(s string) bool { return s == from })
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// HasEdge reports whether the edge from→to exists.
func (g *Graph) HasEdge(from, to string) bool {
	_, ok := g.edges[edgeKey{from, to}]
	return ok
}

// Node returns the node with the given ID and true, or nil and false if not
// found. The returned pointer refers to the node in the graph.
func (g *Graph) Node(id string) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Function returns the function attributes of id, or false if id is not a
// function node.
func (g *Graph) Function(id string) (*FunctionAttrs, bool) {
	n, ok := g.nodes[id]
	if !ok || n.Function == nil {
		return nil, false
	}
	return n.Function, true
}

// Variable returns the variable attributes of id, or false if id is not a
// variable node.
func (g *Graph) Variable(id string) (*VariableAttrs, bool) {
	n, ok := g.nodes[id]
	if !ok || n.Variable == nil {
		return nil, false
	}
	return n.Variable, true
}

// Edge returns the edge from→to and true, or nil and false if it does not exist.
func (g *Graph) Edge(from, to string) (*Edge, bool) {
	e, ok := g.edges[edgeKey{from, to}]
	return e, ok
}

// Nodes returns all nodes in insertion order. The pointers refer to the
// nodes in the graph.
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, len(g.order))
	for i, id := range g.order {
		nodes[i] = g.nodes[id]
	}
	return nodes
}

// NodeIDs returns all node IDs in insertion order.
func (g *Graph) NodeIDs() []string { return slices.Clone(g.order) }

// Functions returns the IDs of all function nodes in insertion order.
func (g *Graph) Functions() []string {
	return g.ids(func(n *Node) bool { return n.IsFunction() })
}

// Variables returns the IDs of all variable nodes in insertion order.
func (g *Graph) Variables() []string {
	return g.ids(func(n *Node) bool { return n.IsVariable() })
}

// FindNodes returns the IDs of nodes matching pred, in insertion order.
func (g *Graph) FindNodes(pred func(*Node) bool) []string {
	return g.ids(pred)
}

func (g *Graph) ids(pred func(*Node) bool) []string {
	var out []string
	for _, id := range g.order {
		if pred(g.nodes[id]) {
			out = append(out, id)
		}
	}
	return out
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edgeSeq))
	for i, k := range g.edgeSeq {
		e := g.edges[k]
		out[i] = Edge{From: e.From, To: e.To, ProcessStep: cloneInt(e.ProcessStep)}
	}
	return out
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Successors returns the IDs of nodes that id has edges to, in insertion
// order. The slice is a copy and may be kept across mutations.
func (g *Graph) Successors(id string) []string { return slices.Clone(g.outgoing[id]) }

// Predecessors returns the IDs of nodes with edges to id, in insertion
// order. The slice is a copy and may be kept across mutations.
func (g *Graph) Predecessors(id string) []string { return slices.Clone(g.incoming[id]) }

// OutDegree returns the number of outgoing edges. Returns 0 for unknown nodes.
func (g *Graph) OutDegree(id string) int { return len(g.outgoing[id]) }

// InDegree returns the number of incoming edges. Returns 0 for unknown nodes.
func (g *Graph) InDegree(id string) int { return len(g.incoming[id]) }

// Clone returns a deep copy of the graph. Attribute blocks, bounds, samples
// and metadata are copied, so the clone can be mutated freely.
func (g *Graph) Clone() *Graph {
	return g.Subgraph(g.order)
}

// Subgraph returns a deep copy of the subgraph induced by ids. Unknown IDs
// are ignored. Node order follows the receiver's insertion order.
func (g *Graph) Subgraph(ids []string) *Graph {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	out := New(g.name)
	out.meta = cloneMeta(g.meta)
	for _, id := range g.order {
		if keep[id] {
			n := g.nodes[id].clone()
			out.nodes[id] = n
			out.order = append(out.order, id)
		}
	}
	for _, k := range g.edgeSeq {
		if keep[k.from] && keep[k.to] {
			e := g.edges[k]
			out.edges[k] = &Edge{From: e.From, To: e.To, ProcessStep: cloneInt(e.ProcessStep)}
			out.edgeSeq = append(out.edgeSeq, k)
			out.outgoing[k.from] = append(out.outgoing[k.from], k.to)
			out.incoming[k.to] = append(out.incoming[k.to], k.from)
		}
	}
	return out
}

// Ancestors returns every node from which id is reachable, excluding id
// itself unless it lies on a cycle. The result follows insertion order.
func (g *Graph) Ancestors(id string) []string {
	seen := make(map[string]bool)
	stack := slices.Clone(g.incoming[id])
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[n] {
			continue
		}
		seen[n] = true
		stack = append(stack, g.incoming[n]...)
	}
	return g.ids(func(n *Node) bool { return seen[n.ID] })
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}
