package io

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "https://mdaograph.local/schema/document.schema.json"

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("load document schema: %w", err)
			return
		}
		schema, schemaErr = c.Compile(schemaURL)
	})
	return schema, schemaErr
}

type document struct {
	Graph header `json:"graph"`
	Nodes []node `json:"nodes"`
	Edges []edge `json:"edges"`
}

type header struct {
	Name        string                     `json:"name"`
	Stage       mdao.Stage                 `json:"stage"`
	Formulation *mdao.ProblemFormulation   `json:"problem_formulation,omitempty"`
	Ordering    *mdao.ArchitectureOrdering `json:"architecture_ordering,omitempty"`
	Meta        graph.Metadata             `json:"meta,omitempty"`
}

type node struct {
	ID       string `json:"id"`
	Category string `json:"category"`
	Label    string `json:"label,omitempty"`

	ProblemRole      string `json:"problem_role,omitempty"`
	ArchitectureRole string `json:"architecture_role,omitempty"`

	ProcessStep      *int                 `json:"process_step,omitempty"`
	ConvergerStep    *int                 `json:"converger_step,omitempty"`
	DiagonalPosition *int                 `json:"diagonal_position,omitempty"`
	Settings         *graph.BlockSettings `json:"settings,omitempty"`

	graph.Bounds
	RelatedTo string `json:"related_to,omitempty"`

	Meta graph.Metadata `json:"meta,omitempty"`
}

type edge struct {
	From        string `json:"from"`
	To          string `json:"to"`
	ProcessStep *int   `json:"process_step,omitempty"`
}

// WriteJSON encodes a document as JSON and writes it to w.
// Every attribute of every node and edge is written; the output can be
// re-imported with [ReadJSON].
func WriteJSON(d *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(encode(d)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON returns the compact encoding of d. Equal documents marshal
// to equal bytes, so the result can be hashed for cache keys.
func MarshalJSON(d *Document) ([]byte, error) {
	return json.Marshal(encode(d))
}

// ExportJSON writes a document to a JSON file at path.
func ExportJSON(d *Document, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteJSON(d, f)
}

func encode(d *Document) document {
	g := d.Graph
	out := document{
		Graph: header{
			Name:  g.Name(),
			Stage: d.Stage,
			Meta:  g.Meta(),
		},
		Nodes: make([]node, 0, g.NodeCount()),
		Edges: make([]edge, 0, g.EdgeCount()),
	}
	f := d.Formulation
	out.Graph.Formulation = &f
	out.Graph.Ordering = d.Ordering
	if len(out.Graph.Meta) == 0 {
		out.Graph.Meta = nil
	}

	for _, n := range g.Nodes() {
		nd := node{ID: n.ID, Category: n.Category.String()}
		if n.Label != n.ID {
			nd.Label = n.Label
		}
		if len(n.Meta) > 0 {
			nd.Meta = n.Meta
		}
		switch {
		case n.Function != nil:
			fa := n.Function
			nd.ProblemRole = string(fa.ProblemRole)
			nd.ArchitectureRole = string(fa.ArchitectureRole)
			nd.ProcessStep = fa.ProcessStep
			nd.ConvergerStep = fa.ConvergerStep
			nd.DiagonalPosition = fa.DiagonalPosition
			nd.Settings = fa.Settings
		case n.Variable != nil:
			va := n.Variable
			nd.ProblemRole = string(va.ProblemRole)
			nd.ArchitectureRole = string(va.ArchitectureRole)
			nd.Bounds = va.Bounds
			nd.RelatedTo = va.RelatedTo
		}
		out.Nodes = append(out.Nodes, nd)
	}
	for _, e := range g.Edges() {
		out.Edges = append(out.Edges, edge{From: e.From, To: e.To, ProcessStep: e.ProcessStep})
	}
	return out
}

// ReadJSON decodes a JSON document from r.
//
// The input is first validated against the embedded document schema:
//
//	{
//	  "graph": {"name": "FPG", "stage": "fpg", "problem_formulation": {...}},
//	  "nodes": [{"id": "A", "category": "function"}, {"id": "x", "category": "variable"}],
//	  "edges": [{"from": "A", "to": "x"}]
//	}
//
// Schema violations, function attributes on a variable node (or the other
// way around), duplicate ids and edges to unknown nodes are reported as
// ErrCodeInvalidFormat errors naming the offending node or edge.
// ReadJSON does not close r.
func ReadJSON(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return UnmarshalJSON(raw)
}

// UnmarshalJSON is [ReadJSON] over a byte slice.
func UnmarshalJSON(raw []byte) (*Document, error) {
	sch, err := documentSchema()
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "document schema")
	}
	generic, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode")
	}
	if err := sch.Validate(generic); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "document does not match schema")
	}

	var data document
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "decode")
	}
	return decode(data)
}

func decode(data document) (*Document, error) {
	g := graph.New(data.Graph.Name)
	for k, v := range data.Graph.Meta {
		g.Meta()[k] = v
	}
	for _, n := range data.Nodes {
		nd, err := decodeNode(n)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "node %s", n.ID)
		}
		if err := g.AddNode(nd); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "node %s", n.ID)
		}
	}
	for _, e := range data.Edges {
		if err := g.AddEdge(e.From, e.To); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "edge %s->%s", e.From, e.To)
		}
		if e.ProcessStep != nil {
			_ = g.SetEdgeStep(e.From, e.To, *e.ProcessStep)
		}
	}

	d := &Document{Stage: data.Graph.Stage, Graph: g, Ordering: data.Graph.Ordering}
	if data.Graph.Formulation != nil {
		d.Formulation = *data.Graph.Formulation
	}
	return d, nil
}

func decodeNode(n node) (graph.Node, error) {
	cat, err := graph.ParseCategory(n.Category)
	if err != nil {
		return graph.Node{}, err
	}
	nd := graph.Node{ID: n.ID, Label: n.Label, Category: cat, Meta: n.Meta}
	switch cat {
	case graph.CategoryFunction:
		if hasBounds(n.Bounds) || n.RelatedTo != "" {
			return graph.Node{}, fmt.Errorf("variable attributes on a function: %w", graph.ErrCategoryMismatch)
		}
		nd.Function = &graph.FunctionAttrs{
			ProblemRole:      graph.FunctionRole(n.ProblemRole),
			ArchitectureRole: graph.BlockRole(n.ArchitectureRole),
			ProcessStep:      n.ProcessStep,
			ConvergerStep:    n.ConvergerStep,
			DiagonalPosition: n.DiagonalPosition,
			Settings:         n.Settings,
		}
	case graph.CategoryVariable:
		if n.ProcessStep != nil || n.ConvergerStep != nil || n.DiagonalPosition != nil || n.Settings != nil {
			return graph.Node{}, fmt.Errorf("function attributes on a variable: %w", graph.ErrCategoryMismatch)
		}
		nd.Variable = &graph.VariableAttrs{
			ProblemRole:      graph.VariableRole(n.ProblemRole),
			Bounds:           n.Bounds,
			ArchitectureRole: graph.CopyRole(n.ArchitectureRole),
			RelatedTo:        n.RelatedTo,
		}
	}
	return nd, nil
}

func hasBounds(b graph.Bounds) bool {
	return b.Lower != nil || b.Nominal != nil || b.Upper != nil || b.Samples != nil
}

// ImportJSON reads a JSON document file at path.
func ImportJSON(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Wrap(errs.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}
