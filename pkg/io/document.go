package io

import (
	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// Document is a graph together with the graph-level attributes of its
// stage. Ordering is only set for data and process graphs.
type Document struct {
	Stage       mdao.Stage
	Graph       *graph.Graph
	Formulation mdao.ProblemFormulation
	Ordering    *mdao.ArchitectureOrdering
}

// NewRepository wraps a raw repository graph. The formulation may be
// partial: only the fields known before problem definition need be set.
func NewRepository(g *graph.Graph, f mdao.ProblemFormulation) *Document {
	return &Document{Stage: mdao.StageRepository, Graph: g, Formulation: f}
}

// FromFPG wraps a fundamental problem graph.
func FromFPG(p *mdao.FPG) *Document {
	return &Document{Stage: mdao.StageFPG, Graph: p.Graph, Formulation: p.Formulation}
}

// FromMDG wraps a data graph.
func FromMDG(m *mdao.MDG) *Document {
	o := m.Ordering
	return &Document{Stage: mdao.StageMDG, Graph: m.Graph, Formulation: m.Formulation, Ordering: &o}
}

// FromMPG wraps a process graph.
func FromMPG(m *mdao.MPG) *Document {
	o := m.Ordering
	return &Document{Stage: mdao.StageMPG, Graph: m.Graph, Formulation: m.Formulation, Ordering: &o}
}

// FPG returns the document as a fundamental problem graph. A repository
// document is reduced to the subgraph of all its functions with
// [mdao.NewFPG]; an FPG document is used as is.
func (d *Document) FPG() (*mdao.FPG, error) {
	switch d.Stage {
	case mdao.StageRepository:
		return mdao.NewFPG(d.Graph, nil, d.Formulation)
	case mdao.StageFPG:
		return &mdao.FPG{Graph: d.Graph, Formulation: d.Formulation}, nil
	}
	return nil, stageError(d.Stage, mdao.StageFPG)
}

// MDG returns the document as a data graph.
func (d *Document) MDG() (*mdao.MDG, error) {
	if d.Stage != mdao.StageMDG {
		return nil, stageError(d.Stage, mdao.StageMDG)
	}
	if d.Ordering == nil {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "mdg document has no architecture_ordering")
	}
	return &mdao.MDG{Graph: d.Graph, Formulation: d.Formulation, Ordering: *d.Ordering}, nil
}

// MPG returns the document as a process graph.
func (d *Document) MPG() (*mdao.MPG, error) {
	if d.Stage != mdao.StageMPG {
		return nil, stageError(d.Stage, mdao.StageMPG)
	}
	if d.Ordering == nil {
		return nil, errs.New(errs.ErrCodeInvalidFormat, "mpg document has no architecture_ordering")
	}
	return &mdao.MPG{Graph: d.Graph, Formulation: d.Formulation, Ordering: *d.Ordering}, nil
}

func stageError(got, want mdao.Stage) error {
	return errs.Precondition("document holds a %s graph, expected %s", got, want)
}
