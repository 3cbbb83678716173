package io

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/schedule"
)

// ProcessReport is the human-readable summary of a process graph: its
// steps in order and, when computed, its loop nesting.
type ProcessReport struct {
	Name            string                 `json:"name" yaml:"name"`
	Architecture    mdao.Architecture      `json:"mdao_architecture" yaml:"mdao_architecture"`
	ConvergenceType mdao.ConvergenceType   `json:"convergence_type" yaml:"convergence_type"`
	Steps           []schedule.ProcessStep `json:"process_list" yaml:"process_list"`
	Nesting         *schedule.Nesting      `json:"nesting,omitempty" yaml:"nesting,omitempty"`
}

// NewProcessReport builds the report of mpg. Nesting is skipped when
// nestingLimit is negative.
func NewProcessReport(mpg *mdao.MPG, nestingLimit int) (*ProcessReport, error) {
	steps, err := schedule.ProcessList(mpg)
	if err != nil {
		return nil, err
	}
	r := &ProcessReport{
		Name:            mpg.Graph.Name(),
		Architecture:    mpg.Formulation.Architecture,
		ConvergenceType: mpg.Formulation.ConvergenceType,
		Steps:           steps,
	}
	if nestingLimit >= 0 {
		if r.Nesting, err = schedule.NestedProcessOrdering(mpg, nestingLimit); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WriteProcessYAML encodes a process report as YAML.
func WriteProcessYAML(r *ProcessReport, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ReadProcessYAML decodes a report written by [WriteProcessYAML].
func ReadProcessYAML(r io.Reader) (*ProcessReport, error) {
	var out ProcessReport
	if err := yaml.NewDecoder(r).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &out, nil
}
