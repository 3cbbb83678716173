// Package pipeline runs the MDAO graph lifecycle end to end.
//
// The pipeline is the single entry point used by the CLI and the HTTP
// server. It chains the pure stage transforms of the mdao packages:
//
//  1. Roles: compute the function ordering and problem roles of an FPG
//  2. Synthesize: build the MDAO data graph for the chosen architecture
//  3. Schedule: derive the process graph from the data graph
//  4. Process: flatten the process graph into steps and loop nesting
//
// Synthesis, scheduling and the process report are cached by the hash of
// their input document, so a repeated run over an unchanged problem only
// decodes cached results.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	doc, err := pipeline.LoadDocument("sellar.hcl")
//	if err != nil {
//	    return err
//	}
//	result, err := runner.Execute(ctx, doc, pipeline.Options{Target: mdao.StageMPG})
//
// Individual stages can be run on their own with [Runner.Roles],
// [Runner.Synthesize], [Runner.Schedule] and [Runner.Process].
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/mdaograph/pkg/cache"
	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	mdaoio "github.com/matzehuels/mdaograph/pkg/io"
	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/validate"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultTarget is the last stage produced when Options.Target is empty.
	DefaultTarget = mdao.StageMPG

	// DefaultCycleLimit bounds cycle enumeration in the process report.
	DefaultCycleLimit = graph.DefaultCycleLimit
)

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run. This struct supports JSON
// serialization for API requests.
type Options struct {
	// Target is the last stage to produce: fpg, mdg or mpg.
	Target mdao.Stage `json:"target,omitempty"`

	// Process also builds the process report when Target is mpg.
	Process bool `json:"process,omitempty"`

	// Formulation overrides. Empty values keep the document's settings.
	Architecture              mdao.Architecture    `json:"mdao_architecture,omitempty"`
	ConvergenceType           mdao.ConvergenceType `json:"convergence_type,omitempty"`
	AllowUnconvergedCouplings *bool                `json:"allow_unconverged_couplings,omitempty"`

	// CycleLimit bounds cycle enumeration for the loop nesting.
	CycleLimit int `json:"cycle_limit,omitempty"`

	// Refresh bypasses cache reads; results are still written.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run. Stages beyond the
// target are nil.
type Result struct {
	// RunID identifies this run in logs and API responses.
	RunID string

	FPG     *mdao.FPG
	MDG     *mdao.MDG
	MPG     *mdao.MPG
	Process *mdaoio.ProcessReport

	// Diagnostics are the findings of the FPG checks. A non-empty list
	// means synthesis was not attempted.
	Diagnostics []validate.Diagnostic

	// InputHash is the content hash of the input document.
	InputHash string

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics of the last produced graph.
type Stats struct {
	NodeCount      int
	EdgeCount      int
	RolesTime      time.Duration
	SynthesizeTime time.Duration
	ScheduleTime   time.Duration
	ProcessTime    time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	MDGHit     bool
	MPGHit     bool
	ProcessHit bool
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateTarget checks that a stage can be a pipeline target.
func ValidateTarget(s mdao.Stage) error {
	switch s {
	case mdao.StageFPG, mdao.StageMDG, mdao.StageMPG:
		return nil
	}
	return errs.New(errs.ErrCodeInvalidInput, "invalid target: %q (must be one of: fpg, mdg, mpg)", s)
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks the options and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Target == "" {
		o.Target = DefaultTarget
	}
	if err := ValidateTarget(o.Target); err != nil {
		return err
	}
	if o.Architecture != "" && !o.Architecture.Valid() {
		return errs.New(errs.ErrCodeInvalidInput, "invalid mdao_architecture: %q", o.Architecture)
	}
	if o.ConvergenceType != "" && !o.ConvergenceType.Valid() {
		return errs.New(errs.ErrCodeInvalidInput, "invalid convergence_type: %q", o.ConvergenceType)
	}
	if o.CycleLimit < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "invalid cycle_limit: %d (must not be negative)", o.CycleLimit)
	}
	if o.CycleLimit == 0 {
		o.CycleLimit = DefaultCycleLimit
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	o.validated = true
	return nil
}

// Reaches reports whether the run produces stage s.
func (o *Options) Reaches(s mdao.Stage) bool {
	return stageRank(s) <= stageRank(o.Target)
}

// applyOverrides writes the formulation overrides into f.
func (o *Options) applyOverrides(f *mdao.ProblemFormulation) {
	if o.Architecture != "" {
		f.Architecture = o.Architecture
	}
	if o.ConvergenceType != "" {
		f.ConvergenceType = o.ConvergenceType
	}
	if o.AllowUnconvergedCouplings != nil {
		f.AllowUnconvergedCouplings = *o.AllowUnconvergedCouplings
	}
}

// ProcessKeyOpts returns cache key options for the process report.
func (o *Options) ProcessKeyOpts() cache.ProcessKeyOpts {
	return cache.ProcessKeyOpts{CycleLimit: o.CycleLimit}
}

func stageRank(s mdao.Stage) int {
	switch s {
	case mdao.StageRepository:
		return 0
	case mdao.StageFPG:
		return 1
	case mdao.StageMDG:
		return 2
	case mdao.StageMPG:
		return 3
	}
	return -1
}
