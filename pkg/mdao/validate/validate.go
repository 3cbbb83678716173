package validate

import (
	"fmt"
	"strings"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
	"github.com/matzehuels/mdaograph/pkg/mdao"
)

// Tier selects a group of checks.
type Tier string

// Validation tiers, in the order [All] runs them.
const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

// Tiers lists every tier in ascending order.
var Tiers = []Tier{TierA, TierB, TierC}

// ParseTier validates a tier name.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(strings.ToUpper(s)); t {
	case TierA, TierB, TierC:
		return t, nil
	}
	return "", fmt.Errorf("unknown validation tier %q", s)
}

// Diagnostic is a single failed check.
type Diagnostic struct {
	Tier    Tier   `json:"tier"`
	Node    string `json:"node,omitempty"` // Offending node, if the check is node-specific
	Message string `json:"message"`
}

// String formats the diagnostic as "[tier] message".
func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Tier, d.Message)
}

// Failure is returned by callers that refuse to continue after a failed
// check. It carries the diagnostics of the failing tier.
type Failure struct {
	Stage       mdao.Stage
	Diagnostics []Diagnostic
}

func (f *Failure) Error() string {
	if len(f.Diagnostics) == 0 {
		return fmt.Sprintf("%s graph is invalid", f.Stage)
	}
	msgs := make([]string, len(f.Diagnostics))
	for i, d := range f.Diagnostics {
		msgs[i] = d.String()
	}
	return fmt.Sprintf("%s graph is invalid: %s", f.Stage, strings.Join(msgs, "; "))
}

// Check runs a single tier against g. It returns false together with the
// collected diagnostics when any check fails. A formulation that lacks the
// architecture, the convergence type or the function order cannot be
// checked at tiers B and C and yields a precondition error.
//
// Tier C only has checks for fundamental problem graphs; for the later
// stages it always passes.
func Check(g *graph.Graph, f *mdao.ProblemFormulation, stage mdao.Stage, tier Tier) (bool, []Diagnostic, error) {
	c := &checker{g: g, f: f, stage: stage, tier: tier}
	switch tier {
	case TierA:
		c.tierA()
	case TierB:
		if err := c.requireKeys(); err != nil {
			return false, nil, err
		}
		c.tierB()
	case TierC:
		if err := c.requireKeys(); err != nil {
			return false, nil, err
		}
		if stage == mdao.StageFPG {
			if f.FunctionOrdering == nil {
				return false, nil, errs.Precondition("function ordering has not been computed")
			}
			c.tierC()
		}
	default:
		return false, nil, errs.New(errs.ErrCodeInvalidInput, "unknown validation tier %q", tier)
	}
	return len(c.diags) == 0, c.diags, nil
}

// All runs tiers A, B and C in order and stops at the first tier that fails.
func All(g *graph.Graph, f *mdao.ProblemFormulation, stage mdao.Stage) (bool, []Diagnostic, error) {
	for _, tier := range Tiers {
		ok, diags, err := Check(g, f, stage, tier)
		if err != nil || !ok {
			return false, diags, err
		}
	}
	return true, nil, nil
}

// FPG runs every tier on a fundamental problem graph.
func FPG(p *mdao.FPG) (bool, []Diagnostic, error) {
	return All(p.Graph, &p.Formulation, mdao.StageFPG)
}

// MDG runs every tier on a data graph.
func MDG(m *mdao.MDG) (bool, []Diagnostic, error) {
	return All(m.Graph, &m.Formulation, mdao.StageMDG)
}

// MPG runs every tier on a process graph.
func MPG(m *mdao.MPG) (bool, []Diagnostic, error) {
	return All(m.Graph, &m.Formulation, mdao.StageMPG)
}

type checker struct {
	g     *graph.Graph
	f     *mdao.ProblemFormulation
	stage mdao.Stage
	tier  Tier
	diags []Diagnostic
}

func (c *checker) fail(node, format string, args ...any) {
	c.diags = append(c.diags, Diagnostic{Tier: c.tier, Node: node, Message: fmt.Sprintf(format, args...)})
}

func (c *checker) ok() bool { return len(c.diags) == 0 }

func (c *checker) requireKeys() error {
	if c.f == nil {
		return errs.Precondition("problem formulation is missing")
	}
	var missing []string
	if c.f.Architecture == "" {
		missing = append(missing, "mdao_architecture")
	}
	if c.f.ConvergenceType == "" {
		missing = append(missing, "convergence_type")
	}
	if c.f.FunctionOrder == nil {
		missing = append(missing, "function_order")
	}
	if len(missing) > 0 {
		return errs.Precondition("problem formulation is missing %s", strings.Join(missing, ", "))
	}
	return nil
}
