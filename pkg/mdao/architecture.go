package mdao

import "fmt"

// Architecture names one of the seven supported MDAO architectures.
type Architecture string

// Supported architectures.
const (
	UnconvergedMDA Architecture = "unconverged-MDA"
	ConvergedMDA   Architecture = "converged-MDA"
	IDF            Architecture = "IDF"
	MDF            Architecture = "MDF"
	UnconvergedOPT Architecture = "unconverged-OPT"
	UnconvergedDOE Architecture = "unconverged-DOE"
	ConvergedDOE   Architecture = "converged-DOE"
)

// Architectures lists every supported architecture in canonical order.
var Architectures = []Architecture{
	UnconvergedMDA, ConvergedMDA, IDF, MDF, UnconvergedOPT, UnconvergedDOE, ConvergedDOE,
}

// Valid reports whether a is a known architecture.
func (a Architecture) Valid() bool {
	for _, known := range Architectures {
		if a == known {
			return true
		}
	}
	return false
}

// HasOptimizer reports whether the architecture inserts an optimizer block.
func (a Architecture) HasOptimizer() bool {
	return a == IDF || a == MDF || a == UnconvergedOPT
}

// HasDOE reports whether the architecture inserts a DOE block.
func (a Architecture) HasDOE() bool {
	return a == UnconvergedDOE || a == ConvergedDOE
}

// HasConverger reports whether the architecture inserts a converger block.
func (a Architecture) HasConverger() bool {
	return a == ConvergedMDA || a == MDF || a == ConvergedDOE
}

// Iterated reports whether an optimizer or DOE drives the design variables.
// Pre-coupling functions are then split around the iterator.
func (a Architecture) Iterated() bool { return a.HasOptimizer() || a.HasDOE() }

// Unconverged reports whether the architecture leaves couplings unconverged.
func (a Architecture) Unconverged() bool {
	return a == UnconvergedMDA || a == UnconvergedOPT || a == UnconvergedDOE
}

// ParseArchitecture validates an architecture name.
func ParseArchitecture(s string) (Architecture, error) {
	a := Architecture(s)
	if !a.Valid() {
		return "", fmt.Errorf("unknown MDAO architecture %q", s)
	}
	return a, nil
}

// ConvergenceType selects how coupled functions are iterated.
type ConvergenceType string

// Convergence types.
const (
	Jacobi        ConvergenceType = "Jacobi"
	GaussSeidel   ConvergenceType = "Gauss-Seidel"
	NoConvergence ConvergenceType = "None"
)

// ConvergenceTypes lists every convergence type in canonical order.
var ConvergenceTypes = []ConvergenceType{Jacobi, GaussSeidel, NoConvergence}

// Valid reports whether c is a known convergence type.
func (c ConvergenceType) Valid() bool {
	return c == Jacobi || c == GaussSeidel || c == NoConvergence
}

// ParseConvergenceType validates a convergence type name.
func ParseConvergenceType(s string) (ConvergenceType, error) {
	c := ConvergenceType(s)
	if !c.Valid() {
		return "", fmt.Errorf("unknown convergence type %q", s)
	}
	return c, nil
}

// DOEMethod names a design-of-experiments sampling method.
type DOEMethod string

// DOE methods.
const (
	FullFactorial  DOEMethod = "Full factorial design"
	LatinHypercube DOEMethod = "Latin hypercube design"
	MonteCarlo     DOEMethod = "Monte Carlo design"
	CustomTable    DOEMethod = "Custom design table"
)

// DOEMethods lists every DOE method in canonical order.
var DOEMethods = []DOEMethod{FullFactorial, LatinHypercube, MonteCarlo, CustomTable}

// Valid reports whether m is a known DOE method.
func (m DOEMethod) Valid() bool {
	for _, known := range DOEMethods {
		if m == known {
			return true
		}
	}
	return false
}

// NeedsRuns reports whether the method requires a run count.
func (m DOEMethod) NeedsRuns() bool {
	return m == FullFactorial || m == LatinHypercube || m == MonteCarlo
}

// NeedsSeed reports whether the method requires a random seed.
func (m DOEMethod) NeedsSeed() bool {
	return m == LatinHypercube || m == MonteCarlo
}

// Reserved block names. A repository graph must not use them.
const (
	CoordinatorName         = "Coordinator"
	OptimizerName           = "Optimizer"
	ConvergerName           = "Converger"
	DOEName                 = "DOE"
	ConsistencyFunctionName = "Consistency constraint function"
)

// ReservedNames lists the ids of every block the synthesizer may insert.
var ReservedNames = []string{
	CoordinatorName, OptimizerName, ConvergerName, DOEName, ConsistencyFunctionName,
}

// ConsistencyBound is the half-width of the equality band for IDF
// consistency constraints.
const ConsistencyBound = 1e-6
