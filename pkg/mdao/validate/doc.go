// Package validate checks MDAO graphs in three ascending tiers.
//
// Tier A is structural: the node partition and the per-node attributes a
// graph of the given stage must carry. Tier B is declarative: the problem
// formulation keys and their enumerations. Tier C is semantic: whether the
// chosen architecture and convergence type fit the couplings actually
// present, and whether the design variables, objective, constraints and
// quantities of interest are marked consistently.
//
// Problems are reported as a list of [Diagnostic] values so that all of
// them can be shown at once. Only missing required formulation keys abort a
// check with a precondition error.
package validate
