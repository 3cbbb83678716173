// Package problem loads MDAO problem definitions written in HCL.
//
// A definition declares the analysis functions with the variables they
// consume and produce, the problem formulation, and the roles of the
// variables in the optimization problem:
//
//	name = "sellar"
//
//	formulation {
//	  architecture     = "MDF"
//	  convergence_type = "Gauss-Seidel"
//	}
//
//	function "D1" {
//	  inputs  = ["x1", "z1", "z2", "y2"]
//	  outputs = ["y1"]
//	}
//
//	design_variable "x1" {
//	  lower = 0
//	  upper = 10
//	}
//
//	objective "f" {}
//	constraint "g1" { upper = 0 }
//
// Functions become graph nodes in declaration order, and variables in the
// order they are first mentioned. Without an explicit function_order the
// declaration order is used. A "meta" attribute on a function is copied
// into the node's display metadata as is.
package problem
