// Package mdao holds the problem model of multidisciplinary design analysis
// and optimization (MDAO) workflows built on [graph.Graph].
//
// A workflow moves through four stages. A repository graph lists every
// function and variable known to a tool chain. A fundamental problem graph
// ([FPG]) selects the functions of one problem and tags variables with
// problem roles (design variable, objective, constraint, quantity of
// interest). Synthesis turns the FPG into an MDAO data graph ([MDG]) by
// inserting architecture blocks such as a coordinator, optimizer, converger
// or DOE driver. Scheduling derives the MDAO process graph ([MPG]), which
// holds only functions and orders them with numbered process steps.
//
// # Function roles
//
// Given a function order, [CouplingMatrix] counts direct data couplings and
// [AssignFunctionRoles] partitions the order into pre-coupling, coupled and
// post-coupling groups. Only direct producer to consumer edges are counted:
//
//	fpg, _ := mdao.NewFPG(repo, nil, mdao.ProblemFormulation{
//		Architecture:    mdao.MDF,
//		ConvergenceType: mdao.GaussSeidel,
//		FunctionOrder:   []string{"A", "B", "C"},
//	})
//	_ = fpg.AddFunctionProblemRoles()
//	fmt.Println(fpg.Formulation.FunctionOrdering.Coupled)
//
// Subpackages implement the later stages: synth builds MDGs, schedule
// builds MPGs and validate checks each stage.
package mdao
