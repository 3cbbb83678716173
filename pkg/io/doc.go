// Package io reads and writes MDAO graph documents.
//
// # JSON Format
//
// A document is a flat attribute map of every node and edge plus the
// graph-level attributes of its lifecycle stage:
//
//	{
//	  "graph": {
//	    "name": "FPG",
//	    "stage": "fpg",
//	    "problem_formulation": {
//	      "mdao_architecture": "MDF",
//	      "convergence_type": "Gauss-Seidel",
//	      "function_order": ["A", "B"]
//	    }
//	  },
//	  "nodes": [
//	    {"id": "A", "category": "function", "problem_role": "coupled"},
//	    {"id": "x", "category": "variable", "problem_role": "design variable", "lower_bound": 0}
//	  ],
//	  "edges": [
//	    {"from": "x", "to": "A"}
//	  ]
//	}
//
// Function nodes may carry problem_role, architecture_role, process_step,
// converger_step, diagonal_position and settings. Variable nodes may carry
// problem_role, architecture_role, lower_bound, nominal_value, upper_bound,
// samples and related_to. Edges of a process graph carry process_step.
// Data and process graphs also store their architecture_ordering.
// Anything the engine does not interpret belongs in "meta".
//
// # Import
//
// [ReadJSON] and [ImportJSON] validate the input against an embedded JSON
// Schema before decoding, then rebuild the graph in document order so node
// and edge insertion order survive a round trip:
//
//	doc, err := io.ImportJSON("wing.json")
//	if err != nil {
//	    return err
//	}
//	fpg, err := doc.FPG()
//
// # Export
//
// [WriteJSON] and [ExportJSON] write every attribute of every node and
// edge. [MarshalJSON] is the compact form used for cache keys.
//
// # Process Reports
//
// [WriteProcessYAML] writes the step-by-step process list of a process
// graph together with its loop nesting, for reading by people.
package io
