// Package schedule turns MDAO data graphs into process graphs.
//
// A process graph (MPG) keeps only the function nodes of a data graph. Each
// function gets a process step, its position in the execution sequence, and
// blocks that close a loop (coordinator, optimizer, converger, DOE) also get
// a converger step. Process edges carry the step at which control passes
// along them.
//
// [ScheduleMPG] applies the fixed recipe of the formulation's architecture,
// built from three primitives: a sequential chain, a parallel fan-out with
// an optional fan-in, and the link that closes a nested loop into its
// parent. [NestedProcessOrdering] recovers the loop structure from the
// finished graph, and [ProcessList] flattens it step by step for drivers
// and animations:
//
//	mpg, err := schedule.ScheduleMPG(mdg)
//	if err != nil {
//	    return err
//	}
//	steps, err := schedule.ProcessList(mpg)
package schedule
