// Package synth turns a fundamental problem graph into an MDAO data graph.
//
// [SynthesizeMDG] validates the problem graph, inserts the blocks the chosen
// architecture needs (coordinator, optimizer, converger, DOE, consistency
// constraint function) and rewires the coupling variables around them:
//
//	mdg, err := synth.SynthesizeMDG(fpg)
//	if errors.Is(err, errors.ErrCodeArchitectureMismatch) {
//		// the formulation does not fit the problem
//	}
//
// The connect functions are exported so that custom recipes can be built on
// top of the same primitives. They all work in place on an [mdao.MDG] and
// fail with a precondition error when a referenced node is missing.
//
// Variables that synthesis derives from another variable (initial guesses,
// final values, coupling copies, DOE sample lists) are new nodes whose
// RelatedTo attribute names the original. Their ids live under an
// architectureNodes path so they never collide with repository ids.
package synth
