package synth

import (
	"maps"
	"strings"
	"unicode"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
)

// copyLabels holds the label prefix and suffix of each copy role.
var copyLabels = map[graph.CopyRole][2]string{
	graph.CopyInitialGuessCoupling: {"", "^{c0}"},
	graph.CopyFinalCoupling:        {"", "^*"},
	graph.CopyCoupling:             {"", "^c"},
	graph.CopyInitialGuessDesign:   {"", "^0"},
	graph.CopyFinalDesign:          {"", "^*"},
	graph.CopyFinalOutput:          {"", "^*"},
	graph.CopyConsistency:          {"gc_", ""},
	graph.CopyDOEInputSamples:      {"DOE_", "_inp"},
	graph.CopyDOEOutputSamples:     {"DOE_", "_out"},
}

// copyNodeAs adds a copy of variable id for the given role and returns the
// copy's id. An existing copy is reused. The copy records the variable it
// stands for in RelatedTo, following earlier copies back to the original.
func copyNodeAs(g *graph.Graph, id string, role graph.CopyRole) (string, error) {
	n, ok := g.Node(id)
	if !ok {
		return "", errs.Precondition("node %q is not present in the graph", id)
	}
	if !n.IsVariable() {
		return "", errs.Precondition("node %q is a %s, only variables can be copied", id, n.Category)
	}
	affix, ok := copyLabels[role]
	if !ok {
		return "", errs.New(errs.ErrCodeInvalidInput, "unknown copy role %q", role)
	}

	cid := copyID(id, role)
	if g.HasNode(cid) {
		return cid, nil
	}
	err := g.AddNode(graph.Node{
		ID:       cid,
		Label:    affix[0] + n.Label + affix[1],
		Category: graph.CategoryVariable,
		Variable: &graph.VariableAttrs{
			ArchitectureRole: role,
			RelatedTo:        n.SchemaNode(),
		},
		Meta: maps.Clone(n.Meta),
	})
	if err != nil {
		return "", errs.Wrap(errs.ErrCodeInternal, err, "copy %s as %s", id, role)
	}
	return cid, nil
}

// copyID derives the id of a copy. Path-style ids "/root/a/b" map to
// "/root/architectureNodes/<role>s/rootCopy/a/b"; other ids map to
// "/architectureNodes/<role>s/<id>". Consistency copies prefix the last
// segment with "gc_".
func copyID(id string, role graph.CopyRole) string {
	dir := "architectureNodes/" + camelCase(string(role)) + "s"
	seg := strings.Split(id, "/")
	if len(seg) >= 3 && seg[0] == "" {
		root := seg[1]
		rest := append([]string(nil), seg[2:]...)
		if role == graph.CopyConsistency {
			rest[len(rest)-1] = "gc_" + rest[len(rest)-1]
		}
		return "/" + root + "/" + dir + "/" + root + "Copy/" + strings.Join(rest, "/")
	}
	name := strings.TrimPrefix(id, "/")
	if role == graph.CopyConsistency {
		name = "gc_" + name
	}
	return "/" + dir + "/" + name
}

// camelCase turns "initial guess coupling variable" into
// "initialGuessCouplingVariable".
func camelCase(s string) string {
	var b strings.Builder
	for i, w := range strings.Fields(s) {
		r := []rune(w)
		if i == 0 {
			r[0] = unicode.ToLower(r[0])
		} else {
			r[0] = unicode.ToUpper(r[0])
		}
		b.WriteString(string(r))
	}
	return b.String()
}
