package synth

import (
	"testing"

	"github.com/matzehuels/mdaograph/pkg/graph"
)

func TestCopyID(t *testing.T) {
	tests := []struct {
		id   string
		role graph.CopyRole
		want string
	}{
		{"y_fb", graph.CopyInitialGuessCoupling, "/architectureNodes/initialGuessCouplingVariables/y_fb"},
		{"/x", graph.CopyFinalDesign, "/architectureNodes/finalDesignVariables/x"},
		{"/data/wing/span", graph.CopyFinalCoupling, "/data/architectureNodes/finalCouplingVariables/dataCopy/wing/span"},
		{"/data/wing/span", graph.CopyConsistency, "/data/architectureNodes/consistencyConstraintVariables/dataCopy/wing/gc_span"},
		{"y1", graph.CopyConsistency, "/architectureNodes/consistencyConstraintVariables/gc_y1"},
		{"f", graph.CopyDOEOutputSamples, "/architectureNodes/doeOutputSampleLists/f"},
	}
	for _, tt := range tests {
		if got := copyID(tt.id, tt.role); got != tt.want {
			t.Errorf("copyID(%q, %q) = %q, want %q", tt.id, tt.role, got, tt.want)
		}
	}
}

func TestCamelCase(t *testing.T) {
	tests := map[string]string{
		"initial guess coupling variable": "initialGuessCouplingVariable",
		"doe input sample list":           "doeInputSampleList",
		"single":                          "single",
		"":                                "",
	}
	for in, want := range tests {
		if got := camelCase(in); got != want {
			t.Errorf("camelCase(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCopyNodeAs(t *testing.T) {
	g := graph.New("test")
	if err := g.AddNode(graph.Node{
		ID:       "y",
		Label:    "y",
		Category: graph.CategoryVariable,
		Variable: &graph.VariableAttrs{},
		Meta:     graph.Metadata{"unit": "m"},
	}); err != nil {
		t.Fatal(err)
	}
	if err := g.AddFunction("F", graph.FunctionAttrs{}); err != nil {
		t.Fatal(err)
	}

	id, err := copyNodeAs(g, "y", graph.CopyDOEInputSamples)
	if err != nil {
		t.Fatalf("copyNodeAs: %v", err)
	}
	n, _ := g.Node(id)
	if n.Label != "DOE_y_inp" {
		t.Errorf("label = %q, want DOE_y_inp", n.Label)
	}
	if n.Meta["unit"] != "m" {
		t.Errorf("meta = %v, want unit copied", n.Meta)
	}

	// A copy of a copy still refers to the original variable.
	id2, err := copyNodeAs(g, id, graph.CopyFinalOutput)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := g.Variable(id2); v.RelatedTo != "y" {
		t.Errorf("RelatedTo = %q, want y", v.RelatedTo)
	}

	again, err := copyNodeAs(g, "y", graph.CopyDOEInputSamples)
	if err != nil || again != id {
		t.Errorf("second copy = %q, %v; want reuse of %q", again, err, id)
	}
	if _, err := copyNodeAs(g, "F", graph.CopyFinalOutput); err == nil {
		t.Error("copying a function succeeded")
	}
	if _, err := copyNodeAs(g, "missing", graph.CopyFinalOutput); err == nil {
		t.Error("copying a missing node succeeded")
	}
}
