package mdao_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mdaograph/pkg/mdao"
	"github.com/matzehuels/mdaograph/pkg/mdao/mdaotest"
)

func TestDirectCouplings(t *testing.T) {
	g := mdaotest.ThreeCoupled(mdao.MDF, mdao.Jacobi).Repository(t)
	order := []string{"A", "B", "C"}

	tests := []struct {
		dir  mdao.Direction
		want []mdao.Coupling
	}{
		{mdao.Backward, []mdao.Coupling{{Producer: "C", Consumer: "A", Variable: "y_fb"}}},
		{mdao.Forward, []mdao.Coupling{
			{Producer: "A", Consumer: "B", Variable: "x"},
			{Producer: "B", Consumer: "C", Variable: "y"},
		}},
		{mdao.Both, []mdao.Coupling{
			{Producer: "A", Consumer: "B", Variable: "x"},
			{Producer: "B", Consumer: "C", Variable: "y"},
			{Producer: "C", Consumer: "A", Variable: "y_fb"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.dir.String(), func(t *testing.T) {
			got := mdao.DirectCouplings(g, order, tt.dir)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if !mdao.HasFeedback(g, order) {
		t.Error("HasFeedback = false for loop")
	}
	if mdao.HasFeedback(g, []string{"A", "B"}) {
		t.Error("HasFeedback = true for A, B")
	}
	if !mdao.HasCoupling(g, []string{"A", "B"}) {
		t.Error("HasCoupling = false for A, B")
	}
	if mdao.HasCoupling(g, []string{"A"}) {
		t.Error("HasCoupling = true for single function")
	}
}
