package graph

import (
	"fmt"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	errs "github.com/matzehuels/mdaograph/pkg/errors"
)

func funcGraph(ids []string, edges [][2]string) *Graph {
	g := New("cycles")
	for _, id := range ids {
		_ = g.AddFunction(id, FunctionAttrs{})
	}
	for _, e := range edges {
		_ = g.AddEdge(e[0], e[1])
	}
	return g
}

func TestSimpleCycles(t *testing.T) {
	tests := []struct {
		name  string
		ids   []string
		edges [][2]string
		want  [][]string
	}{
		{
			name:  "acyclic",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}},
			want:  nil,
		},
		{
			name:  "self loop",
			ids:   []string{"a"},
			edges: [][2]string{{"a", "a"}},
			want:  [][]string{{"a"}},
		},
		{
			name:  "two loops sharing a node",
			ids:   []string{"c", "o", "v"},
			edges: [][2]string{{"c", "o"}, {"o", "c"}, {"o", "v"}, {"v", "o"}},
			want:  [][]string{{"c", "o"}, {"o", "v"}},
		},
		{
			name:  "triangle with chord",
			ids:   []string{"a", "b", "c"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"b", "a"}},
			want:  [][]string{{"a", "b", "c"}, {"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := funcGraph(tt.ids, tt.edges).SimpleCycles(0)
			if err != nil {
				t.Fatalf("SimpleCycles() error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("SimpleCycles() = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if !slices.Equal(got[i], tt.want[i]) {
					t.Errorf("cycle %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSimpleCyclesLimit(t *testing.T) {
	// Complete digraph on 5 nodes has far more than 3 elementary circuits.
	ids := []string{"a", "b", "c", "d", "e"}
	var edges [][2]string
	for _, u := range ids {
		for _, v := range ids {
			if u != v {
				edges = append(edges, [2]string{u, v})
			}
		}
	}
	g := funcGraph(ids, edges)

	_, err := g.SimpleCycles(3)
	if !errs.Is(err, errs.ErrCodeScaleLimit) {
		t.Fatalf("SimpleCycles(3) error = %v, want scale limit", err)
	}

	all, err := g.SimpleCycles(0)
	if err != nil {
		t.Fatalf("SimpleCycles(0) error: %v", err)
	}
	// 10 two-cycles + 20 three-cycles + 30 four-cycles + 24 five-cycles.
	if len(all) != 84 {
		t.Errorf("len(SimpleCycles(0)) = %d, want 84", len(all))
	}

	if _, err := g.SimpleCycles(84); err != nil {
		t.Errorf("SimpleCycles(84) error = %v, want nil", err)
	}
}

// Every reported cycle is a closed walk over existing edges without repeated
// nodes, and no cycle is reported twice.
func TestSimpleCyclesProperties(t *testing.T) {
	params := gopter.DefaultTestParameters()
	params.MinSuccessfulTests = 200
	properties := gopter.NewProperties(params)

	properties.Property("cycles are elementary and unique", prop.ForAll(
		func(pairs []int) bool {
			ids := []string{"n0", "n1", "n2", "n3", "n4", "n5"}
			var edges [][2]string
			for i := 0; i+1 < len(pairs); i += 2 {
				edges = append(edges, [2]string{ids[pairs[i]], ids[pairs[i+1]]})
			}
			g := funcGraph(ids, edges)
			cycles, err := g.SimpleCycles(0)
			if err != nil {
				return false
			}
			seen := map[string]bool{}
			for _, c := range cycles {
				key := fmt.Sprint(c)
				if seen[key] {
					return false
				}
				seen[key] = true
				members := map[string]bool{}
				for i, n := range c {
					if members[n] {
						return false
					}
					members[n] = true
					if !g.HasEdge(n, c[(i+1)%len(c)]) {
						return false
					}
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 5)),
	))

	properties.TestingRun(t)
}
