package genome

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"edna/internal/bounds"
	"edna/internal/dice"
)

func TestAggregateNeedsTwoGenomes(t *testing.T) {
	var sb strings.Builder
	err := critterGenome.Aggregate(&sb, []critter{pathFixture()}, 0)
	if err == nil || !strings.Contains(err.Error(), "at least 2") {
		t.Fatalf("single genome accepted: %v", err)
	}
}

func TestSampleSortedSpreadsValues(t *testing.T) {
	vs := []int{9, 3, 0, 1, 2, 4, 5, 6, 7, 8, 3, 0}

	if diff := cmp.Diff([]int{0, 9}, sampleSorted(vs, 0)); diff != "" {
		t.Fatalf("verbosity 0 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 3, 6, 9}, sampleSorted(vs, 2)); diff != "" {
		t.Fatalf("verbosity 2 (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, sampleSorted(vs, 20)); diff != "" {
		t.Fatalf("high verbosity (-want +got):\n%s", diff)
	}
}

func TestSampleSortedCollapsesDuplicates(t *testing.T) {
	vs := []float64{1, 1, 1, 2}
	if diff := cmp.Diff([]float64{1, 2}, sampleSorted(vs, 5)); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestAggregateOutput(t *testing.T) {
	type pair struct {
		A int
		B [2]float64
	}
	ab := bounds.Span(0, 100)
	eb := bounds.Uniform(2, bounds.Span(0.0, 1.0))
	reg := Must(New("AggPair", func(b *Builder[pair]) {
		BoundedField(b, "a", func(p *pair) *int { return &p.A }, &ab)
		BoundedArrayField(b, "b", func(p *pair) []float64 { return p.B[:] }, eb)
		b.MutationRates(map[string]float64{"a": 1, "b": 1})
		b.Observe(Nop())
	}))

	pop := []pair{
		{A: 0, B: [2]float64{0.1, 0.9}},
		{A: 50, B: [2]float64{0.2, 0.8}},
		{A: 100, B: [2]float64{0.3, 0.7}},
	}
	var sb strings.Builder
	if err := reg.Aggregate(&sb, pop, 1); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	out := sb.String()
	for _, want := range []string{
		"a: [0 50 100]",
		"b[0]: [0.1 0.2 0.3]",
		"b[1]: [0.7 0.8 0.9]",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output misses %q:\n%s", want, out)
		}
	}
}

func TestAggregateEnumAndSubgenome(t *testing.T) {
	d := dice.NewFast(53)
	pop := make([]critter, 4)
	for i := range pop {
		pop[i] = critterGenome.Random(d)
		pop[i].Diet = diet(i % 2)
	}

	var sb strings.Builder
	if err := critterGenome.Aggregate(&sb, pop, 0); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	out := sb.String()

	if !strings.Contains(out, "diet: [Herbivore Carnivore]") {
		t.Fatalf("enum summary missing:\n%s", out)
	}
	if !strings.Contains(out, "eye:\n  focus:") {
		t.Fatalf("nested summary not indented:\n%s", out)
	}
}
