package genome

import (
	"fmt"
	"io"
	"sort"

	"golang.org/x/exp/constraints"
)

// Aggregate prints a statistical summary of a population: per field, an
// evenly spread sample of the sorted distinct values. Larger verbosity
// widens the sample.
func (r *Registry[G]) Aggregate(w io.Writer, gs []G, verbosity int) error {
	if len(gs) < 2 {
		return fmt.Errorf("aggregating %s: need at least 2 genomes, got %d", r.name, len(gs))
	}
	r.aggregateFields(w, gs, verbosity)
	return nil
}

func (r *Registry[G]) aggregateFields(w io.Writer, gs []G, verbosity int) {
	for _, f := range r.fields {
		f.Aggregate(w, gs, verbosity)
	}
}

// sampleSorted returns at most verbosity+2 evenly spread values from the
// sorted distinct input.
func sampleSorted[T constraints.Ordered](vs []T, verbosity int) []T {
	sorted := append([]T(nil), vs...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	distinct := sorted[:0]
	for i, v := range sorted {
		if i == 0 || v != sorted[i-1] {
			distinct = append(distinct, v)
		}
	}

	if verbosity < 0 {
		verbosity = 0
	}
	k := verbosity + 2
	if k >= len(distinct) {
		return distinct
	}
	out := make([]T, k)
	for i := range out {
		out[i] = distinct[i*(len(distinct)-1)/(k-1)]
	}
	return out
}
