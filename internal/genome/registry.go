// Package genome implements self-describing evolvable genomes: a struct
// declares its fields once and gains random initialization, mutation,
// crossover, distance, bounds checking, JSON round-trips, pretty-printing
// and statistical aggregation, driven by per-field managers held in a
// per-type registry.
package genome

import (
	"encoding/json"
	"io"
	"sync"

	"edna/internal/dice"
)

// DefaultFileExtension is appended by ToFile when the target path has none.
const DefaultFileExtension = ".edna.json"

// Extensions are per-registry hooks covering manually managed fields. Each
// runs after the automated per-field pass of the matching operation, except
// FromJSON which runs first and must consume the keys it handles.
type Extensions[G any] struct {
	Random   func(g *G, d dice.Roller)
	Mutate   func(g *G, d dice.Roller)
	Cross    func(child, lhs, rhs *G, d dice.Roller)
	Distance func(lhs, rhs *G, total *float64)
	Check    func(g *G, ok *bool)
	Equal    func(lhs, rhs *G, eq *bool)
	ToJSON   func(obj map[string]json.RawMessage, g *G) error
	FromJSON func(obj map[string]json.RawMessage, g *G) error
	Print    func(w io.Writer, g *G)
}

// Registry holds the field managers of one genome type and implements every
// automated operation over it. Immutable after New apart from the observer,
// safe for concurrent use.
type Registry[G any] struct {
	name    string
	fields  []FieldManager[G]
	byName  map[string]int
	byAlias map[string]int
	rates   map[string]float64
	weights map[string]float64
	ext     Extensions[G]
	fileExt string

	mu  sync.RWMutex
	obs Observer
}

func (r *Registry[G]) Name() string {
	return r.name
}

// Fields returns the declared fields in declaration order.
func (r *Registry[G]) Fields() []Field {
	out := make([]Field, len(r.fields))
	for i, f := range r.fields {
		out[i] = Field{Name: f.Name(), Alias: f.Alias(), Subgenome: f.Subgenome()}
	}
	return out
}

// SetObserver swaps the observer at runtime. A nil observer restores the
// default one.
func (r *Registry[G]) SetObserver(o Observer) {
	if o == nil {
		o = Default()
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.obs = o
}

func (r *Registry[G]) observer() Observer {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.obs
}

// Random returns a genome with every managed field initialized from its
// bounds or functor.
func (r *Registry[G]) Random(d dice.Roller) G {
	var g G
	for _, f := range r.fields {
		f.Random(&g, d)
	}
	if r.ext.Random != nil {
		r.ext.Random(&g, d)
	}
	return g
}

// Mutate alters a single field, picked according to the mutation rates. The
// observer receives a trace unless the pick is a subgenome, whose own
// registry traces the leaf mutation.
func (r *Registry[G]) Mutate(g *G, d dice.Roller) {
	name := dice.PickOne(d, r.rates)
	f := r.fields[r.byName[name]]
	if f.Subgenome() {
		f.Mutate(g, d)
	} else {
		before := render(f, g)
		f.Mutate(g, d)
		r.observer().FieldMutated(r.name, name, before, render(f, g))
	}
	if r.ext.Mutate != nil {
		r.ext.Mutate(g, d)
	}
}

// Cross builds a child taking each field from one of the two parents.
func (r *Registry[G]) Cross(lhs, rhs *G, d dice.Roller) G {
	var child G
	for _, f := range r.fields {
		f.Cross(&child, lhs, rhs, d)
	}
	if r.ext.Cross != nil {
		r.ext.Cross(&child, lhs, rhs, d)
	}
	return child
}

// Distance sums the weighted per-field distances.
func (r *Registry[G]) Distance(lhs, rhs *G) float64 {
	total := 0.0
	for _, f := range r.fields {
		total += r.weights[f.Name()] * f.Distance(lhs, rhs)
	}
	if r.ext.Distance != nil {
		r.ext.Distance(lhs, rhs, &total)
	}
	return total
}

// Check clamps every field into its legal range and reports whether the
// genome was already valid. All fields are visited regardless of failures.
func (r *Registry[G]) Check(g *G) bool {
	obs := r.observer()
	ok := true
	for _, f := range r.fields {
		ok = f.Check(g, obs) && ok
	}
	if r.ext.Check != nil {
		r.ext.Check(g, &ok)
	}
	return ok
}

// Equal reports field-wise equality.
func (r *Registry[G]) Equal(lhs, rhs *G) bool {
	eq := true
	for _, f := range r.fields {
		eq = f.Equal(lhs, rhs) && eq
	}
	if r.ext.Equal != nil {
		r.ext.Equal(lhs, rhs, &eq)
	}
	return eq
}
