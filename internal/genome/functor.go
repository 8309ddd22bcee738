package genome

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"edna/internal/dice"
)

// Functor bundles the closures managing a field the bounds machinery cannot
// handle. Random, Mutate, Cross, Distance and Check are required; the rest
// default to sensible behaviors (Equal falls back to zero distance, JSON to
// encoding/json, Print to %v, Aggregate to a distinct-value summary).
type Functor[F any] struct {
	Random   func(d dice.Roller) F
	Mutate   func(v *F, d dice.Roller)
	Cross    func(lhs, rhs F, d dice.Roller) F
	Distance func(lhs, rhs F) float64
	Check    func(v *F) bool

	Equal     func(lhs, rhs F) bool
	Print     func(w io.Writer, v F)
	ToJSON    func(v F) (json.RawMessage, error)
	FromJSON  func(raw json.RawMessage, v *F) error
	Extract   func(v F, path string) (string, error)
	Aggregate func(w io.Writer, vs []F, verbosity int)
}

// FunctorField declares a field managed by user-provided closures.
func FunctorField[G, F any](b *Builder[G], name string, at func(*G) *F, fn Functor[F], opts ...FieldOption) {
	f := &functorField[G, F]{fieldMeta: b.meta(name, opts), at: at, fn: fn}
	if at == nil {
		b.errf("field %q: nil accessor", name)
	}
	required := []struct {
		closure string
		set     bool
	}{
		{"Random", fn.Random != nil},
		{"Mutate", fn.Mutate != nil},
		{"Cross", fn.Cross != nil},
		{"Distance", fn.Distance != nil},
		{"Check", fn.Check != nil},
	}
	for _, req := range required {
		if !req.set {
			b.errf("field %q: nil functor.%s", name, req.closure)
		}
	}
	b.add(f)
}

type functorField[G, F any] struct {
	fieldMeta
	at func(*G) *F
	fn Functor[F]
}

func (f *functorField[G, F]) Random(g *G, d dice.Roller) {
	*f.at(g) = f.fn.Random(d)
}

func (f *functorField[G, F]) Mutate(g *G, d dice.Roller) {
	f.fn.Mutate(f.at(g), d)
}

func (f *functorField[G, F]) Cross(child, lhs, rhs *G, d dice.Roller) {
	*f.at(child) = f.fn.Cross(*f.at(lhs), *f.at(rhs), d)
}

func (f *functorField[G, F]) Distance(lhs, rhs *G) float64 {
	return f.fn.Distance(*f.at(lhs), *f.at(rhs))
}

func (f *functorField[G, F]) Check(g *G, obs Observer) bool {
	v := f.at(g)
	before := f.renderValue(*v)
	if f.fn.Check(v) {
		return true
	}
	obs.FieldClamped(f.owner, f.name, before, f.renderValue(*v))
	return false
}

func (f *functorField[G, F]) Equal(lhs, rhs *G) bool {
	if f.fn.Equal != nil {
		return f.fn.Equal(*f.at(lhs), *f.at(rhs))
	}
	return f.fn.Distance(*f.at(lhs), *f.at(rhs)) == 0
}

func (f *functorField[G, F]) Print(w io.Writer, g *G) {
	f.printValue(w, *f.at(g))
}

func (f *functorField[G, F]) printValue(w io.Writer, v F) {
	if f.fn.Print != nil {
		f.fn.Print(w, v)
		return
	}
	fmt.Fprintf(w, "%v", v)
}

func (f *functorField[G, F]) renderValue(v F) string {
	var sb strings.Builder
	f.printValue(&sb, v)
	return sb.String()
}

func (f *functorField[G, F]) ToJSON(g *G) (json.RawMessage, error) {
	if f.fn.ToJSON != nil {
		return f.fn.ToJSON(*f.at(g))
	}
	return json.Marshal(*f.at(g))
}

func (f *functorField[G, F]) FromJSON(raw json.RawMessage, g *G) error {
	if f.fn.FromJSON != nil {
		return f.fn.FromJSON(raw, f.at(g))
	}
	return json.Unmarshal(raw, f.at(g))
}

func (f *functorField[G, F]) Extract(g *G, path string) (string, error) {
	if path == "" {
		return f.renderValue(*f.at(g)), nil
	}
	if f.fn.Extract != nil {
		return f.fn.Extract(*f.at(g), path)
	}
	return "", fmt.Errorf("field %s does not support path %q", f.name, path)
}

func (f *functorField[G, F]) Aggregate(w io.Writer, gs []G, verbosity int) {
	vs := make([]F, len(gs))
	for i := range gs {
		vs[i] = *f.at(&gs[i])
	}
	if f.fn.Aggregate != nil {
		f.fn.Aggregate(w, vs, verbosity)
		return
	}
	rendered := make([]string, len(vs))
	for i, v := range vs {
		rendered[i] = f.renderValue(v)
	}
	fmt.Fprintf(w, "%s: %v\n", f.Alias(), sampleSorted(rendered, verbosity))
}
