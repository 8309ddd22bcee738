package genome

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"edna/internal/dice"
	"edna/internal/indent"
)

// SubgenomeField declares a field that is itself a registered genome. Every
// operation forwards to the nested registry, which keeps its own mutation
// rates and observer.
func SubgenomeField[G, S any](b *Builder[G], name string, at func(*G) *S, sub *Registry[S], opts ...FieldOption) {
	f := &subgenomeField[G, S]{fieldMeta: b.meta(name, opts), at: at, sub: sub}
	f.fieldMeta.sub = true
	if at == nil {
		b.errf("field %q: nil accessor", name)
	}
	if sub == nil {
		b.errf("field %q: nil subgenome registry", name)
	}
	b.add(f)
}

type subgenomeField[G, S any] struct {
	fieldMeta
	at  func(*G) *S
	sub *Registry[S]
}

func (f *subgenomeField[G, S]) Random(g *G, d dice.Roller) {
	*f.at(g) = f.sub.Random(d)
}

func (f *subgenomeField[G, S]) Mutate(g *G, d dice.Roller) {
	f.sub.Mutate(f.at(g), d)
}

func (f *subgenomeField[G, S]) Cross(child, lhs, rhs *G, d dice.Roller) {
	*f.at(child) = f.sub.Cross(f.at(lhs), f.at(rhs), d)
}

func (f *subgenomeField[G, S]) Distance(lhs, rhs *G) float64 {
	return f.sub.Distance(f.at(lhs), f.at(rhs))
}

func (f *subgenomeField[G, S]) Check(g *G, _ Observer) bool {
	return f.sub.Check(f.at(g))
}

func (f *subgenomeField[G, S]) Equal(lhs, rhs *G) bool {
	return f.sub.Equal(f.at(lhs), f.at(rhs))
}

func (f *subgenomeField[G, S]) Print(w io.Writer, g *G) {
	f.sub.Fprint(w, f.at(g))
}

func (f *subgenomeField[G, S]) ToJSON(g *G) (json.RawMessage, error) {
	return f.sub.MarshalGenome(f.at(g))
}

func (f *subgenomeField[G, S]) FromJSON(raw json.RawMessage, g *G) error {
	return f.sub.UnmarshalGenome(raw, f.at(g))
}

func (f *subgenomeField[G, S]) Extract(g *G, path string) (string, error) {
	switch {
	case path == "":
		return strings.TrimPrefix(f.sub.Sdump(f.at(g)), "\n"), nil
	case strings.HasPrefix(path, "."):
		return f.sub.GetField(f.at(g), path[1:])
	default:
		return "", fmt.Errorf("field %s is a genome, cannot index %q", f.name, path)
	}
}

func (f *subgenomeField[G, S]) Aggregate(w io.Writer, gs []G, verbosity int) {
	subs := make([]S, len(gs))
	for i := range gs {
		subs[i] = *f.at(&gs[i])
	}
	fmt.Fprintf(w, "%s:\n", f.Alias())
	f.sub.aggregateFields(indent.NewWriter(w), subs, verbosity)
}
