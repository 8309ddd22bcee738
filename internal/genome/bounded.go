package genome

import (
	"encoding/json"
	"fmt"
	"io"

	"golang.org/x/exp/constraints"

	"edna/internal/bounds"
	"edna/internal/dice"
	"edna/internal/enum"
)

// BoundedField declares a scalar numeric field whose values are produced and
// constrained by an externally owned bounds object, typically a settings
// parameter.
func BoundedField[G any, T bounds.Numeric](b *Builder[G], name string, at func(*G) *T, bnd *bounds.B[T], opts ...FieldOption) {
	f := &boundedField[G, T]{fieldMeta: b.meta(name, opts), at: at, bnd: bnd}
	switch {
	case at == nil:
		b.errf("field %q: nil accessor", name)
	case bnd == nil:
		b.errf("field %q: nil bounds", name)
	default:
		if err := bnd.Valid(); err != nil {
			b.errf("field %q: %v", name, err)
		}
	}
	b.add(f)
}

// BoundedArrayField declares a fixed-size numeric array field with one bounds
// object per element. The accessor returns a slice backed by the array; its
// length fixes the element count.
func BoundedArrayField[G any, T bounds.Numeric](b *Builder[G], name string, at func(*G) []T, elems []bounds.B[T], opts ...FieldOption) {
	f := &boundedArrayField[G, T]{fieldMeta: b.meta(name, opts), at: at, elems: elems}
	if at == nil {
		b.errf("field %q: nil accessor", name)
		b.add(f)
		return
	}
	var probe G
	if n := len(at(&probe)); n != len(elems) {
		b.errf("field %q: %d bounds for %d elements", name, len(elems), n)
	} else if n == 0 {
		b.errf("field %q: empty array", name)
	}
	for i := range elems {
		if err := elems[i].Valid(); err != nil {
			b.errf("field %q element %d: %v", name, i, err)
		}
	}
	b.add(f)
}

// EnumField declares an enumerated field. Values are drawn, stepped and
// clamped over the contiguous span of the enum and render by name.
func EnumField[G any, E constraints.Integer](b *Builder[G], name string, at func(*G) *E, info *enum.Info[E], opts ...FieldOption) {
	f := &enumField[G, E]{fieldMeta: b.meta(name, opts), at: at, info: info}
	switch {
	case at == nil:
		b.errf("field %q: nil accessor", name)
	case info == nil:
		b.errf("field %q: nil enum info", name)
	default:
		if info.Len() != int(info.Hi()-info.Lo())+1 {
			b.errf("field %q: enum %s has non-contiguous values", name, info.TypeName())
		}
		f.bnd = bounds.Span(info.Lo(), info.Hi())
	}
	b.add(f)
}

type boundedField[G any, T bounds.Numeric] struct {
	fieldMeta
	at  func(*G) *T
	bnd *bounds.B[T]
}

func (f *boundedField[G, T]) Random(g *G, d dice.Roller) {
	*f.at(g) = f.bnd.Rand(d)
}

func (f *boundedField[G, T]) Mutate(g *G, d dice.Roller) {
	f.bnd.Mutate(f.at(g), d)
}

func (f *boundedField[G, T]) Cross(child, lhs, rhs *G, d dice.Roller) {
	*f.at(child) = dice.Pick(d, *f.at(lhs), *f.at(rhs))
}

func (f *boundedField[G, T]) Distance(lhs, rhs *G) float64 {
	return f.bnd.Distance(*f.at(lhs), *f.at(rhs))
}

func (f *boundedField[G, T]) Check(g *G, obs Observer) bool {
	v := f.at(g)
	before := *v
	if f.bnd.Check(v) {
		return true
	}
	obs.FieldClamped(f.owner, f.name, fmt.Sprint(before), fmt.Sprint(*v))
	return false
}

func (f *boundedField[G, T]) Equal(lhs, rhs *G) bool {
	return *f.at(lhs) == *f.at(rhs)
}

func (f *boundedField[G, T]) Print(w io.Writer, g *G) {
	fmt.Fprintf(w, "%v", *f.at(g))
}

func (f *boundedField[G, T]) ToJSON(g *G) (json.RawMessage, error) {
	return json.Marshal(*f.at(g))
}

func (f *boundedField[G, T]) FromJSON(raw json.RawMessage, g *G) error {
	return json.Unmarshal(raw, f.at(g))
}

func (f *boundedField[G, T]) Extract(g *G, path string) (string, error) {
	if path != "" {
		return "", fmt.Errorf("field %s is a scalar, cannot descend into %q", f.name, path)
	}
	return fmt.Sprint(*f.at(g)), nil
}

func (f *boundedField[G, T]) Aggregate(w io.Writer, gs []G, verbosity int) {
	vs := make([]T, len(gs))
	for i := range gs {
		vs[i] = *f.at(&gs[i])
	}
	fmt.Fprintf(w, "%s: %v\n", f.Alias(), sampleSorted(vs, verbosity))
}

type boundedArrayField[G any, T bounds.Numeric] struct {
	fieldMeta
	at    func(*G) []T
	elems []bounds.B[T]
}

func (f *boundedArrayField[G, T]) Random(g *G, d dice.Roller) {
	s := f.at(g)
	for i := range s {
		s[i] = f.elems[i].Rand(d)
	}
}

// Mutate steps a single uniformly picked element.
func (f *boundedArrayField[G, T]) Mutate(g *G, d dice.Roller) {
	s := f.at(g)
	i := dice.Index(d, len(s))
	f.elems[i].Mutate(&s[i], d)
}

// Cross copies the whole array from one of the two parents.
func (f *boundedArrayField[G, T]) Cross(child, lhs, rhs *G, d dice.Roller) {
	copy(f.at(child), f.at(dice.Pick(d, lhs, rhs)))
}

func (f *boundedArrayField[G, T]) Distance(lhs, rhs *G) float64 {
	ls, rs := f.at(lhs), f.at(rhs)
	total := 0.0
	for i := range ls {
		total += f.elems[i].Distance(ls[i], rs[i])
	}
	return total
}

func (f *boundedArrayField[G, T]) Check(g *G, obs Observer) bool {
	s := f.at(g)
	before := append([]T(nil), s...)
	ok := true
	for i := range s {
		ok = f.elems[i].Check(&s[i]) && ok
	}
	if !ok {
		obs.FieldClamped(f.owner, f.name, fmt.Sprint(before), fmt.Sprint(s))
	}
	return ok
}

func (f *boundedArrayField[G, T]) Equal(lhs, rhs *G) bool {
	ls, rs := f.at(lhs), f.at(rhs)
	for i := range ls {
		if ls[i] != rs[i] {
			return false
		}
	}
	return true
}

func (f *boundedArrayField[G, T]) Print(w io.Writer, g *G) {
	fmt.Fprintf(w, "%v", f.at(g))
}

func (f *boundedArrayField[G, T]) ToJSON(g *G) (json.RawMessage, error) {
	return json.Marshal(f.at(g))
}

func (f *boundedArrayField[G, T]) FromJSON(raw json.RawMessage, g *G) error {
	var tmp []T
	if err := json.Unmarshal(raw, &tmp); err != nil {
		return err
	}
	s := f.at(g)
	if len(tmp) != len(s) {
		return fmt.Errorf("got %d elements, want %d", len(tmp), len(s))
	}
	copy(s, tmp)
	return nil
}

func (f *boundedArrayField[G, T]) Extract(g *G, path string) (string, error) {
	s := f.at(g)
	if path == "" {
		return fmt.Sprint(s), nil
	}
	i, rest, err := parseIndex(path)
	if err != nil {
		return "", fmt.Errorf("field %s: %w", f.name, err)
	}
	if i < 0 || i >= len(s) {
		return "", fmt.Errorf("index %d out of range for field %s (len %d)", i, f.name, len(s))
	}
	if rest != "" {
		return "", fmt.Errorf("field %s[%d] is a scalar, cannot descend into %q", f.name, i, rest)
	}
	return fmt.Sprint(s[i]), nil
}

func (f *boundedArrayField[G, T]) Aggregate(w io.Writer, gs []G, verbosity int) {
	for i := range f.elems {
		vs := make([]T, len(gs))
		for j := range gs {
			vs[j] = f.at(&gs[j])[i]
		}
		fmt.Fprintf(w, "%s[%d]: %v\n", f.Alias(), i, sampleSorted(vs, verbosity))
	}
}

type enumField[G any, E constraints.Integer] struct {
	fieldMeta
	at   func(*G) *E
	info *enum.Info[E]
	bnd  bounds.B[E]
}

func (f *enumField[G, E]) Random(g *G, d dice.Roller) {
	*f.at(g) = f.bnd.Rand(d)
}

func (f *enumField[G, E]) Mutate(g *G, d dice.Roller) {
	f.bnd.Mutate(f.at(g), d)
}

func (f *enumField[G, E]) Cross(child, lhs, rhs *G, d dice.Roller) {
	*f.at(child) = dice.Pick(d, *f.at(lhs), *f.at(rhs))
}

func (f *enumField[G, E]) Distance(lhs, rhs *G) float64 {
	return f.bnd.Distance(*f.at(lhs), *f.at(rhs))
}

func (f *enumField[G, E]) Check(g *G, obs Observer) bool {
	v := f.at(g)
	before := *v
	if f.bnd.Check(v) {
		return true
	}
	obs.FieldClamped(f.owner, f.name, f.info.Name(before), f.info.Name(*v))
	return false
}

func (f *enumField[G, E]) Equal(lhs, rhs *G) bool {
	return *f.at(lhs) == *f.at(rhs)
}

func (f *enumField[G, E]) Print(w io.Writer, g *G) {
	io.WriteString(w, f.info.Name(*f.at(g)))
}

func (f *enumField[G, E]) ToJSON(g *G) (json.RawMessage, error) {
	return json.Marshal(f.info.Name(*f.at(g)))
}

func (f *enumField[G, E]) FromJSON(raw json.RawMessage, g *G) error {
	var name string
	if err := json.Unmarshal(raw, &name); err == nil {
		v, err := f.info.Parse(name)
		if err != nil {
			return err
		}
		*f.at(g) = v
		return nil
	}
	var n int64
	if err := json.Unmarshal(raw, &n); err != nil {
		return fmt.Errorf("%s value must be a name or a number", f.info.TypeName())
	}
	v := E(n)
	if !f.info.Valid(v) {
		return fmt.Errorf("invalid %s value %d", f.info.TypeName(), n)
	}
	*f.at(g) = v
	return nil
}

func (f *enumField[G, E]) Extract(g *G, path string) (string, error) {
	if path != "" {
		return "", fmt.Errorf("field %s is a scalar, cannot descend into %q", f.name, path)
	}
	return f.info.Name(*f.at(g)), nil
}

// Aggregate lists the distinct values present in the population, by name.
func (f *enumField[G, E]) Aggregate(w io.Writer, gs []G, verbosity int) {
	seen := make(map[E]bool, f.info.Len())
	for i := range gs {
		seen[*f.at(&gs[i])] = true
	}
	names := make([]string, 0, len(seen))
	for _, v := range f.info.Values() {
		if seen[v] {
			names = append(names, f.info.Name(v))
		}
	}
	fmt.Fprintf(w, "%s: %v\n", f.Alias(), names)
}
