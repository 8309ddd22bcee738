package genome

import (
	"errors"
	"fmt"
	"sort"
)

// Builder collects the field declarations of one genome type. Obtain one
// through New; the declaration helpers append to it.
type Builder[G any] struct {
	name     string
	fields   []FieldManager[G]
	byName   map[string]int
	rates    map[string]float64
	ratesSet bool
	weights  map[string]float64
	ext      Extensions[G]
	obs      Observer
	fileExt  string
	probs    []error
	notes    []string
}

// New runs the declaration function and builds the registry for G. Every
// declaration problem is collected and aggregated into the returned error.
func New[G any](name string, declare func(*Builder[G])) (*Registry[G], error) {
	b := &Builder[G]{
		name:    name,
		byName:  make(map[string]int),
		fileExt: DefaultFileExtension,
	}
	if name == "" {
		b.errf("genome type needs a name")
	}
	if declare == nil {
		b.errf("nil declaration function")
	} else {
		declare(b)
	}
	return b.finish()
}

// Must panics on registration errors. Intended for package-level registry
// variables, where a bad declaration should fail before main runs.
func Must[G any](r *Registry[G], err error) *Registry[G] {
	if err != nil {
		panic(err)
	}
	return r
}

// MutationRates sets the per-field weights used to pick the single field
// altered by Mutate. Every declared field must have a rate.
func (b *Builder[G]) MutationRates(rates map[string]float64) {
	b.rates = rates
	b.ratesSet = true
}

// DistanceWeights scales per-field contributions to Distance. Fields without
// an entry weigh 1.
func (b *Builder[G]) DistanceWeights(weights map[string]float64) {
	b.weights = weights
}

// Extend installs the extension hooks covering manually managed fields.
func (b *Builder[G]) Extend(ext Extensions[G]) {
	b.ext = ext
}

// Observe sets the initial observer. Default() applies otherwise.
func (b *Builder[G]) Observe(o Observer) {
	b.obs = o
}

// FileExtension overrides the extension ToFile appends to bare paths.
func (b *Builder[G]) FileExtension(ext string) {
	b.fileExt = ext
}

func (b *Builder[G]) errf(format string, args ...any) {
	b.probs = append(b.probs, fmt.Errorf(format, args...))
}

func (b *Builder[G]) meta(name string, opts []FieldOption) fieldMeta {
	m := fieldMeta{name: name, owner: b.name}
	for _, o := range opts {
		o(&m)
	}
	return m
}

func (b *Builder[G]) add(f FieldManager[G]) {
	name := f.Name()
	if name == "" {
		b.errf("field with empty name")
		return
	}
	if _, dup := b.byName[name]; dup {
		b.errf("duplicate field %q", name)
		return
	}
	b.byName[name] = len(b.fields)
	b.fields = append(b.fields, f)
	if alias := f.Alias(); len(alias) > len(name) {
		b.notes = append(b.notes, fmt.Sprintf("alias %q for field %q is longer than the name", alias, name))
	}
}

func (b *Builder[G]) finish() (*Registry[G], error) {
	if len(b.fields) == 0 {
		b.errf("genome %q declares no fields", b.name)
	}

	byAlias := make(map[string]int, len(b.fields))
	for i, f := range b.fields {
		if j, dup := byAlias[f.Alias()]; dup {
			b.errf("fields %q and %q share alias %q", b.fields[j].Name(), f.Name(), f.Alias())
			continue
		}
		byAlias[f.Alias()] = i
	}

	b.checkRates()
	weights := b.checkWeights()

	if len(b.probs) > 0 {
		return nil, fmt.Errorf("building genome %q: %w", b.name, errors.Join(b.probs...))
	}

	obs := b.obs
	if obs == nil {
		obs = Default()
	}
	for _, note := range b.notes {
		obs.BuildDiagnostic(b.name, note)
	}

	return &Registry[G]{
		name:    b.name,
		fields:  b.fields,
		byName:  b.byName,
		byAlias: byAlias,
		rates:   copyRates(b.rates),
		weights: weights,
		ext:     b.ext,
		fileExt: b.fileExt,
		obs:     obs,
	}, nil
}

func (b *Builder[G]) checkRates() {
	if !b.ratesSet {
		b.errf("mutation rates not defined")
		return
	}
	bad := false
	total := 0.0
	for _, name := range sortedKeys(b.rates) {
		rate := b.rates[name]
		if _, known := b.byName[name]; !known {
			b.errf("mutation rates: unknown field %q", name)
			bad = true
			continue
		}
		if rate < 0 {
			b.errf("mutation rate for field %q is negative", name)
			bad = true
			continue
		}
		total += rate
	}
	for _, f := range b.fields {
		if _, ok := b.rates[f.Name()]; !ok {
			b.errf("no mutation rate defined for field %q", f.Name())
			bad = true
		}
	}
	if !bad && total <= 0 {
		b.errf("mutation rates sum to zero")
	}
}

func (b *Builder[G]) checkWeights() map[string]float64 {
	out := make(map[string]float64, len(b.fields))
	for name := range b.byName {
		out[name] = 1
	}
	for _, name := range sortedKeys(b.weights) {
		w := b.weights[name]
		if _, known := b.byName[name]; !known {
			b.errf("distance weights: unknown field %q", name)
			continue
		}
		if w < 0 {
			b.errf("distance weight for field %q is negative", name)
			continue
		}
		out[name] = w
	}
	return out
}

func copyRates(rates map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(rates))
	for name, rate := range rates {
		out[name] = rate
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
