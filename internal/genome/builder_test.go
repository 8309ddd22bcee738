package genome

import (
	"strings"
	"testing"

	"edna/internal/bounds"
	"edna/internal/enum"
)

func TestBuilderAggregatesProblems(t *testing.T) {
	type broken struct {
		A int
		B int
	}
	good := bounds.Span(0, 1)
	bad := bounds.New(4, 0, 0, 1)

	_, err := New("Broken", func(b *Builder[broken]) {
		BoundedField(b, "a", func(v *broken) *int { return &v.A }, &good)
		BoundedField(b, "a", func(v *broken) *int { return &v.A }, &good)
		BoundedField(b, "b", func(v *broken) *int { return &v.B }, &bad)
		FunctorField(b, "c", func(v *broken) *int { return &v.A }, Functor[int]{})
		b.MutationRates(map[string]float64{"a": 1, "ghost": 1})
	})
	if err == nil {
		t.Fatal("broken declaration accepted")
	}
	for _, want := range []string{
		`duplicate field "a"`,
		"out of order",
		"nil functor.Random",
		"nil functor.Check",
		`unknown field "ghost"`,
		`no mutation rate defined for field "b"`,
	} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error misses %q:\n%v", want, err)
		}
	}
}

func TestMustPanicsOnError(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Must did not panic")
		}
	}()
	type empty struct{}
	Must(New("Empty", func(b *Builder[empty]) {}))
}

func TestRatesMustSumPositive(t *testing.T) {
	type one struct {
		A int
	}
	ab := bounds.Span(0, 1)
	_, err := New("AllZero", func(b *Builder[one]) {
		BoundedField(b, "a", func(v *one) *int { return &v.A }, &ab)
		b.MutationRates(map[string]float64{"a": 0})
	})
	if err == nil || !strings.Contains(err.Error(), "sum to zero") {
		t.Fatalf("zero-sum rates accepted: %v", err)
	}
}

func TestMissingRatesRejected(t *testing.T) {
	type one struct {
		A int
	}
	ab := bounds.Span(0, 1)
	_, err := New("NoRates", func(b *Builder[one]) {
		BoundedField(b, "a", func(v *one) *int { return &v.A }, &ab)
	})
	if err == nil || !strings.Contains(err.Error(), "mutation rates not defined") {
		t.Fatalf("missing rates accepted: %v", err)
	}
}

func TestAliasValidation(t *testing.T) {
	type two struct {
		A int
		B int
	}
	ab := bounds.Span(0, 1)

	_, err := New("SharedAlias", func(b *Builder[two]) {
		BoundedField(b, "a", func(v *two) *int { return &v.A }, &ab, Alias("x"))
		BoundedField(b, "b", func(v *two) *int { return &v.B }, &ab, Alias("x"))
		b.MutationRates(map[string]float64{"a": 1, "b": 1})
	})
	if err == nil || !strings.Contains(err.Error(), `share alias "x"`) {
		t.Fatalf("shared alias accepted: %v", err)
	}

	rec := &recordingObserver{}
	_, err = New("LongAlias", func(b *Builder[two]) {
		BoundedField(b, "a", func(v *two) *int { return &v.A }, &ab, Alias("averylongalias"))
		BoundedField(b, "b", func(v *two) *int { return &v.B }, &ab)
		b.MutationRates(map[string]float64{"a": 1, "b": 1})
		b.Observe(rec)
	})
	if err != nil {
		t.Fatalf("long alias rejected: %v", err)
	}
	if len(rec.notes) != 1 || !strings.Contains(rec.notes[0], "longer than the name") {
		t.Fatalf("diagnostics = %v, want a long-alias warning", rec.notes)
	}
}

func TestEnumMustBeContiguous(t *testing.T) {
	type gappy int
	info := enum.MustInfo("gappy", map[gappy]string{0: "A", 2: "C"})
	type holder struct {
		V gappy
	}
	_, err := New("Gappy", func(b *Builder[holder]) {
		EnumField(b, "v", func(h *holder) *gappy { return &h.V }, info)
		b.MutationRates(map[string]float64{"v": 1})
	})
	if err == nil || !strings.Contains(err.Error(), "non-contiguous") {
		t.Fatalf("gapped enum accepted: %v", err)
	}
}

func TestArrayBoundsArity(t *testing.T) {
	type holder struct {
		V [3]float64
	}
	_, err := New("ShortBounds", func(b *Builder[holder]) {
		BoundedArrayField(b, "v", func(h *holder) []float64 { return h.V[:] },
			bounds.Uniform(2, bounds.Span(0.0, 1.0)))
		b.MutationRates(map[string]float64{"v": 1})
	})
	if err == nil || !strings.Contains(err.Error(), "2 bounds for 3 elements") {
		t.Fatalf("arity mismatch accepted: %v", err)
	}
}

func TestNilAccessorRejected(t *testing.T) {
	type one struct {
		A int
	}
	ab := bounds.Span(0, 1)
	_, err := New("NilAccessor", func(b *Builder[one]) {
		BoundedField[one, int](b, "a", nil, &ab)
		b.MutationRates(map[string]float64{"a": 1})
	})
	if err == nil || !strings.Contains(err.Error(), "nil accessor") {
		t.Fatalf("nil accessor accepted: %v", err)
	}
}

func TestBuilderErrorsKeepRegistryUnusable(t *testing.T) {
	type one struct {
		A int
	}
	ab := bounds.Span(0, 1)
	reg, err := New("HalfBuilt", func(b *Builder[one]) {
		BoundedField(b, "a", func(v *one) *int { return &v.A }, &ab)
		b.MutationRates(map[string]float64{})
	})
	if err == nil {
		t.Fatal("empty rates accepted")
	}
	if reg != nil {
		t.Fatal("registry returned alongside an error")
	}
}
