package bounds

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"edna/internal/dice"
)

func TestValidOrdersPoints(t *testing.T) {
	if err := New(-4, 0, 0, 4).Valid(); err != nil {
		t.Fatalf("valid bounds rejected: %v", err)
	}
	if err := New(0, -1, 0, 4).Valid(); err == nil {
		t.Fatal("out-of-order bounds accepted")
	}
	if err := Span(0, 1).WithStddev(0).Valid(); err == nil {
		t.Fatal("zero stddev accepted")
	}
}

func TestRandStaysInInitialRange(t *testing.T) {
	r := dice.NewFast(11)

	b := New(0, 2, 3, 10)
	seen := map[int]bool{}
	for i := 0; i < 200; i++ {
		v := b.Rand(r)
		if v < 2 || v > 3 {
			t.Fatalf("draw %d outside [2, 3]", v)
		}
		seen[v] = true
	}
	if !seen[2] || !seen[3] {
		t.Fatalf("inclusive draw missed an endpoint: %v", seen)
	}

	f := Span(0.0, 1.0)
	for i := 0; i < 200; i++ {
		if v := f.Rand(r); v < 0 || v >= 1 {
			t.Fatalf("draw %v outside [0, 1)", v)
		}
	}

	point := New(-4.0, 0, 0, 4)
	if v := point.Rand(r); v != 0 {
		t.Fatalf("degenerate initial range drew %v, want 0", v)
	}
}

func TestMutateIntSaturates(t *testing.T) {
	r := dice.NewFast(3)
	b := Span(0, 4)

	v := 0
	b.Mutate(&v, r)
	if v != 1 {
		t.Fatalf("mutate at min gave %d, want 1", v)
	}
	v = 4
	b.Mutate(&v, r)
	if v != 3 {
		t.Fatalf("mutate at max gave %d, want 3", v)
	}
	for i := 0; i < 50; i++ {
		v = 2
		b.Mutate(&v, r)
		if v != 1 && v != 3 {
			t.Fatalf("interior mutate gave %d, want 1 or 3", v)
		}
	}

	frozen := Span(7, 7)
	v = 7
	frozen.Mutate(&v, r)
	if v != 7 {
		t.Fatalf("degenerate bounds mutated value to %d", v)
	}
}

func TestMutateFloatStepsInBounds(t *testing.T) {
	r := dice.NewFast(5)
	b := Span(-1.0, 1.0).WithStddev(0.1)

	v := 0.0
	for i := 0; i < 500; i++ {
		before := v
		b.Mutate(&v, r)
		if v == before {
			t.Fatalf("float mutate left value unchanged at step %d", i)
		}
		if v < -1 || v > 1 {
			t.Fatalf("float mutate escaped bounds: %v", v)
		}
	}

	frozen := Span(0.5, 0.5)
	v = 0.5
	frozen.Mutate(&v, r)
	if v != 0.5 {
		t.Fatalf("degenerate bounds mutated value to %v", v)
	}
}

func TestDistanceNormalizes(t *testing.T) {
	b := Span(0.0, 10.0)
	if d := b.Distance(2, 7); math.Abs(d-.5) > 1e-12 {
		t.Fatalf("distance = %v, want 0.5", d)
	}
	if b.Distance(2, 7) != b.Distance(7, 2) {
		t.Fatal("distance is not symmetric")
	}
	if d := Span(3, 3).Distance(3, 3); d != 0 {
		t.Fatalf("degenerate span distance = %v, want 0", d)
	}
}

func TestCheckClamps(t *testing.T) {
	b := Span(0, 10)

	v := -3
	if b.Check(&v) || v != 0 {
		t.Fatalf("low value: ok with v = %d", v)
	}
	v = 42
	if b.Check(&v) || v != 10 {
		t.Fatalf("high value: ok with v = %d", v)
	}
	v = 5
	if !b.Check(&v) || v != 5 {
		t.Fatalf("inside value: not ok or changed, v = %d", v)
	}
}

func TestTextRoundTrip(t *testing.T) {
	b := New(-4.0, 0, 0, 4).WithStddev(.25)
	if got := b.String(); got != "(-4 0 0 4 0.25)" {
		t.Fatalf("String = %q", got)
	}

	back, err := Parse[float64](b.String())
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff(b, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	for _, bad := range []string{"", "1 2 3 4 5", "(1 2 3)", "(a b c d e)"} {
		if _, err := Parse[int](bad); err == nil {
			t.Fatalf("Parse(%q) accepted", bad)
		}
	}
}

func TestJSONRoundTrip(t *testing.T) {
	b := New(0, 1, 2, 3).WithStddev(.5)
	data, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != "[0,1,2,3,0.5]" {
		t.Fatalf("marshal = %s", data)
	}

	var back B[int]
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if diff := cmp.Diff(b, back); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}

	if err := json.Unmarshal([]byte("[1,2,3]"), &back); err == nil {
		t.Fatal("short array accepted")
	}
}

func TestUniformReplicates(t *testing.T) {
	b := Span(0.0, 1.0)
	got := Uniform(3, b)
	want := []B[float64]{b, b, b}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("mismatch (-want +got):\n%s", diff)
	}
}
