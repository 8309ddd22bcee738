// Package bounds implements the numeric range objects behind bounds-driven
// genome fields: a four-point legal/initial range plus a mutation step
// scale, with uniform draws, step mutation, span-normalized distance and
// clamping.
package bounds

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/exp/constraints"

	"edna/internal/dice"
)

// Numeric covers every scalar type a bounds-driven field can hold.
type Numeric interface {
	constraints.Integer | constraints.Float
}

// DefaultStddev is the implicit mutation scale when none is given.
const DefaultStddev = 1e-2

// B describes the range of one field: values live in [Min, Max], random
// initialization draws from [RndMin, RndMax], and float mutation steps are
// normal draws scaled by Stddev times the full span.
//
// Invariant: Min <= RndMin <= RndMax <= Max, Stddev > 0. Valid reports
// violations; the genome builder refuses fields whose bounds fail it.
type B[T Numeric] struct {
	Min    T
	RndMin T
	RndMax T
	Max    T
	Stddev float64
}

// New builds bounds from the four range points with the default stddev.
func New[T Numeric](min, rndMin, rndMax, max T) B[T] {
	return B[T]{Min: min, RndMin: rndMin, RndMax: rndMax, Max: max, Stddev: DefaultStddev}
}

// Span builds bounds whose initial range equals the legal range.
func Span[T Numeric](min, max T) B[T] {
	return New(min, min, max, max)
}

// WithStddev returns a copy with the given mutation scale.
func (b B[T]) WithStddev(stddev float64) B[T] {
	b.Stddev = stddev
	return b
}

func (b B[T]) Valid() error {
	if !(b.Min <= b.RndMin && b.RndMin <= b.RndMax && b.RndMax <= b.Max) {
		return fmt.Errorf("bounds %s out of order", b)
	}
	if b.Stddev <= 0 {
		return fmt.Errorf("bounds %s: stddev must be positive", b)
	}
	return nil
}

// isFloat reports whether T is a floating point kind.
func isFloat[T Numeric]() bool {
	return T(1)/T(2) != 0
}

// Rand draws uniformly from the initial range. A degenerate initial range
// yields its single point.
func (b B[T]) Rand(r dice.Roller) T {
	if b.RndMin == b.RndMax {
		return b.RndMin
	}
	if isFloat[T]() {
		return T(dice.FloatBetween(r, float64(b.RndMin), float64(b.RndMax)))
	}
	return T(dice.Between(r, int64(b.RndMin), int64(b.RndMax)))
}

// Mutate steps the value once. Integers move by one, turning inward when
// sitting on a bound. Floats add a truncated normal draw whose support keeps
// the result in [Min, Max]. Degenerate bounds are a no-op.
func (b B[T]) Mutate(v *T, r dice.Roller) {
	if b.Min == b.Max {
		return
	}
	if isFloat[T]() {
		span := float64(b.Max) - float64(b.Min)
		delta := dice.TruncNormal(r, 0, span*b.Stddev,
			float64(b.Min)-float64(*v), float64(b.Max)-float64(*v), true)
		*v += T(delta)
		// float32 rounding can step just past a bound
		if *v < b.Min {
			*v = b.Min
		}
		if *v > b.Max {
			*v = b.Max
		}
		return
	}
	switch {
	case *v == b.Min:
		*v = b.Min + 1
	case *v == b.Max:
		*v = b.Max - 1
	case dice.Toss(r, .5):
		*v -= 1
	default:
		*v += 1
	}
}

// Distance returns |a-c| normalized by the legal span. A degenerate span
// counts as zero distance.
func (b B[T]) Distance(a, c T) float64 {
	span := float64(b.Max) - float64(b.Min)
	if span == 0 {
		return 0
	}
	d := float64(a) - float64(c)
	if d < 0 {
		d = -d
	}
	return d / span
}

// Check clamps the value into [Min, Max] and reports whether it already was
// inside.
func (b B[T]) Check(v *T) bool {
	ok := true
	if *v < b.Min {
		*v = b.Min
		ok = false
	}
	if b.Max < *v {
		*v = b.Max
		ok = false
	}
	return ok
}

// String renders the compact form used by configuration files:
// "(min rndMin rndMax max stddev)".
func (b B[T]) String() string {
	return fmt.Sprintf("(%v %v %v %v %v)", b.Min, b.RndMin, b.RndMax, b.Max, b.Stddev)
}

// Parse reads the String form back.
func Parse[T Numeric](s string) (B[T], error) {
	var b B[T]
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "(") || !strings.HasSuffix(trimmed, ")") {
		return b, fmt.Errorf("malformed bounds %q", s)
	}
	fields := strings.Fields(trimmed[1 : len(trimmed)-1])
	if len(fields) != 5 {
		return b, fmt.Errorf("malformed bounds %q: want 5 values, got %d", s, len(fields))
	}
	for i, dst := range []any{&b.Min, &b.RndMin, &b.RndMax, &b.Max, &b.Stddev} {
		if _, err := fmt.Sscan(fields[i], dst); err != nil {
			return b, fmt.Errorf("malformed bounds %q: %v", s, err)
		}
	}
	return b, nil
}

// MarshalJSON stores bounds as the five-element array form.
func (b B[T]) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{b.Min, b.RndMin, b.RndMax, b.Max, b.Stddev})
}

func (b *B[T]) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 5 {
		return fmt.Errorf("bounds array has %d elements, want 5", len(raw))
	}
	for i, dst := range []any{&b.Min, &b.RndMin, &b.RndMax, &b.Max, &b.Stddev} {
		if err := json.Unmarshal(raw[i], dst); err != nil {
			return err
		}
	}
	return nil
}

// Uniform replicates one bounds object for every element of a fixed-size
// array field.
func Uniform[T Numeric](n int, b B[T]) []B[T] {
	out := make([]B[T], n)
	for i := range out {
		out[i] = b
	}
	return out
}
