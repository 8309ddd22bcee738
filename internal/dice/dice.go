// Package dice wraps a seedable random source behind the small capability
// surface the genome operations need: uniform draws, coin tosses, weighted
// picks and a truncated normal. Draws are generic over the numeric type so
// bounds arithmetic never converts through float64 for integers.
package dice

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"golang.org/x/exp/constraints"
)

// Roller is the minimal random source. Fast is the plain implementation,
// Atomic the mutex-guarded one for rollers shared across goroutines.
type Roller interface {
	Uint64() uint64
	Float64() float64
	NormFloat64() float64
	Seed() uint64
	Reset(seed uint64)
}

// Fast is a single-goroutine roller remembering its seed so runs can be
// replayed.
type Fast struct {
	seed uint64
	rng  *rand.Rand
}

// NewFast returns a roller seeded with the given value. Use TimeSeed for a
// throwaway seed.
func NewFast(seed uint64) *Fast {
	f := &Fast{}
	f.Reset(seed)
	return f
}

// TimeSeed returns a milli-time based seed.
func TimeSeed() uint64 {
	return uint64(time.Now().UnixMilli())
}

func (f *Fast) Uint64() uint64       { return f.rng.Uint64() }
func (f *Fast) Float64() float64     { return f.rng.Float64() }
func (f *Fast) NormFloat64() float64 { return f.rng.NormFloat64() }

func (f *Fast) Seed() uint64 {
	return f.seed
}

func (f *Fast) Reset(seed uint64) {
	f.seed = seed
	f.rng = rand.New(rand.NewSource(int64(seed)))
}

func (f *Fast) String() string {
	return fmt.Sprintf("D%d", f.seed)
}

// Atomic is a Roller safe for concurrent use.
type Atomic struct {
	mu sync.Mutex
	f  Fast
}

func NewAtomic(seed uint64) *Atomic {
	a := &Atomic{}
	a.f.Reset(seed)
	return a
}

func (a *Atomic) Uint64() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.f.Uint64()
}

func (a *Atomic) Float64() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.f.Float64()
}

func (a *Atomic) NormFloat64() float64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.f.NormFloat64()
}

func (a *Atomic) Seed() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.f.Seed()
}

func (a *Atomic) Reset(seed uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.f.Reset(seed)
}

func (a *Atomic) String() string {
	return fmt.Sprintf("D%d", a.Seed())
}

// uint64n returns an unbiased uniform value in [0, n).
func uint64n(r Roller, n uint64) uint64 {
	if n == 0 {
		panic("dice: draw from empty range")
	}
	if n&(n-1) == 0 {
		return r.Uint64() & (n - 1)
	}
	// Reject draws beyond the largest multiple of n.
	max := math.MaxUint64 - (math.MaxUint64%n+1)%n
	v := r.Uint64()
	for v > max {
		v = r.Uint64()
	}
	return v % n
}

// Between returns a uniform integer in [lo, hi], both ends included. It
// panics on an inverted interval, same contract as the stdlib rand helpers.
func Between[T constraints.Integer](r Roller, lo, hi T) T {
	if hi < lo {
		panic(fmt.Sprintf("dice: inverted interval [%v, %v]", lo, hi))
	}
	span := uint64(hi) - uint64(lo)
	if span == math.MaxUint64 {
		return T(r.Uint64())
	}
	return lo + T(uint64n(r, span+1))
}

// Index returns a uniform int in [0, n).
func Index(r Roller, n int) int {
	if n <= 0 {
		panic(fmt.Sprintf("dice: index draw from %d elements", n))
	}
	return int(uint64n(r, uint64(n)))
}

// FloatBetween returns a uniform value in [lo, hi). The interval must not be
// empty.
func FloatBetween[T constraints.Float](r Roller, lo, hi T) T {
	if hi <= lo {
		panic(fmt.Sprintf("dice: empty interval [%v, %v)", lo, hi))
	}
	return T(float64(lo) + r.Float64()*(float64(hi)-float64(lo)))
}

// Toss flips a coin with the given heads probability.
func Toss(r Roller, heads float64) bool {
	return r.Float64() < heads
}

// Pick returns one of the two values with equal probability.
func Pick[T any](r Roller, a, b T) T {
	if Toss(r, .5) {
		return a
	}
	return b
}

// PickOne draws a key with probability proportional to its weight. Keys are
// visited in sorted order so a fixed seed always yields the same sequence.
// Weights must be non-negative with a positive total; a zero weight means
// the key is never selected.
func PickOne(r Roller, weights map[string]float64) string {
	keys := make([]string, 0, len(weights))
	total := 0.0
	for key, weight := range weights {
		keys = append(keys, key)
		total += weight
	}
	if len(keys) == 0 || total <= 0 {
		panic("dice: pick from weightless map")
	}
	sort.Strings(keys)

	draw := r.Float64() * total
	last := keys[0]
	for _, key := range keys {
		weight := weights[key]
		if weight <= 0 {
			continue
		}
		last = key
		draw -= weight
		if draw < 0 {
			return key
		}
	}
	return last
}

// Shuffle permutes the slice in place.
func Shuffle[S ~[]E, E any](r Roller, s S) {
	for i := range s {
		j := Index(r, i+1)
		s[i], s[j] = s[j], s[i]
	}
}

// UnitVector returns a uniformly distributed point on the unit sphere.
func UnitVector(r Roller) [3]float64 {
	cosphi := FloatBetween(r, -1.0, 1.0)
	sinphi := math.Sqrt(1 - cosphi*cosphi)
	theta := FloatBetween(r, 0.0, 2*math.Pi)
	return [3]float64{
		sinphi * math.Cos(theta),
		sinphi * math.Sin(theta),
		cosphi,
	}
}

const truncNormalMaxTries = 1000

// TruncNormal draws from a normal distribution restricted to [lo, hi] by
// rejection. With nonZero set, exact zero draws are rejected too. The
// support must be non-empty and wide enough for sampling to terminate;
// callers validate their bounds beforehand.
func TruncNormal(r Roller, mean, stddev, lo, hi float64, nonZero bool) float64 {
	if !(lo < hi) {
		panic(fmt.Sprintf("dice: truncated normal over [%v, %v]", lo, hi))
	}
	for try := 0; try < truncNormalMaxTries; try++ {
		v := mean + stddev*r.NormFloat64()
		if v < lo || hi < v || (nonZero && v == 0) {
			continue
		}
		return v
	}
	panic(fmt.Sprintf("dice: truncated normal(%v, %v) kept missing [%v, %v]", mean, stddev, lo, hi))
}
