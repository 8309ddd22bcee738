// Package sample declares the demonstration genome types shipped with the
// CLI: a Critter genome with a nested Vision genome, together covering every
// field kind the registry supports.
package sample

import (
	"errors"
	"math"

	"edna/internal/bounds"
	"edna/internal/dice"
	"edna/internal/enum"
	"edna/internal/genome"
	"edna/internal/settings"
)

// Diet is the feeding strategy of a Critter.
type Diet int

const (
	Herbivore Diet = iota
	Omnivore
	Carnivore
)

var dietInfo = enum.MustInfo("Diet", map[Diet]string{
	Herbivore: "Herbivore",
	Omnivore:  "Omnivore",
	Carnivore: "Carnivore",
})

// Vision is the nested genome managed as a single Critter field.
type Vision struct {
	Acuity float64
	Range  float64
}

// Critter is the demonstration genome.
type Critter struct {
	Weight float64
	Legs   int
	Diet   Diet
	Span   [2]float32
	Tag    string
	Vision Vision
}

// Register loads the demo configuration and publishes the Vision and Critter
// types in the genome catalog. An empty path keeps the declared defaults,
// "auto" reads the default configuration path. Calling it again is harmless:
// already registered types stay as they are, but the configuration is
// re-read, which updates the bounds shared with the live registries.
func Register(path string, v settings.Verbosity) error {
	if _, err := critterConfig.Setup(path, v); err != nil {
		return err
	}
	vision, err := newVisionRegistry()
	if err != nil {
		return err
	}
	critter, err := newCritterRegistry(vision)
	if err != nil {
		return err
	}
	if err := genome.Register(vision); err != nil && !errors.Is(err, genome.ErrTypeExists) {
		return err
	}
	if err := genome.Register(critter); err != nil && !errors.Is(err, genome.ErrTypeExists) {
		return err
	}
	return nil
}

func newVisionRegistry() (*genome.Registry[Vision], error) {
	return genome.New("Vision", func(b *genome.Builder[Vision]) {
		genome.BoundedField(b, "acuity", func(v *Vision) *float64 { return &v.Acuity }, acuityBounds.Ptr())
		genome.BoundedField(b, "range", func(v *Vision) *float64 { return &v.Range }, rangeBounds.Ptr())
		b.MutationRates(visionRates.Get())
	})
}

func newCritterRegistry(vision *genome.Registry[Vision]) (*genome.Registry[Critter], error) {
	return genome.New("Critter", func(b *genome.Builder[Critter]) {
		genome.BoundedField(b, "weight", func(c *Critter) *float64 { return &c.Weight }, weightBounds.Ptr())
		genome.BoundedField(b, "legs", func(c *Critter) *int { return &c.Legs }, legsBounds.Ptr())
		genome.EnumField(b, "diet", func(c *Critter) *Diet { return &c.Diet }, dietInfo)
		genome.BoundedArrayField(b, "span", func(c *Critter) []float32 { return c.Span[:] }, []bounds.B[float32]{
			bounds.Span[float32](-10, 0),
			bounds.Span[float32](0, 10),
		})
		genome.FunctorField(b, "tag", func(c *Critter) *string { return &c.Tag }, tagFunctor())
		genome.SubgenomeField(b, "vision", func(c *Critter) *Vision { return &c.Vision }, vision)
		b.MutationRates(critterRates.Get())
	})
}

const tagLo, tagHi = 'a', 'z'

// tagFunctor manages the free-form tag. Random starts empty, Mutate appends
// one random letter, Cross splices the parents at a random cut, Distance is
// the length difference or the sum of span-normalized letter offsets, and
// Check forces the string down to lowercase letters.
func tagFunctor() genome.Functor[string] {
	return genome.Functor[string]{
		Random: func(dice.Roller) string {
			return ""
		},
		Mutate: func(v *string, d dice.Roller) {
			*v += string(dice.Between(d, tagLo, tagHi))
		},
		Cross: func(lhs, rhs string, d dice.Roller) string {
			i := dice.Between(d, 0, min(len(lhs), len(rhs)))
			return lhs[:i] + rhs[i:]
		},
		Distance: func(lhs, rhs string) float64 {
			if len(lhs) != len(rhs) {
				return math.Abs(float64(len(lhs) - len(rhs)))
			}
			const span = float64(tagHi - tagLo)
			total := 0.0
			for i := 0; i < len(lhs); i++ {
				total += math.Abs(float64(lhs[i])-float64(rhs[i])) / span
			}
			return total
		},
		Check: func(v *string) bool {
			out := []byte(*v)
			ok := true
			for i, c := range out {
				switch {
				case 'a' <= c && c <= 'z':
				case 'A' <= c && c <= 'Z':
					out[i] = c - 'A' + 'a'
					ok = false
				default:
					out[i] = 'a'
					ok = false
				}
			}
			*v = string(out)
			return ok
		},
	}
}
