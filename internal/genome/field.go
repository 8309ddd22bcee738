package genome

import (
	"encoding/json"
	"io"
	"strings"

	"edna/internal/dice"
)

// FieldManager drives every automated operation for a single declared field
// of G. Instances come from the declaration helpers (BoundedField, EnumField,
// FunctorField, SubgenomeField, ...) and are immutable once the registry is
// built.
type FieldManager[G any] interface {
	Name() string
	Alias() string
	Subgenome() bool

	Random(g *G, d dice.Roller)
	Mutate(g *G, d dice.Roller)
	Cross(child, lhs, rhs *G, d dice.Roller)
	Distance(lhs, rhs *G) float64
	Check(g *G, obs Observer) bool
	Equal(lhs, rhs *G) bool

	Print(w io.Writer, g *G)
	ToJSON(g *G) (json.RawMessage, error)
	FromJSON(raw json.RawMessage, g *G) error
	Extract(g *G, path string) (string, error)
	Aggregate(w io.Writer, gs []G, verbosity int)
}

// Field describes one registered field.
type Field struct {
	Name      string
	Alias     string
	Subgenome bool
}

// FieldOption adjusts a field declaration.
type FieldOption func(*fieldMeta)

// Alias sets the serialization alias of a field. Fields without one
// serialize under their name.
func Alias(alias string) FieldOption {
	return func(m *fieldMeta) { m.alias = alias }
}

type fieldMeta struct {
	name  string
	alias string
	owner string
	sub   bool
}

func (m *fieldMeta) Name() string { return m.name }

func (m *fieldMeta) Alias() string {
	if m.alias == "" {
		return m.name
	}
	return m.alias
}

func (m *fieldMeta) Subgenome() bool { return m.sub }

// render captures a field's printed form, for traces and clamp reports.
func render[G any](f FieldManager[G], g *G) string {
	var sb strings.Builder
	f.Print(&sb, g)
	return sb.String()
}
