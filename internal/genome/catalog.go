package genome

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"edna/internal/dice"
)

var (
	ErrTypeExists   = errors.New("genome type already registered")
	ErrTypeNotFound = errors.New("genome type not found")
)

// Ops is the type-erased view of a registry, for name-driven callers such
// as the CLI and the facade. Payloads are the alias-keyed JSON documents
// produced by MarshalGenome.
type Ops struct {
	Name   string
	Fields []Field

	Random     func(d dice.Roller) (json.RawMessage, error)
	Mutate     func(payload json.RawMessage, d dice.Roller) (json.RawMessage, error)
	Cross      func(lhs, rhs json.RawMessage, d dice.Roller) (json.RawMessage, error)
	Distance   func(lhs, rhs json.RawMessage) (float64, error)
	Check      func(payload json.RawMessage) (json.RawMessage, bool, error)
	Equal      func(lhs, rhs json.RawMessage) (bool, error)
	Show       func(w io.Writer, payload json.RawMessage) error
	FieldValue func(payload json.RawMessage, path string) (string, error)
	Aggregate  func(w io.Writer, payloads []json.RawMessage, verbosity int) error

	SetObserver func(o Observer)
}

var catalog = struct {
	mu sync.RWMutex
	m  map[string]*Ops
}{
	m: make(map[string]*Ops),
}

// Register publishes a registry in the process-wide catalog under its type
// name.
func Register[G any](r *Registry[G]) error {
	if r == nil {
		return errors.New("nil registry")
	}
	ops := erase(r)

	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	if _, exists := catalog.m[ops.Name]; exists {
		return fmt.Errorf("%w: %s", ErrTypeExists, ops.Name)
	}
	catalog.m[ops.Name] = ops
	return nil
}

// MustRegister panics on registration errors, for package-level init.
func MustRegister[G any](r *Registry[G]) {
	if err := Register(r); err != nil {
		panic(err)
	}
}

// LookupType returns the erased operations of a registered genome type.
func LookupType(name string) (*Ops, error) {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	ops, ok := catalog.m[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotFound, name)
	}
	return ops, nil
}

// ListTypes returns the registered genome type names, sorted.
func ListTypes() []string {
	catalog.mu.RLock()
	defer catalog.mu.RUnlock()

	names := make([]string, 0, len(catalog.m))
	for name := range catalog.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func resetCatalogForTests() {
	catalog.mu.Lock()
	defer catalog.mu.Unlock()

	catalog.m = make(map[string]*Ops)
}

func erase[G any](r *Registry[G]) *Ops {
	decode := func(payload json.RawMessage, check bool) (*G, error) {
		var g G
		if err := r.unmarshal(payload, &g, check); err != nil {
			return nil, err
		}
		return &g, nil
	}
	return &Ops{
		Name:   r.name,
		Fields: r.Fields(),
		Random: func(d dice.Roller) (json.RawMessage, error) {
			g := r.Random(d)
			return r.MarshalGenome(&g)
		},
		Mutate: func(payload json.RawMessage, d dice.Roller) (json.RawMessage, error) {
			g, err := decode(payload, true)
			if err != nil {
				return nil, err
			}
			r.Mutate(g, d)
			return r.MarshalGenome(g)
		},
		Cross: func(lhs, rhs json.RawMessage, d dice.Roller) (json.RawMessage, error) {
			lg, err := decode(lhs, true)
			if err != nil {
				return nil, err
			}
			rg, err := decode(rhs, true)
			if err != nil {
				return nil, err
			}
			child := r.Cross(lg, rg, d)
			return r.MarshalGenome(&child)
		},
		Distance: func(lhs, rhs json.RawMessage) (float64, error) {
			lg, err := decode(lhs, true)
			if err != nil {
				return 0, err
			}
			rg, err := decode(rhs, true)
			if err != nil {
				return 0, err
			}
			return r.Distance(lg, rg), nil
		},
		// Check decodes without the implicit clamp so the verdict reflects
		// the payload as given.
		Check: func(payload json.RawMessage) (json.RawMessage, bool, error) {
			g, err := decode(payload, false)
			if err != nil {
				return nil, false, err
			}
			ok := r.Check(g)
			out, err := r.MarshalGenome(g)
			return out, ok, err
		},
		Equal: func(lhs, rhs json.RawMessage) (bool, error) {
			lg, err := decode(lhs, true)
			if err != nil {
				return false, err
			}
			rg, err := decode(rhs, true)
			if err != nil {
				return false, err
			}
			return r.Equal(lg, rg), nil
		},
		Show: func(w io.Writer, payload json.RawMessage) error {
			g, err := decode(payload, true)
			if err != nil {
				return err
			}
			r.Fprint(w, g)
			return nil
		},
		FieldValue: func(payload json.RawMessage, path string) (string, error) {
			g, err := decode(payload, true)
			if err != nil {
				return "", err
			}
			return r.GetField(g, path)
		},
		Aggregate: func(w io.Writer, payloads []json.RawMessage, verbosity int) error {
			gs := make([]G, len(payloads))
			for i, payload := range payloads {
				if err := r.UnmarshalGenome(payload, &gs[i]); err != nil {
					return fmt.Errorf("genome %d: %w", i, err)
				}
			}
			return r.Aggregate(w, gs, verbosity)
		},
		SetObserver: r.SetObserver,
	}
}
