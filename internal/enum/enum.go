package enum

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"
)

// Info describes an integer-backed enumeration: its name table, value
// ordering and span. Build one per enum type, keep it package-global and
// treat it as read-only.
type Info[E constraints.Integer] struct {
	typeName string
	names    map[E]string
	byName   map[string]E
	byFold   map[string]E
	values   []E
}

// NewInfo builds the lookup tables for an enumeration from its value->name
// map. Names must be unique and non-empty.
func NewInfo[E constraints.Integer](typeName string, names map[E]string) (*Info[E], error) {
	if typeName == "" {
		return nil, errors.New("enum type name is required")
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("enum %s: no values", typeName)
	}

	info := &Info[E]{
		typeName: typeName,
		names:    make(map[E]string, len(names)),
		byName:   make(map[string]E, len(names)),
		byFold:   make(map[string]E, len(names)),
	}
	for value, name := range names {
		if name == "" {
			return nil, fmt.Errorf("enum %s: empty name for value %d", typeName, int64(value))
		}
		if _, dup := info.byName[name]; dup {
			return nil, fmt.Errorf("enum %s: duplicate name %q", typeName, name)
		}
		folded := strings.ToLower(name)
		if _, dup := info.byFold[folded]; dup {
			return nil, fmt.Errorf("enum %s: names %q collide case-insensitively", typeName, name)
		}
		info.names[value] = name
		info.byName[name] = value
		info.byFold[folded] = value
		info.values = append(info.values, value)
	}
	sort.Slice(info.values, func(i, j int) bool { return info.values[i] < info.values[j] })
	return info, nil
}

// MustInfo is NewInfo panicking on error, for package-level tables.
func MustInfo[E constraints.Integer](typeName string, names map[E]string) *Info[E] {
	info, err := NewInfo(typeName, names)
	if err != nil {
		panic(err)
	}
	return info
}

func (i *Info[E]) TypeName() string {
	return i.typeName
}

// Name returns the declared name for value, or "Type(n)" when the value is
// not part of the enumeration.
func (i *Info[E]) Name(value E) string {
	if name, ok := i.names[value]; ok {
		return name
	}
	return fmt.Sprintf("%s(%d)", i.typeName, int64(value))
}

// Parse resolves a name to its value, trying an exact match first and a
// case-insensitive one second.
func (i *Info[E]) Parse(name string) (E, error) {
	if value, ok := i.byName[name]; ok {
		return value, nil
	}
	if value, ok := i.byFold[strings.ToLower(name)]; ok {
		return value, nil
	}
	var zero E
	return zero, fmt.Errorf("unknown %s value %q", i.typeName, name)
}

func (i *Info[E]) Valid(value E) bool {
	_, ok := i.names[value]
	return ok
}

// Values returns the declared values in ascending order.
func (i *Info[E]) Values() []E {
	return append([]E(nil), i.values...)
}

// Names returns the declared names ordered by their values.
func (i *Info[E]) Names() []string {
	names := make([]string, 0, len(i.values))
	for _, value := range i.values {
		names = append(names, i.names[value])
	}
	return names
}

// Lo returns the smallest declared value.
func (i *Info[E]) Lo() E {
	return i.values[0]
}

// Hi returns the largest declared value.
func (i *Info[E]) Hi() E {
	return i.values[len(i.values)-1]
}

func (i *Info[E]) Len() int {
	return len(i.values)
}
