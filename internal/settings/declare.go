package settings

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"golang.org/x/exp/constraints"

	"edna/internal/bounds"
	"edna/internal/enum"
)

// Scalar covers the single-value parameter types Declare accepts.
type Scalar interface {
	~bool | ~string | constraints.Integer | constraints.Float
}

// MapKey covers the key types a map parameter can sort and render.
type MapKey interface {
	~string | constraints.Integer | constraints.Float
}

// Declare registers a scalar parameter with its default value and returns
// the typed handle. It panics on an invalid or duplicate name, which only
// happens through a programming error at init time.
func Declare[T Scalar](f *File, name string, def T) *Param[T] {
	return newParam(f, name, def, scalarCodec[T](), OriginDefault)
}

// DeclareConst registers a value no later source can touch. It still shows
// up in listings and snapshots.
func DeclareConst[T Scalar](f *File, name string, v T) *Param[T] {
	return newParam(f, name, v, scalarCodec[T](), OriginConstant)
}

// DeclareEnum registers an enumerated parameter rendered by name.
func DeclareEnum[E constraints.Integer](f *File, name string, def E, info *enum.Info[E]) *Param[E] {
	if info == nil {
		panic(fmt.Sprintf("settings: enum parameter %q has no name table", name))
	}
	return newParam(f, name, def, enumCodec(info), OriginDefault)
}

// DeclareBounds registers a mutation bounds parameter, rendered in the
// compact "(min rndMin rndMax max stddev)" form. Genome fields hold the
// returned handle's Ptr so a file read retunes them in place.
func DeclareBounds[T bounds.Numeric](f *File, name string, def bounds.B[T]) *Param[bounds.B[T]] {
	return newParam(f, name, def, boundsCodec[T](), OriginDefault)
}

// DeclareMap registers a map parameter rendered as an indented block. File
// rows merge into the declared defaults instead of replacing them.
func DeclareMap[K MapKey, V Scalar](f *File, name string, def map[K]V) *Param[map[K]V] {
	return newParam(f, name, def, mapCodec[K, V](), OriginDefault)
}

// DeclareRates registers the name->weight map genome builders consume as
// mutation rates.
func DeclareRates(f *File, name string, def map[string]float64) *Param[map[string]float64] {
	return DeclareMap(f, name, def)
}

// Subconfig registers child as a parameter of parent. The row holds the
// child's file name; reading it loads the child from a path next to the
// parent, and writing the parent writes the child as a sibling file.
func Subconfig(parent, child *File) {
	if child == nil {
		panic("settings: nil subconfig")
	}
	if parent == child {
		panic(fmt.Sprintf("settings: %s cannot be its own subconfig", parent.name))
	}
	parent.register(&subfile{parent: parent, child: child})
}

func scalarCodec[T Scalar]() codec[T] {
	t := reflect.TypeFor[T]()
	c := codec[T]{typeName: t.String()}
	if t.Kind() == reflect.String {
		c.enc = func(v T) string {
			return `"` + fmt.Sprint(v) + `"`
		}
		c.dec = func(_ T, text string) (T, error) {
			var v T
			reflect.ValueOf(&v).Elem().SetString(unquote(text))
			return v, nil
		}
		return c
	}
	c.enc = func(v T) string {
		return fmt.Sprint(v)
	}
	c.dec = func(_ T, text string) (T, error) {
		var v T
		if _, err := fmt.Sscan(strings.TrimSpace(text), &v); err != nil {
			return v, err
		}
		return v, nil
	}
	return c
}

func enumCodec[E constraints.Integer](info *enum.Info[E]) codec[E] {
	return codec[E]{
		typeName: info.TypeName(),
		enc: func(v E) string {
			return info.Name(v)
		},
		dec: func(_ E, text string) (E, error) {
			return info.Parse(strings.TrimSpace(text))
		},
		jsonEnc: func(v E) (json.RawMessage, error) {
			return json.Marshal(info.Name(v))
		},
		jsonDec: func(raw json.RawMessage) (E, error) {
			var name string
			if err := json.Unmarshal(raw, &name); err == nil {
				return info.Parse(name)
			}
			var v E
			if err := json.Unmarshal(raw, &v); err != nil {
				var zero E
				return zero, err
			}
			if !info.Valid(v) {
				return v, fmt.Errorf("invalid %s value %d", info.TypeName(), int64(v))
			}
			return v, nil
		},
	}
}

func boundsCodec[T bounds.Numeric]() codec[bounds.B[T]] {
	return codec[bounds.B[T]]{
		typeName: reflect.TypeFor[bounds.B[T]]().String(),
		enc: func(b bounds.B[T]) string {
			return b.String()
		},
		dec: func(_ bounds.B[T], text string) (bounds.B[T], error) {
			return bounds.Parse[T](text)
		},
	}
}

func mapCodec[K MapKey, V Scalar]() codec[map[K]V] {
	kc := scalarCodec[K]()
	vc := scalarCodec[V]()
	header := fmt.Sprintf("map(%s, %s) {", kc.typeName, vc.typeName)
	return codec[map[K]V]{
		typeName: reflect.TypeFor[map[K]V]().String(),
		enc: func(m map[K]V) string {
			keys := make([]K, 0, len(m))
			for k := range m {
				keys = append(keys, k)
			}
			sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

			rendered := make([]string, len(keys))
			width := 0
			for i, k := range keys {
				rendered[i] = kc.enc(k)
				if len(rendered[i]) > width {
					width = len(rendered[i])
				}
			}

			var sb strings.Builder
			sb.WriteString(header)
			sb.WriteByte('\n')
			for i, k := range keys {
				fmt.Fprintf(&sb, "    %*s: %s\n", width, rendered[i], vc.enc(m[k]))
			}
			sb.WriteByte('}')
			return sb.String()
		},
		dec: func(cur map[K]V, text string) (map[K]V, error) {
			out := make(map[K]V, len(cur))
			for k, v := range cur {
				out[k] = v
			}
			var zk K
			var zv V
			for _, line := range strings.Split(text, "\n") {
				trimmed := strings.TrimSpace(line)
				if trimmed == "" || trimmed == "{" || trimmed == "}" ||
					strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "map(") {
					continue
				}
				rawKey, rawValue, found := strings.Cut(trimmed, ":")
				if !found {
					return nil, fmt.Errorf("map row %q: missing ':'", trimmed)
				}
				k, err := kc.dec(zk, strings.TrimSpace(rawKey))
				if err != nil {
					return nil, fmt.Errorf("map key %q: %w", strings.TrimSpace(rawKey), err)
				}
				v, err := vc.dec(zv, strings.TrimPrefix(rawValue, " "))
				if err != nil {
					return nil, fmt.Errorf("map value for key %q: %w", strings.TrimSpace(rawKey), err)
				}
				out[k] = v
			}
			return out, nil
		},
	}
}
