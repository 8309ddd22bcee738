package settings

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Value is the untyped view of one declared parameter, used by listings and
// name-driven overrides. Typed access goes through the *Param returned at
// declaration; only this package creates Values.
type Value interface {
	// Name returns the parameter name used in file rows and env lookups.
	Name() string
	// Origin reports where the current value came from.
	Origin() Origin
	// TypeName names the underlying type for diagnostics.
	TypeName() string
	// Text renders the current value in its file form.
	Text() string
	// Override parses a file-form value at Override origin. Only a
	// constant blocks it, silently.
	Override(text string) error

	input(text string, o Origin) bool
	marshal() (json.RawMessage, error)
	unmarshal(raw json.RawMessage) error
	sub() *File
}

// codec bundles the text and JSON forms of a parameter type. The text
// decoder receives the current value so container types can merge instead
// of replace. Nil JSON hooks fall back to encoding/json.
type codec[T any] struct {
	typeName string
	enc      func(T) string
	dec      func(cur T, text string) (T, error)
	jsonEnc  func(T) (json.RawMessage, error)
	jsonDec  func(json.RawMessage) (T, error)
}

// Param is the typed handle for one declared parameter. The value address
// is stable for the life of the file, so Ptr can back long-lived consumers.
type Param[T any] struct {
	owner *File
	nm    string
	val   T
	org   Origin
	codec codec[T]
}

func newParam[T any](f *File, name string, def T, c codec[T], org Origin) *Param[T] {
	p := &Param[T]{owner: f, nm: name, val: def, org: org, codec: c}
	f.register(p)
	return p
}

// Get returns the current value.
func (p *Param[T]) Get() T {
	return p.val
}

// Ptr returns a stable pointer to the value, for consumers that must track
// it across reloads.
func (p *Param[T]) Ptr() *T {
	return &p.val
}

// Set replaces the value at Override origin and returns the previous one.
// A stronger source keeps its say: the call is then a no-op returning the
// current value.
func (p *Param[T]) Set(v T) T {
	if p.org <= OriginOverride {
		p.org = OriginOverride
		old := p.val
		p.val = v
		return old
	}
	return p.val
}

func (p *Param[T]) Name() string {
	return p.nm
}

func (p *Param[T]) Origin() Origin {
	return p.org
}

func (p *Param[T]) TypeName() string {
	return p.codec.typeName
}

func (p *Param[T]) Text() string {
	return p.codec.enc(p.val)
}

func (p *Param[T]) Override(text string) error {
	if !p.input(text, OriginOverride) {
		return fmt.Errorf("unable to convert %q to %s", text, p.codec.typeName)
	}
	return nil
}

// input applies a parsed value at the given origin. A strictly stronger
// current source wins silently; a source re-asserting itself, such as a
// re-read file, lands. A failed parse moves the parameter to the Error
// origin, which every later source sees as final.
func (p *Param[T]) input(text string, o Origin) bool {
	if p.org > o {
		return p.org != OriginError
	}
	v, err := p.codec.dec(p.val, text)
	if err != nil {
		p.org = OriginError
		fmt.Fprintf(p.owner.diag, "unable to convert %q to %s: %v\n", text, p.codec.typeName, err)
		return false
	}
	p.val = v
	p.org = o
	return true
}

func (p *Param[T]) marshal() (json.RawMessage, error) {
	if p.codec.jsonEnc != nil {
		return p.codec.jsonEnc(p.val)
	}
	return json.Marshal(p.val)
}

func (p *Param[T]) unmarshal(raw json.RawMessage) error {
	switch {
	case p.org == OriginConstant:
		// Constants track the snapshot so a restored run sees the exact
		// values it was saved with.
		v, err := p.decodeJSON(raw)
		if err != nil {
			return err
		}
		p.val = v
	case p.org <= OriginLoad:
		v, err := p.decodeJSON(raw)
		if err != nil {
			return err
		}
		p.val = v
		p.org = OriginLoad
	}
	return nil
}

func (p *Param[T]) decodeJSON(raw json.RawMessage) (T, error) {
	if p.codec.jsonDec != nil {
		return p.codec.jsonDec(raw)
	}
	var v T
	err := json.Unmarshal(raw, &v)
	return v, err
}

func (p *Param[T]) sub() *File {
	return nil
}

// subfile is the Value registered by Subconfig: its text form is the child's
// file name, and feeding it a path loads the child file.
type subfile struct {
	parent *File
	child  *File
	org    Origin
}

func (s *subfile) Name() string {
	return s.child.name
}

func (s *subfile) Origin() Origin {
	return s.org
}

func (s *subfile) TypeName() string {
	return s.child.name
}

func (s *subfile) Text() string {
	if s.child.path == "" {
		return s.child.DefaultFilename()
	}
	return filepath.Base(s.child.path)
}

func (s *subfile) Override(text string) error {
	if !s.input(text, OriginOverride) {
		return fmt.Errorf("unable to convert %q to %s", text, s.child.name)
	}
	return nil
}

// input reads the child file named by text. Relative names resolve next to
// the parent's file.
func (s *subfile) input(text string, o Origin) bool {
	if s.org > o {
		return s.org != OriginError
	}
	path := unquote(text)
	if !filepath.IsAbs(path) && s.parent.path != "" {
		path = filepath.Join(filepath.Dir(s.parent.path), path)
	}
	res, err := s.child.Read(path)
	if err != nil {
		s.org = OriginError
		fmt.Fprintf(s.parent.diag, "unable to convert %q to %s: %v\n", text, s.child.name, err)
		return false
	}
	if res != OK {
		s.org = OriginError
		return false
	}
	s.org = o
	return true
}

func (s *subfile) marshal() (json.RawMessage, error) {
	return s.child.Serialize()
}

func (s *subfile) unmarshal(raw json.RawMessage) error {
	s.org = OriginLoad
	return s.child.Deserialize(raw)
}

func (s *subfile) sub() *File {
	return s.child
}

// unquote strips one pair of surrounding double quotes, if present.
func unquote(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
