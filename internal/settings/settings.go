// Package settings implements self-describing configuration files: typed
// parameters declared against a File and filled from defaults, disk, the
// environment, JSON snapshots or explicit overrides, with the most
// authoritative source winning.
//
// The text form is line-based: a === header naming the file type, one
// "name: value" row per parameter, map-valued rows opening an indented
// block, and '#' comments. Console listings additionally tag each row with
// the origin of its value.
package settings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	// DefaultFolder is where "auto" setup looks for files.
	DefaultFolder = "configs"

	// DefaultExtension tags the text form.
	DefaultExtension = ".config"
)

// File is a declared configuration file: an ordered set of named parameters
// plus the path they were last read from or written to. Declare parameters
// at init; reads and writes are not safe against concurrent declaration.
type File struct {
	name      string
	path      string
	ext       string
	folder    string
	envPrefix string
	diag      io.Writer
	params    []Value
	byName    map[string]Value
}

// Option adjusts a File at construction.
type Option func(*File)

// EnvPrefix prepends prefix to the environment variable consulted for each
// parameter at declaration. The default is no prefix: a parameter named
// maxSpeed reads $maxSpeed.
func EnvPrefix(prefix string) Option {
	return func(f *File) { f.envPrefix = prefix }
}

// Diagnostics redirects the file's warning output, os.Stderr by default.
func Diagnostics(w io.Writer) Option {
	return func(f *File) { f.diag = w }
}

// Folder changes the directory used for default paths.
func Folder(dir string) Option {
	return func(f *File) { f.folder = dir }
}

// NewFile creates an empty configuration file type. The name heads the text
// form and must be a plain word.
func NewFile(name string, opts ...Option) *File {
	if !wordName(name) {
		panic(fmt.Sprintf("settings: config file name %q is invalid", name))
	}
	f := &File{
		name:   name,
		ext:    DefaultExtension,
		folder: DefaultFolder,
		diag:   os.Stderr,
		byName: make(map[string]Value),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Name returns the file type name.
func (f *File) Name() string {
	return f.name
}

// Path returns the file this configuration was last read from or written
// to, empty when the declared defaults are in use.
func (f *File) Path() string {
	return f.path
}

// DefaultFilename is the preferred file name for this configuration.
func (f *File) DefaultFilename() string {
	return f.name + f.ext
}

// DefaultPath is the preferred location for this configuration.
func (f *File) DefaultPath() string {
	return filepath.Join(f.folder, f.DefaultFilename())
}

// Values lists the declared parameters in declaration order.
func (f *File) Values() []Value {
	return append([]Value(nil), f.params...)
}

// Value finds a parameter by name.
func (f *File) Value(name string) (Value, error) {
	if v, ok := f.byName[name]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("unable to find configuration value %q in %s", name, f.name)
}

// Setup loads the file and optionally shows the result. An empty path keeps
// the declared defaults; "auto" reads the default path. A missing file is
// created with the defaults.
func (f *File) Setup(path string, v Verbosity) (ReadResult, error) {
	if path == "auto" {
		path = f.DefaultPath()
	}
	res := OK
	if path != "" {
		var err error
		if res, err = f.Read(path); err != nil {
			return res, err
		}
	}
	if v >= Show {
		if err := f.PrintTo(os.Stdout); err != nil {
			return res, err
		}
	}
	return res, nil
}

func (f *File) register(v Value) {
	name := v.Name()
	if !wordName(name) {
		panic(fmt.Sprintf("settings: parameter name %q is invalid", name))
	}
	if name == pathKey {
		panic(fmt.Sprintf("settings: parameter name %q is reserved", name))
	}
	if _, dup := f.byName[name]; dup {
		panic(fmt.Sprintf("settings: %s already declares %q", f.name, name))
	}
	f.params = append(f.params, v)
	f.byName[name] = v
	if s, ok := os.LookupEnv(f.envPrefix + name); ok {
		v.input(unquote(s), OriginEnvironment)
	}
}

// wordName reports whether s is a non-empty run of ASCII letters, digits
// and underscores, the character set file rows accept.
func wordName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_':
		case '0' <= c && c <= '9':
		case 'a' <= c && c <= 'z':
		case 'A' <= c && c <= 'Z':
		default:
			return false
		}
	}
	return true
}
