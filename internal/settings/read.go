package settings

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// ReadResult accumulates the problems found while reading a file, one bit
// per kind. OK means a clean read.
type ReadResult uint

const (
	// TypeMismatch flags a header naming a different config file. Fatal.
	TypeMismatch ReadResult = 1 << iota
	// LineInvalid flags a body line matching no known shape.
	LineInvalid
	// FieldUnknown flags a row naming no declared parameter.
	FieldUnknown
	// FieldParse flags a row whose value failed to parse.
	FieldParse
	// SubconfigError flags a child file that reported problems.
	SubconfigError
	// FieldMissing flags declared parameters the file had no row for.
	FieldMissing
)

// OK is the clean read result.
const OK ReadResult = 0

// Has reports whether flag is set.
func (r ReadResult) Has(flag ReadResult) bool {
	return r&flag != 0
}

func (r ReadResult) String() string {
	if r == OK {
		return "ok"
	}
	var parts []string
	for _, e := range []struct {
		flag ReadResult
		name string
	}{
		{TypeMismatch, "type-mismatch"},
		{LineInvalid, "line-invalid"},
		{FieldUnknown, "field-unknown"},
		{FieldParse, "field-parse"},
		{SubconfigError, "subconfig-error"},
		{FieldMissing, "field-missing"},
	} {
		if r.Has(e.flag) {
			parts = append(parts, e.name)
		}
	}
	return strings.Join(parts, "|")
}

// Read loads values from the file at path. A missing file is created with
// the current defaults, and a file lacking some declared parameters is
// rewritten so it carries them. The result flags everything suspicious; the
// error is non-nil only when the file cannot be used at all.
func (f *File) Read(path string) (ReadResult, error) {
	f.path = path
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return OK, fmt.Errorf("unable to read %s: %w", path, err)
		}
		fmt.Fprintf(f.diag, "writing default config to %s\n", path)
		if werr := f.writeTo(path); werr != nil {
			return FieldMissing, werr
		}
		return FieldMissing, nil
	}

	res, err := f.parse(data)
	if err != nil {
		return res, err
	}
	if res.Has(FieldMissing) {
		fmt.Fprintf(f.diag, "updating %s\n", path)
		if werr := f.writeTo(path); werr != nil {
			return res, werr
		}
	}
	return res, nil
}

type readState int

const (
	readStart readState = iota
	readHeader
	readBody
	readDone
)

func (f *File) parse(data []byte) (ReadResult, error) {
	res := OK
	missing := make(map[string]bool, len(f.params))
	for _, v := range f.params {
		missing[v.Name()] = true
	}

	state := readStart
	sc := bufio.NewScanner(bytes.NewReader(data))
	for state != readDone && sc.Scan() {
		line := sc.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch state {
		case readStart:
			name, ok := headerName(trimmed)
			if !ok {
				continue
			}
			if name != f.name {
				return res | TypeMismatch, fmt.Errorf(
					"wrong config file type: expected %q got %q", f.name, name)
			}
			state = readHeader

		case readHeader:
			if isSeparator(trimmed) {
				state = readBody
			}

		case readBody:
			if isSeparator(trimmed) {
				state = readDone
				continue
			}
			name, value, ok := dataRow(line)
			if !ok {
				fmt.Fprintf(f.diag, "could not parse %q in config file %s\n", line, f.name)
				res |= LineInvalid
				continue
			}
			if isMapStart(value) {
				var block strings.Builder
				for sc.Scan() {
					inner := sc.Text()
					if strings.TrimSpace(inner) == "}" {
						break
					}
					block.WriteString(inner)
					block.WriteByte('\n')
				}
				value = block.String()
			}
			v, known := f.byName[name]
			if !known {
				if !strings.HasPrefix(name, "DEBUG_") {
					fmt.Fprintf(f.diag, "could not find field %q in config file %s\n", name, f.name)
					res |= FieldUnknown
				}
				continue
			}
			delete(missing, name)
			if !v.input(value, OriginFile) {
				if v.sub() != nil {
					fmt.Fprintf(f.diag, "subconfig file %q of %q had errors\n", name, f.name)
					res |= SubconfigError
				} else {
					fmt.Fprintf(f.diag, "error parsing field %q with value %q in config file %s\n",
						name, value, f.name)
					res |= FieldParse
				}
			}
		}
	}

	if len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for name := range missing {
			names = append(names, name)
		}
		sort.Strings(names)
		fmt.Fprintf(f.diag, "could not find a value for field(s):\n")
		for _, name := range names {
			fmt.Fprintf(f.diag, "\t%q\n", name)
		}
		res |= FieldMissing
	}
	return res, nil
}

// isSeparator matches the ==== region delimiter lines.
func isSeparator(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '=' {
			return false
		}
	}
	return true
}

// headerName extracts NAME from a "==== NAME ====" title line.
func headerName(s string) (string, bool) {
	fields := strings.Fields(s)
	if len(fields) != 3 || !isSeparator(fields[0]) || !isSeparator(fields[2]) || !wordName(fields[1]) {
		return "", false
	}
	return fields[1], true
}

// dataRow splits a "  name: value" row. The name must be a word and the
// value non-empty; one space after the colon is swallowed.
func dataRow(line string) (name, value string, ok bool) {
	s := strings.TrimLeft(line, " ")
	name, rest, found := strings.Cut(s, ":")
	if !found || !wordName(name) {
		return "", "", false
	}
	value = strings.TrimPrefix(rest, " ")
	if value == "" {
		return "", "", false
	}
	return name, value, true
}

// isMapStart recognizes row values opening a map block.
func isMapStart(value string) bool {
	return strings.HasPrefix(value, "map(") && strings.HasSuffix(value, ") {")
}
