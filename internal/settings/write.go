package settings

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PrintTo writes the console listing: origin prefixes on each row, a line
// naming the source file, and subconfig listings appended after their
// parent.
func (f *File) PrintTo(w io.Writer) error {
	return f.render(w, false, "")
}

// WriteFile writes the file form to path, creating parent directories as
// needed and overwriting an existing file. An empty path means the default
// one, a path without the config extension is taken as a directory.
// Subconfig parameters are written as sibling files under their default
// names.
func (f *File) WriteFile(path string) error {
	if path == "" {
		path = f.DefaultPath()
	} else if filepath.Ext(path) != f.ext {
		path = filepath.Join(path, f.DefaultFilename())
	}
	return f.writeTo(path)
}

// writeTo writes the file form to path exactly as given.
func (f *File) writeTo(path string) error {
	f.path = path

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	var buf bytes.Buffer
	if err := f.render(&buf, true, filepath.Dir(path)); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("unable to write to %s: %w", path, err)
	}
	return nil
}

// render produces either form of the listing. In file form (toFile) origin
// prefixes and the source line are omitted and subconfig children are
// written to dir as their own files; in console form they are appended to
// the output instead.
func (f *File) render(w io.Writer, toFile bool, dir string) error {
	var errs []error
	var sb strings.Builder

	if len(f.params) == 0 {
		fmt.Fprintf(&sb,
			"Empty configuration file: %s (either voluntarily or it is unused by this executable)\n\n",
			f.name)
		if _, err := io.WriteString(w, sb.String()); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	}

	nameWidth := 0
	for _, v := range f.params {
		if n := len(v.Name()); n > nameWidth {
			nameWidth = n
		}
	}

	prefixSize := 0
	if !toFile {
		prefixSize = len(OriginDefault.Prefix())
	}
	title := " " + f.name + " "
	halfTitle := (len(title) - 1) / 2
	if prefixSize+nameWidth <= halfTitle {
		nameWidth = halfTitle - prefixSize + 1
	}
	edge := strings.Repeat("=", prefixSize+nameWidth-halfTitle)
	banner := strings.Repeat("=", 2*len(edge)+len(title))

	sb.WriteString(banner + "\n")
	sb.WriteString(edge + title + edge + "\n")
	if !toFile {
		pad := nameWidth - 4
		if pad < 0 {
			pad = 0
		}
		sb.WriteString(strings.Repeat(" ", pad) + "file: ")
		if f.path != "" {
			sb.WriteString(f.path)
		} else {
			sb.WriteString("*default*")
		}
		sb.WriteByte('\n')
	}
	sb.WriteString(banner + "\n\n")

	var children []*File
	for _, v := range f.params {
		if child := v.sub(); child != nil {
			if toFile {
				if err := child.writeTo(filepath.Join(dir, child.DefaultFilename())); err != nil {
					errs = append(errs, err)
				}
			} else {
				children = append(children, child)
			}
		}
		if !toFile {
			sb.WriteString(v.Origin().Prefix())
		}
		fmt.Fprintf(&sb, "%*s: %s\n", nameWidth, v.Name(), v.Text())
	}

	sb.WriteString("\n" + banner + "\n")

	for _, child := range children {
		sb.WriteByte('\n')
		if err := child.render(&sb, false, ""); err != nil {
			errs = append(errs, err)
		}
	}

	if _, err := io.WriteString(w, sb.String()); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
