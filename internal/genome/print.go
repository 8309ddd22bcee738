package genome

import (
	"fmt"
	"io"
	"strings"

	"edna/internal/indent"
)

// Fprint streams the genome as indented "alias: value" lines, one field per
// line. Nested genomes indent one more level.
func (r *Registry[G]) Fprint(w io.Writer, g *G) {
	iw := indent.NewWriter(w)
	io.WriteString(iw, "\n")
	for _, f := range r.fields {
		fmt.Fprintf(iw, "%s: ", f.Alias())
		f.Print(iw, g)
		io.WriteString(iw, "\n")
	}
	if r.ext.Print != nil {
		r.ext.Print(iw, g)
	}
}

// Sdump returns Fprint's output as a string.
func (r *Registry[G]) Sdump(g *G) string {
	var sb strings.Builder
	r.Fprint(&sb, g)
	return sb.String()
}
