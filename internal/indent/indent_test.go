package indent

import (
	"bytes"
	"fmt"
	"testing"
)

func TestWriterIndentsLines(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	fmt.Fprintf(w, "alpha: 1\nbeta: 2\n")
	want := "  alpha: 1\n  beta: 2\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriterLeavesBlankLinesAlone(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	fmt.Fprintf(w, "a\n\nb\n")
	want := "  a\n\n  b\n"
	if got := buf.String(); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriterNests(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(NewWriter(&buf))

	fmt.Fprintf(w, "deep\n")
	if got, want := buf.String(), "    deep\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestWriterSplitWrites(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)

	fmt.Fprint(w, "par")
	fmt.Fprint(w, "tial\nnext\n")
	if got, want := buf.String(), "  partial\n  next\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
