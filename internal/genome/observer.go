package genome

import (
	"fmt"
	"io"
	"os"
)

// Observer receives field-level events from a registry: mutation traces,
// out-of-range clamps and build-time diagnostics.
type Observer interface {
	FieldMutated(genomeType, field, before, after string)
	FieldClamped(genomeType, field, before, after string)
	BuildDiagnostic(genomeType, message string)
}

// Default returns the standard observer: clamps and build diagnostics are
// warnings on stderr, mutation traces are dropped.
func Default() Observer {
	return &writerObserver{warn: os.Stderr}
}

// Trace returns an observer that logs every event to w, mutations included.
func Trace(w io.Writer) Observer {
	return &writerObserver{warn: w, trace: w}
}

// Nop returns an observer that drops everything.
func Nop() Observer {
	return &writerObserver{}
}

type writerObserver struct {
	warn  io.Writer
	trace io.Writer
}

func (o *writerObserver) FieldMutated(genomeType, field, before, after string) {
	if o.trace == nil {
		return
	}
	fmt.Fprintf(o.trace, "mutated field %s.%s: %s -> %s\n", genomeType, field, before, after)
}

func (o *writerObserver) FieldClamped(genomeType, field, before, after string) {
	if o.warn == nil {
		return
	}
	fmt.Fprintf(o.warn, "out-of-range value for field %s.%s: %s clipped to %s\n",
		genomeType, field, before, after)
}

func (o *writerObserver) BuildDiagnostic(genomeType, message string) {
	if o.warn == nil {
		return
	}
	fmt.Fprintf(o.warn, "warning: %s: %s\n", genomeType, message)
}
