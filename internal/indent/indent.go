// Package indent provides an io.Writer wrapper that prefixes every line it
// forwards with one indentation level. Wrapping an already-wrapped writer
// accumulates levels, which is how nested structures print themselves.
package indent

import (
	"bytes"
	"io"
)

const width = 2

// Writer indents everything written through it. The prefix is inserted at
// the start of every non-empty line; blank lines pass through untouched.
type Writer struct {
	dst         io.Writer
	prefix      []byte
	atLineStart bool
}

// NewWriter wraps dst with one extra indentation level.
func NewWriter(dst io.Writer) *Writer {
	return &Writer{
		dst:         dst,
		prefix:      bytes.Repeat([]byte{' '}, width),
		atLineStart: true,
	}
}

func (w *Writer) Write(p []byte) (int, error) {
	written := 0
	for len(p) > 0 {
		if w.atLineStart && p[0] != '\n' {
			if _, err := w.dst.Write(w.prefix); err != nil {
				return written, err
			}
			w.atLineStart = false
		}

		end := 0
		for end < len(p) && p[end] != '\n' {
			end++
		}
		if end < len(p) {
			end++ // include the newline
		}
		n, err := w.dst.Write(p[:end])
		written += n
		if err != nil {
			return written, err
		}
		if p[end-1] == '\n' {
			w.atLineStart = true
		}
		p = p[end:]
	}
	return written, nil
}
