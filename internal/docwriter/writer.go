// Package docwriter implements the whitespace-normalizing sink the renderer writes to.
package docwriter

import (
	"strings"
)

// Future produces the writer holding content that was not known when it was
// written. It is invoked once, when the enclosing writer is rendered.
type Future func() (*Writer, error)

// newline tracking states
const (
	statusStart = iota
	statusNewline
	statusText
)

type chunk struct {
	text   string
	future Future
}

// Writer collects rendered text. In comment mode the first space following a
// newline is dropped, undoing the continuation indent of comment lines. In
// literal mode text passes unchanged.
//
// A Writer is not safe for concurrent use.
type Writer struct {
	chunks  []chunk
	buf     strings.Builder
	status  int
	literal bool

	rendered bool
	result   string
}

// New creates an empty writer in comment mode.
func New() *Writer {
	return &Writer{}
}

// WriteString implements io.StringWriter.
func (w *Writer) WriteString(s string) (int, error) {
	if w.literal {
		w.buf.WriteString(s)
		return len(s), nil
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '\n':
			w.status = statusNewline
			w.buf.WriteByte(c)
		case ' ':
			if w.status == statusNewline {
				w.status = statusText
				continue
			}
			w.buf.WriteByte(c)
		default:
			w.buf.WriteByte(c)
			if w.status == statusNewline {
				w.status = statusText
			}
		}
	}
	return len(s), nil
}

// Write implements io.Writer.
func (w *Writer) Write(p []byte) (int, error) {
	return w.WriteString(string(p))
}

// WriteFuture inserts a placeholder expanded by f at render time.
func (w *Writer) WriteFuture(f Future) {
	w.flush()
	w.chunks = append(w.chunks, chunk{future: f})
}

// LiteralMode stops whitespace normalization until CommentMode is called.
func (w *Writer) LiteralMode() {
	w.literal = true
}

// CommentMode resumes whitespace normalization.
func (w *Writer) CommentMode() {
	w.literal = false
}

// Literal reports whether the writer is in literal mode.
func (w *Writer) Literal() bool {
	return w.literal
}

// ResetParagraph forgets any pending newline and leaves literal mode.
func (w *Writer) ResetParagraph() {
	w.status = statusStart
	w.literal = false
}

// Exec runs fn in comment mode with a fresh newline state, then restores the
// previous mode.
func (w *Writer) Exec(fn func()) {
	prev := w.literal
	w.literal = false
	w.status = statusStart
	defer func() { w.literal = prev }()
	fn()
}

// Render flattens the writer and every placeholder it holds, depth first and in
// write order. The chunks are flattened once; later calls return the same result.
func (w *Writer) Render() (string, error) {
	if w.rendered {
		return w.result, nil
	}
	w.flush()
	var sb strings.Builder
	for _, c := range w.chunks {
		if c.future == nil {
			sb.WriteString(c.text)
			continue
		}
		nested, err := c.future()
		if err != nil {
			return "", err
		}
		s, err := nested.Render()
		if err != nil {
			return "", err
		}
		sb.WriteString(s)
	}
	w.chunks = nil
	w.rendered = true
	w.result = sb.String()
	return w.result, nil
}

func (w *Writer) flush() {
	if w.buf.Len() > 0 {
		w.chunks = append(w.chunks, chunk{text: w.buf.String()})
		w.buf.Reset()
	}
}
