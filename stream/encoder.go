package stream

import (
	"bufio"
	"io"

	"github.com/calyptra/objson/objson"
)

// Encoder writes consecutive documents to one writer. Each document
// ends with a newline, which is what Decoder expects as a separator.
type Encoder struct {
	s    *objson.Serializer
	w    *bufio.Writer
	name string
}

// NewEncoder wraps w. The name labels the sink in error reports.
func NewEncoder(s *objson.Serializer, w io.Writer, name string) *Encoder {
	return &Encoder{s: s, w: bufio.NewWriter(w), name: name}
}

// Encode appends one document to the stream.
func (e *Encoder) Encode(src any) error {
	return e.s.WriteNamed(src, e.w, e.name, 1)
}

// Flush forces buffered output to the underlying writer. WriteNamed
// flushes after each document, so this matters only for callers that
// wrote to the buffer directly.
func (e *Encoder) Flush() error { return e.w.Flush() }
