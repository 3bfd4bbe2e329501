// Package stream reads and writes sequences of documents over a single
// connection or file, keeping line numbers continuous across documents
// so error reports point at the right place in the byte stream.
package stream

import (
	"bufio"
	"io"

	"github.com/pkg/errors"

	"github.com/calyptra/objson/objson"
)

// Decoder reads consecutive documents from one reader.
type Decoder struct {
	s    *objson.Serializer
	r    *bufio.Reader
	name string
	line int
}

// NewDecoder wraps r. The name labels the stream in error reports.
func NewDecoder(s *objson.Serializer, r io.Reader, name string) *Decoder {
	return &Decoder{s: s, r: bufio.NewReader(r), name: name, line: 1}
}

// Decode reads the next document into target. It returns io.EOF once
// the stream holds no further document.
func (d *Decoder) Decode(target any) error {
	err := d.s.ReadNamed(target, d.r, d.name, d.line)
	d.line = d.s.Line()
	if err != nil {
		var e *objson.Error
		if errors.As(err, &e) && e.Code == objson.ErrNoData {
			return io.EOF
		}
		return err
	}
	return nil
}

// Line returns the line number the next document starts at or after.
func (d *Decoder) Line() int { return d.line }
