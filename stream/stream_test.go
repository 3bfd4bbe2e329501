package stream

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calyptra/objson/objson"
)

type event struct {
	Kind string
	Seq  int
}

func eventRegistry() *objson.Registry {
	r := objson.NewRegistry()
	cl := objson.Define[event](r, "event")
	objson.Field(cl, "kind", func(e *event) *string { return &e.Kind })
	objson.Field(cl, "seq", func(e *event) *int { return &e.Seq })
	return r
}

func TestEncodeDecode_Sequence(t *testing.T) {
	s := objson.New(eventRegistry())
	var buf bytes.Buffer
	enc := NewEncoder(s, &buf, "pipe")
	require.NoError(t, enc.Encode(&event{Kind: "open", Seq: 1}))
	require.NoError(t, enc.Encode(&event{Kind: "close", Seq: 2}))

	dec := NewDecoder(s, &buf, "pipe")
	var e1, e2, e3 event
	require.NoError(t, dec.Decode(&e1))
	require.NoError(t, dec.Decode(&e2))
	assert.Equal(t, event{Kind: "open", Seq: 1}, e1)
	assert.Equal(t, event{Kind: "close", Seq: 2}, e2)
	assert.Equal(t, io.EOF, dec.Decode(&e3))
}

func TestDecode_LineNumbersStayContinuous(t *testing.T) {
	src := `{
  "kind": "open",
  "seq": 1
}
{
  "kind": "close",
  "seq": oops
}`
	s := objson.NewWithHandler(eventRegistry(), func(*objson.Error) {})
	dec := NewDecoder(s, strings.NewReader(src), "pipe")

	var e1, e2 event
	require.NoError(t, dec.Decode(&e1))

	err := dec.Decode(&e2)
	require.Error(t, err)
	e, ok := err.(*objson.Error)
	require.True(t, ok)
	// the bad value sits on line 7 of the stream; the scanner notices
	// it one newline later, and counts lines across both documents
	assert.Equal(t, 8, e.Line)
	assert.Equal(t, "pipe", e.Stream)
}

func TestDecode_EmptyStream(t *testing.T) {
	s := objson.New(eventRegistry())
	dec := NewDecoder(s, strings.NewReader(""), "pipe")
	var e event
	assert.Equal(t, io.EOF, dec.Decode(&e))
}
