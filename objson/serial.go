package objson

import (
	"bufio"
	"io"
	"os"
	"reflect"

	"github.com/pkg/errors"
)

// Syntax is an ORred mask of leniency options.
type Syntax uint8

// Strict accepts strict JSON only.
const Strict Syntax = 0

const (
	// Comments allows // line and /* block */ comments.
	Comments Syntax = 1 << iota
	// NoQuotes allows unquoted keys and values where unambiguous.
	NoQuotes
	// NoCommas allows a bare newline to separate pairs or elements.
	NoCommas
	// Newlines allows literal newlines inside """triple-quoted""" strings.
	Newlines

	// Relaxed enables every leniency option.
	Relaxed = Comments | NoQuotes | NoCommas | Newlines
)

// sharedSlot is one read-side identity map entry: the materialized
// object for an @id, plus whether a canonical owner has been recorded.
type sharedSlot struct {
	raw  reflect.Value // pointer to the object (*T)
	init bool
}

// creatorFn builds a pointee instance for a member that declared a
// custom creator. It takes precedence over the class constructor.
type creatorFn func() reflect.Value

// Serializer reads and writes object graphs against a Registry.
//
// Per-call session state (line counter, identity maps, pending error)
// is reset at the start of every Read/Write; a Serializer must not be
// used concurrently. The Registry may be shared.
type Serializer struct {
	classes *Registry
	handler Handler

	sharing  bool
	syntax   Syntax
	tabChar  byte
	tabCount int

	// session state, reset per call
	in          *bufio.Reader
	out         *bufio.Writer
	name        string
	line        int
	eof         bool
	needComma   bool
	level       int
	multiquotes bool
	quoted1     bool
	quoted2     bool
	lastQuoted  bool
	curName     string
	objToID     map[any]uint64
	idToObj     map[uint64]*sharedSlot
	nextID      uint64
	lastErr     *Error
}

// New creates a Serializer bound to the given registry. Errors are
// reported through the default logrus report; see NewWithHandler.
// Comments are allowed by default; see SetSyntax.
func New(classes *Registry) *Serializer {
	return NewWithHandler(classes, nil)
}

// NewWithHandler creates a Serializer with a caller-supplied error
// handler that replaces the default report.
func NewWithHandler(classes *Registry, handler Handler) *Serializer {
	return &Serializer{
		classes:  classes,
		handler:  handler,
		syntax:   Comments,
		tabChar:  ' ',
		tabCount: 2,
	}
}

// Classes returns the registry the serializer was built with.
func (s *Serializer) Classes() *Registry { return s.classes }

// SetSharing toggles sharing mode. When enabled, objects reachable
// through several paths are written once and referenced by "@<id>",
// and cyclic graphs become finite to serialize. When disabled,
// writing a cyclic graph does not terminate.
func (s *Serializer) SetSharing(mode bool) { s.sharing = mode }

// Sharing reports whether sharing mode is enabled.
func (s *Serializer) Sharing() bool { return s.sharing }

// SetSyntax replaces the leniency mask. Use Strict for strict JSON.
func (s *Serializer) SetSyntax(mask Syntax) { s.syntax = mask }

// Syntax returns the current leniency mask.
func (s *Serializer) Syntax() Syntax { return s.syntax }

// SetIndent changes the indentation character and repeat count used
// when writing.
func (s *Serializer) SetIndent(ch byte, count int) {
	s.tabChar = ch
	s.tabCount = count
}

// Indent returns the indentation character and repeat count.
func (s *Serializer) Indent() (byte, int) { return s.tabChar, s.tabCount }

// LastError returns the most recent error record of the current or
// last call, including non-fatal conditions that did not fail the
// call. It is reset at the start of each Read/Write.
func (s *Serializer) LastError() *Error { return s.lastErr }

// Line returns the current line number, useful when several documents
// are read from one stream (see the stream package).
func (s *Serializer) Line() int { return s.line }

// ============================================================
// Read
// ============================================================

// Read deserializes one value from r into target, which must be a
// non-nil pointer. A fatal error aborts and is returned; non-fatal
// conditions are reported and retrievable via LastError but do not
// fail the call.
func (s *Serializer) Read(target any, r io.Reader) error {
	return s.ReadNamed(target, r, "", 1)
}

// ReadNamed is Read with a stream name for error reports and a
// starting line number (use 1 unless lines were already consumed).
func (s *Serializer) ReadNamed(target any, r io.Reader, name string, line int) (err error) {
	s.reset(name, line, r, nil)
	defer s.recoverError(&err)
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		s.fail(ErrInvalidValue, "read target must be a non-nil pointer")
	}
	tok, _, found, _ := s.readPair(true)
	if !found {
		s.fail(ErrNoData, "")
	}
	s.lastQuoted = s.quoted1
	s.readValueCr(rv.Elem(), tok, nil, nil)
	return nil
}

// ReadFile reads one value from the named file.
func (s *Serializer) ReadFile(target any, path string) error {
	f, err := os.Open(path)
	if err != nil {
		s.reset(path, 0, nil, nil)
		s.fileError(ErrCantReadFile, path, "read")
		return errors.Wrap(err, "objson: can't read file")
	}
	defer f.Close()
	return s.ReadNamed(target, f, path, 1)
}

// ============================================================
// Write
// ============================================================

// Write serializes src (a value or a pointer) to w.
func (s *Serializer) Write(src any, w io.Writer) error {
	return s.WriteNamed(src, w, "", 1)
}

// WriteNamed is Write with a sink name for error reports and a
// starting line number.
func (s *Serializer) WriteNamed(src any, w io.Writer, name string, line int) (err error) {
	s.reset(name, line, nil, w)
	defer s.recoverError(&err)
	s.writeValue(reflect.ValueOf(src))
	s.out.WriteByte('\n')
	return s.out.Flush()
}

// WriteFile writes src to the named file, creating or truncating it.
func (s *Serializer) WriteFile(src any, path string) error {
	f, err := os.Create(path)
	if err != nil {
		s.reset(path, 0, nil, nil)
		s.fileError(ErrCantWriteFile, path, "write")
		return errors.Wrap(err, "objson: can't write file")
	}
	defer f.Close()
	return s.WriteNamed(src, f, path, 1)
}

// ============================================================
// Custom member helpers
// ============================================================

// ReadMember interprets text into target. It is meant to be called
// from CustomField read functions.
func (s *Serializer) ReadMember(target any, text string) {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		s.fail(ErrInvalidValue, "ReadMember target must be a non-nil pointer")
	}
	s.readValueCr(rv.Elem(), text, nil, nil)
}

// WriteMember emits the pending member name followed by the value. It
// is meant to be called from CustomField write functions.
func (s *Serializer) WriteMember(v any) {
	s.writeTabs()
	s.out.WriteByte('"')
	s.out.WriteString(s.curName)
	s.out.WriteString("\": ")
	s.writeValue(reflect.ValueOf(v))
}

// ============================================================
// Session plumbing
// ============================================================

func (s *Serializer) reset(name string, line int, in io.Reader, out io.Writer) {
	s.in = nil
	s.out = nil
	if in != nil {
		if br, ok := in.(*bufio.Reader); ok {
			s.in = br // reuse: callers may read several documents
		} else {
			s.in = bufio.NewReader(in)
		}
	}
	if out != nil {
		if bw, ok := out.(*bufio.Writer); ok {
			s.out = bw
		} else {
			s.out = bufio.NewWriter(out)
		}
	}
	s.name = name
	s.line = line
	s.eof = false
	s.needComma = false
	s.level = 0
	s.multiquotes = false
	s.quoted1 = false
	s.quoted2 = false
	s.lastQuoted = false
	s.curName = ""
	s.objToID = make(map[any]uint64)
	s.idToObj = make(map[uint64]*sharedSlot)
	s.nextID = 0
	s.lastErr = nil
}

// fail records a fatal error and unwinds the current call.
func (s *Serializer) fail(code ErrCode, arg string) {
	s.raise(code, arg, true)
}

// fileError records a fatal file access error without unwinding; the
// caller returns the wrapped OS error itself.
func (s *Serializer) fileError(code ErrCode, path, where string) {
	e := &Error{Code: code, Fatal: true, Where: where, Arg: path, Stream: path}
	s.lastErr = e
	if s.handler != nil {
		s.handler(e)
	} else {
		e.report()
	}
}

// warn records a non-fatal error; processing continues.
func (s *Serializer) warn(code ErrCode, arg string) {
	s.raise(code, arg, false)
}

func (s *Serializer) raise(code ErrCode, arg string, fatal bool) {
	where := "write"
	if s.in != nil || code == ErrCantReadFile {
		where = "read"
	}
	e := &Error{
		Code:   code,
		Fatal:  fatal,
		Where:  where,
		Arg:    arg,
		Stream: s.name,
		Line:   s.line,
	}
	s.lastErr = e
	if s.handler != nil {
		s.handler(e)
	} else {
		e.report()
	}
	if fatal {
		panic(e)
	}
}

// recoverError converts an internal *Error panic into the returned
// error. Errors are control flow inside the recursive walk, never part
// of the public contract.
func (s *Serializer) recoverError(err *error) {
	if r := recover(); r != nil {
		e, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		if s.out != nil {
			s.out.Flush()
		}
		*err = e
	}
}

func (s *Serializer) writeTabs() {
	n := s.level * s.tabCount
	for i := 0; i < n; i++ {
		s.out.WriteByte(s.tabChar)
	}
}

// slotFor returns the identity slot for id, creating it on first use.
func (s *Serializer) slotFor(id uint64) *sharedSlot {
	sl := s.idToObj[id]
	if sl == nil {
		sl = &sharedSlot{}
		s.idToObj[id] = sl
	}
	return sl
}
